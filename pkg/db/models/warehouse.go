package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Warehouse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Location  *string   `gorm:"column:location"`
	Capacity  *int      `gorm:"column:capacity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Warehouse) BeforeCreate(*gorm.DB) error {
	w.ID = ensureID(w.ID)
	return nil
}
