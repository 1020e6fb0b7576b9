package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockItem holds the on-hand quantity of one product in one warehouse.
type StockItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_stock_items_product_warehouse"`
	WarehouseID   uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_stock_items_product_warehouse"`
	Warehouse     *Warehouse `gorm:"foreignKey:WarehouseID"`
	Quantity      int        `gorm:"column:quantity;not null;default:0;check:chk_stock_items_quantity,quantity >= 0"`
	ReorderLevel  int        `gorm:"column:reorder_level;not null;default:0"`
	MaxStockLevel *int       `gorm:"column:max_stock_level"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *StockItem) BeforeCreate(*gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

// IsLow reports whether the quantity has reached the reorder threshold.
func (s StockItem) IsLow() bool {
	return s.Quantity <= s.ReorderLevel
}
