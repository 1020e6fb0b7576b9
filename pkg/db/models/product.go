package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry owned by a supplier.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SupplierID  uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID"`
	Name        string          `gorm:"column:name;not null"`
	SKU         string          `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;check:chk_products_price,price >= 0"`
	StockItems  []StockItem     `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// OnHand sums the quantity across every warehouse.
func (p *Product) OnHand() int {
	total := 0
	for _, item := range p.StockItems {
		total += item.Quantity
	}
	return total
}
