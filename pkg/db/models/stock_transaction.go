package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/pkg/enums"
)

// StockTransaction is an append-only record of one stock movement.
type StockTransaction struct {
	ID                uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	ProductID         uuid.UUID                  `gorm:"column:product_id;type:uuid;not null;index"`
	Product           *Product                   `gorm:"foreignKey:ProductID"`
	WarehouseID       uuid.UUID                  `gorm:"column:warehouse_id;type:uuid;not null"`
	Warehouse         *Warehouse                 `gorm:"foreignKey:WarehouseID"`
	Direction         enums.TransactionDirection `gorm:"column:direction;type:text;not null"`
	Quantity          int                        `gorm:"column:quantity;not null;check:chk_stock_transactions_quantity,quantity > 0"`
	ResultingQuantity int                        `gorm:"column:resulting_quantity;not null"`
	Note              *string                    `gorm:"column:note"`
	ActorID           *uuid.UUID                 `gorm:"column:actor_id;type:uuid"`
	PurchaseOrderID   *uuid.UUID                 `gorm:"column:purchase_order_id;type:uuid"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime;index"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

func (t *StockTransaction) BeforeCreate(*gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}
