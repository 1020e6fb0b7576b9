package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/pkg/enums"
)

type PurchaseOrder struct {
	ID           uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	OrderNumber  string                    `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	SupplierID   uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null;index"`
	Supplier     *Supplier                 `gorm:"foreignKey:SupplierID"`
	Status       enums.PurchaseOrderStatus `gorm:"column:status;type:text;not null"`
	TotalAmount  decimal.Decimal           `gorm:"column:total_amount;type:numeric(14,2);not null"`
	ExpectedDate *time.Time                `gorm:"column:expected_date"`
	ReceivedDate *time.Time                `gorm:"column:received_date"`
	Notes        *string                   `gorm:"column:notes"`
	CreatedBy    *uuid.UUID                `gorm:"column:created_by;type:uuid"`
	Lines        []PurchaseOrderLine       `gorm:"foreignKey:PurchaseOrderID"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	o.ID = ensureID(o.ID)
	return nil
}

// PurchaseOrderLine is immutable once the order has been created.
type PurchaseOrderLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"column:purchase_order_id;type:uuid;not null;index"`
	LineNo          int             `gorm:"column:line_no;not null"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Product         *Product        `gorm:"foreignKey:ProductID"`
	Quantity        int             `gorm:"column:quantity;not null;check:chk_purchase_order_lines_quantity,quantity > 0"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (l *PurchaseOrderLine) BeforeCreate(*gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}

// Subtotal returns quantity × unit price.
func (l PurchaseOrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
