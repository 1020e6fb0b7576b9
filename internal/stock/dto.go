package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
)

// TransactionDTO is a ledger entry with the quantity it left behind.
type TransactionDTO struct {
	ID              uuid.UUID                  `json:"id"`
	ProductID       uuid.UUID                  `json:"product_id"`
	ProductName     string                     `json:"product_name,omitempty"`
	ProductSKU      string                     `json:"product_sku,omitempty"`
	WarehouseID     uuid.UUID                  `json:"warehouse_id"`
	WarehouseCode   string                     `json:"warehouse_code,omitempty"`
	Direction       enums.TransactionDirection `json:"direction"`
	Quantity        int                        `json:"quantity"`
	NewQuantity     int                        `json:"new_quantity"`
	Note            *string                    `json:"note,omitempty"`
	ActorID         *uuid.UUID                 `json:"actor_id,omitempty"`
	PurchaseOrderID *uuid.UUID                 `json:"purchase_order_id,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

func FromModel(t *models.StockTransaction) *TransactionDTO {
	if t == nil {
		return nil
	}
	dto := &TransactionDTO{
		ID:              t.ID,
		ProductID:       t.ProductID,
		WarehouseID:     t.WarehouseID,
		Direction:       t.Direction,
		Quantity:        t.Quantity,
		NewQuantity:     t.ResultingQuantity,
		Note:            t.Note,
		ActorID:         t.ActorID,
		PurchaseOrderID: t.PurchaseOrderID,
		CreatedAt:       t.CreatedAt,
	}
	if t.Product != nil {
		dto.ProductName = t.Product.Name
		dto.ProductSKU = t.Product.SKU
	}
	if t.Warehouse != nil {
		dto.WarehouseCode = t.Warehouse.Code
	}
	return dto
}
