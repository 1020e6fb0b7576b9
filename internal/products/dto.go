package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Devvfong/inventory-management/internal/suppliers"
	"github.com/Devvfong/inventory-management/pkg/db/models"
)

// ProductDTO is the product payload with its supplier and stock rows embedded.
type ProductDTO struct {
	ID          uuid.UUID             `json:"id"`
	SupplierID  uuid.UUID             `json:"supplier_id"`
	Supplier    *suppliers.SummaryDTO `json:"supplier,omitempty"`
	Name        string                `json:"name"`
	SKU         string                `json:"sku"`
	Description *string               `json:"description,omitempty"`
	Price       decimal.Decimal       `json:"price"`
	Quantity    int                   `json:"quantity"`
	LowStock    bool                  `json:"low_stock"`
	StockItems  []StockItemDTO        `json:"stock_items"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// StockItemDTO exposes the quantity held in one warehouse.
type StockItemDTO struct {
	ID            uuid.UUID `json:"id"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	WarehouseCode string    `json:"warehouse_code,omitempty"`
	Quantity      int       `json:"quantity"`
	ReorderLevel  int       `json:"reorder_level"`
	MaxStockLevel *int      `json:"max_stock_level,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		Supplier:    suppliers.Summary(p.Supplier),
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.OnHand(),
		StockItems:  make([]StockItemDTO, 0, len(p.StockItems)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, item := range p.StockItems {
		if item.IsLow() {
			dto.LowStock = true
		}
		row := StockItemDTO{
			ID:            item.ID,
			WarehouseID:   item.WarehouseID,
			Quantity:      item.Quantity,
			ReorderLevel:  item.ReorderLevel,
			MaxStockLevel: item.MaxStockLevel,
			UpdatedAt:     item.UpdatedAt,
		}
		if item.Warehouse != nil {
			row.WarehouseCode = item.Warehouse.Code
		}
		dto.StockItems = append(dto.StockItems, row)
	}
	return dto
}
