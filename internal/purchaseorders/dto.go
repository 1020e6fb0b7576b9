package purchaseorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Devvfong/inventory-management/internal/suppliers"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
)

// OrderDTO is a purchase order with supplier summary and lines.
type OrderDTO struct {
	ID           uuid.UUID                 `json:"id"`
	OrderNumber  string                    `json:"order_number"`
	SupplierID   uuid.UUID                 `json:"supplier_id"`
	Supplier     *suppliers.SummaryDTO     `json:"supplier,omitempty"`
	Status       enums.PurchaseOrderStatus `json:"status"`
	TotalAmount  decimal.Decimal           `json:"total_amount"`
	ExpectedDate *time.Time                `json:"expected_date,omitempty"`
	ReceivedDate *time.Time                `json:"received_date,omitempty"`
	Notes        *string                   `json:"notes,omitempty"`
	CreatedBy    *uuid.UUID                `json:"created_by,omitempty"`
	LineCount    int                       `json:"line_count"`
	Lines        []LineDTO                 `json:"lines"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

type LineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ProductSKU  string          `json:"product_sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func FromModel(o *models.PurchaseOrder) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		Supplier:     suppliers.Summary(o.Supplier),
		Status:       o.Status,
		TotalAmount:  o.TotalAmount,
		ExpectedDate: o.ExpectedDate,
		ReceivedDate: o.ReceivedDate,
		Notes:        o.Notes,
		CreatedBy:    o.CreatedBy,
		LineCount:    len(o.Lines),
		Lines:        make([]LineDTO, 0, len(o.Lines)),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, line := range o.Lines {
		row := LineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		}
		if line.Product != nil {
			row.ProductName = line.Product.Name
			row.ProductSKU = line.Product.SKU
		}
		dto.Lines = append(dto.Lines, row)
	}
	return dto
}
