package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/Devvfong/inventory-management/pkg/db/models"
)

// SupplierDTO is the full supplier payload.
type SupplierDTO struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	ContactInfo  *string   `json:"contact_info,omitempty"`
	Address      *string   `json:"address,omitempty"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SummaryDTO is embedded in product and purchase-order payloads.
type SummaryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactInfo *string   `json:"contact_info,omitempty"`
}

func FromModel(s *models.Supplier, productCount int64) *SupplierDTO {
	if s == nil {
		return nil
	}
	return &SupplierDTO{
		ID:           s.ID,
		UserID:       s.UserID,
		Name:         s.Name,
		ContactInfo:  s.ContactInfo,
		Address:      s.Address,
		ProductCount: productCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Summary returns nil for a nil supplier so callers can embed it directly.
func Summary(s *models.Supplier) *SummaryDTO {
	if s == nil {
		return nil
	}
	return &SummaryDTO{ID: s.ID, Name: s.Name, ContactInfo: s.ContactInfo}
}
