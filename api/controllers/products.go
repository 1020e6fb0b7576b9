package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Devvfong/inventory-management/api/responses"
	"github.com/Devvfong/inventory-management/api/validators"
	productsvc "github.com/Devvfong/inventory-management/internal/products"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

type createProductRequest struct {
	SupplierID      *uuid.UUID       `json:"supplier_id,omitempty"`
	Name            string           `json:"name" validate:"required,max=255"`
	SKU             string           `json:"sku" validate:"required,max=64"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price" validate:"required"`
	InitialQuantity *int             `json:"initial_quantity,omitempty" validate:"omitempty,min=0"`
	// Quantity is accepted as an alias of initial_quantity.
	Quantity      *int       `json:"quantity,omitempty" validate:"omitempty,min=0"`
	ReorderLevel  *int       `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
	MaxStockLevel *int       `json:"max_stock_level,omitempty" validate:"omitempty,min=0"`
	WarehouseID   *uuid.UUID `json:"warehouse_id,omitempty"`
}

func (r createProductRequest) toInput() productsvc.CreateInput {
	input := productsvc.CreateInput{
		SupplierID:    r.SupplierID,
		Name:          validators.SanitizeString(r.Name, 255),
		SKU:           strings.TrimSpace(r.SKU),
		Description:   validators.SanitizeOptional(r.Description, 2000),
		Price:         *r.Price,
		MaxStockLevel: r.MaxStockLevel,
		WarehouseID:   r.WarehouseID,
	}
	switch {
	case r.InitialQuantity != nil:
		input.InitialQuantity = *r.InitialQuantity
	case r.Quantity != nil:
		input.InitialQuantity = *r.Quantity
	}
	if r.ReorderLevel != nil {
		input.ReorderLevel = *r.ReorderLevel
	}
	return input
}

type updateProductRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	SKU           *string          `json:"sku,omitempty" validate:"omitempty,min=1,max=64"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel  *int             `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
	MaxStockLevel *int             `json:"max_stock_level,omitempty" validate:"omitempty,min=0"`
}

func (r updateProductRequest) toInput() productsvc.UpdateInput {
	input := productsvc.UpdateInput{
		Description:   validators.SanitizeOptional(r.Description, 2000),
		Price:         r.Price,
		ReorderLevel:  r.ReorderLevel,
		MaxStockLevel: r.MaxStockLevel,
	}
	if r.Name != nil {
		name := validators.SanitizeString(*r.Name, 255)
		input.Name = &name
	}
	if r.SKU != nil {
		sku := strings.TrimSpace(*r.SKU)
		input.SKU = &sku
	}
	return input
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseQueryUUID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), principal, productsvc.ListFilter{
			SupplierID: supplierID,
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), 100),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), principal, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CreateProduct handles product creation; suppliers default to their own profile.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), principal, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), principal, id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), principal, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "product deleted"})
	}
}
