package controllers

import (
	"net/http"
	"strings"

	"github.com/Devvfong/inventory-management/api/responses"
	"github.com/Devvfong/inventory-management/api/validators"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

type createWarehouseRequest struct {
	Code     string  `json:"code" validate:"required,max=32"`
	Name     string  `json:"name" validate:"required,max=255"`
	Location *string `json:"location,omitempty"`
	Capacity *int    `json:"capacity,omitempty" validate:"omitempty,min=0"`
}

func ListWarehouses(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("warehouse"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func CreateWarehouse(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("warehouse"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.Create(r.Context(), principal, warehouses.CreateInput{
			Code:     strings.ToUpper(strings.TrimSpace(payload.Code)),
			Name:     validators.SanitizeString(payload.Name, 255),
			Location: validators.SanitizeOptional(payload.Location, 255),
			Capacity: payload.Capacity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, warehouse)
	}
}
