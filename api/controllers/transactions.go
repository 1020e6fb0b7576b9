package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Devvfong/inventory-management/api/responses"
	"github.com/Devvfong/inventory-management/api/validators"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/pagination"
)

// createTransactionRequest identifies the product by id or SKU. Type is
// accepted as an alias of direction.
type createTransactionRequest struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty" validate:"required_without=SKU"`
	SKU         string     `json:"sku,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	Direction   string     `json:"direction,omitempty"`
	Type        string     `json:"type,omitempty"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	Note        *string    `json:"note,omitempty"`
}

func (r createTransactionRequest) toInput() (stock.Input, error) {
	raw := r.Direction
	if strings.TrimSpace(raw) == "" {
		raw = r.Type
	}
	if strings.TrimSpace(raw) == "" {
		return stock.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"direction": "is required"})
	}
	direction, err := enums.ParseTransactionDirection(raw)
	if err != nil {
		return stock.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction").
			WithDetails(map[string]string{"direction": "must be one of [in out]"})
	}
	return stock.Input{
		ProductID:   r.ProductID,
		SKU:         strings.TrimSpace(r.SKU),
		WarehouseID: r.WarehouseID,
		Direction:   direction,
		Quantity:    r.Quantity,
		Note:        r.Note,
	}, nil
}

func ListTransactions(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ledger"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := stock.ListFilter{Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}
		if filter.ProductID, err = validators.ParseQueryUUID(r, "productId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("direction")); raw != "" {
			direction, err := enums.ParseTransactionDirection(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction"))
				return
			}
			filter.Direction = &direction
		}
		if filter.Limit, err = validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), principal, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetTransaction(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ledger"))
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
		txn, err := svc.Get(r.Context(), principal, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// CreateTransaction posts one stock movement through the ledger.
func CreateTransaction(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ledger"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.ApplyTransaction(r.Context(), principal, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, txn)
	}
}
