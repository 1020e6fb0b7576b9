package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Devvfong/inventory-management/api/responses"
	"github.com/Devvfong/inventory-management/api/validators"
	"github.com/Devvfong/inventory-management/internal/purchaseorders"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

type createPurchaseOrderRequest struct {
	SupplierID   uuid.UUID                 `json:"supplier_id" validate:"required"`
	OrderNumber  string                    `json:"order_number" validate:"required,max=64"`
	ExpectedDate *string                   `json:"expected_date,omitempty"`
	Notes        *string                   `json:"notes,omitempty"`
	Lines        []purchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type purchaseOrderLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required"`
}

type updatePurchaseOrderStatusRequest struct {
	Status       string  `json:"status" validate:"required"`
	ReceivedDate *string `json:"received_date,omitempty"`
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).
		WithDetails(map[string]any{"field": field, "expected": "YYYY-MM-DD or RFC 3339"})
}

func (r createPurchaseOrderRequest) toInput() (purchaseorders.CreateOrderInput, error) {
	expected, err := parseDate(r.ExpectedDate, "expected_date")
	if err != nil {
		return purchaseorders.CreateOrderInput{}, err
	}
	lines := make([]purchaseorders.LineInput, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, purchaseorders.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: *line.UnitPrice,
		})
	}
	return purchaseorders.CreateOrderInput{
		SupplierID:   r.SupplierID,
		OrderNumber:  strings.TrimSpace(r.OrderNumber),
		ExpectedDate: expected,
		Notes:        validators.SanitizeOptional(r.Notes, 2000),
		Lines:        lines,
	}, nil
}

func ListPurchaseOrders(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("purchase order"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := purchaseorders.ListFilter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParsePurchaseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}
		if filter.SupplierID, err = validators.ParseQueryUUID(r, "supplierId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.List(r.Context(), principal, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func GetPurchaseOrder(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("purchase order"))
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
		order, err := svc.Get(r.Context(), principal, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func CreatePurchaseOrder(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("purchase order"))
			return
		}
		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createPurchaseOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), principal, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}

func UpdatePurchaseOrderStatus(svc purchaseorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("purchase order"))
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

		var payload updatePurchaseOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePurchaseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		received, err := parseDate(payload.ReceivedDate, "received_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), principal, id, purchaseorders.UpdateStatusInput{
			Status:       status,
			ReceivedDate: received,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
