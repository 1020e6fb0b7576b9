package purchaseorders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines purchase-order operations.
type Service interface {
	CreateOrder(ctx context.Context, principal *authz.Principal, input CreateOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, principal *authz.Principal, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
	List(ctx context.Context, principal *authz.Principal, filter ListFilter) ([]OrderDTO, error)
	Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*OrderDTO, error)
}

type CreateOrderInput struct {
	SupplierID   uuid.UUID
	OrderNumber  string
	ExpectedDate *time.Time
	Notes        *string
	Lines        []LineInput
}

type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

type UpdateStatusInput struct {
	Status       enums.PurchaseOrderStatus
	ReceivedDate *time.Time
}

type ListFilter struct {
	Status     *enums.PurchaseOrderStatus
	SupplierID *uuid.UUID
}

type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Ledger  stock.Service
	Metrics *metrics.LedgerMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	ledger  stock.Service
	metrics *metrics.LedgerMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("purchase order repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		ledger:  params.Ledger,
		metrics: params.Metrics,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateOrder inserts the order and its lines atomically. The total is
// computed here once and never recalculated.
func (s *service) CreateOrder(ctx context.Context, principal *authz.Principal, input CreateOrderInput) (*OrderDTO, error) {
	if err := authz.RequireAdmin(principal, authz.KindPurchaseOrder); err != nil {
		return nil, err
	}
	orderNumber := strings.TrimSpace(input.OrderNumber)
	if input.SupplierID == uuid.Nil || orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id and order_number are required")
	}
	total, err := validateLines(input.Lines)
	if err != nil {
		return nil, err
	}

	order := &models.PurchaseOrder{
		OrderNumber:  orderNumber,
		SupplierID:   input.SupplierID,
		Status:       enums.PurchaseOrderStatusPending,
		TotalAmount:  total,
		ExpectedDate: input.ExpectedDate,
		Notes:        input.Notes,
		CreatedBy:    principal.ActorID(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.SupplierExists(ctx, input.SupplierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		if err := ensureSupplierProducts(ctx, repo, input.SupplierID, input.Lines); err != nil {
			return err
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "purchase order with this order number already exists").
					WithDetails(map[string]any{"order_number": orderNumber})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert purchase order")
		}

		lines := make([]models.PurchaseOrderLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			lines = append(lines, models.PurchaseOrderLine{
				PurchaseOrderID: order.ID,
				LineNo:          len(lines) + 1,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice.Round(2),
			})
		}
		if err := repo.CreateLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert purchase order lines")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"purchase_order_id": order.ID.String(),
		"order_number":      orderNumber,
		"total_amount":      total.StringFixed(2),
	}), "purchase_order.created")
	return s.load(ctx, order.ID)
}

// UpdateStatus moves the order through its state machine. Receiving an order
// posts one inbound ledger entry per line in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, principal *authz.Principal, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	if err := authz.RequireAdmin(principal, authz.KindPurchaseOrder); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be one of: PENDING, APPROVED, RECEIVED, CANCELLED")
	}

	var from enums.PurchaseOrderStatus
	changed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
		}
		from = order.Status
		if order.Status == input.Status {
			return nil
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order status transition not allowed").
				WithDetails(map[string]any{"from": string(order.Status), "to": string(input.Status)})
		}

		var receivedDate *time.Time
		if input.Status == enums.PurchaseOrderStatusReceived {
			received := s.now()
			if input.ReceivedDate != nil {
				received = input.ReceivedDate.UTC()
			}
			receivedDate = &received
			if err := s.receive(ctx, tx, principal, order); err != nil {
				return err
			}
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Status, receivedDate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase order status")
		}
		changed = true
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase order status")
	}

	if changed {
		s.metrics.ObserveTransition(string(from), string(input.Status))
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"purchase_order_id": id.String(),
			"from":              string(from),
			"to":                string(input.Status),
		}), "purchase_order.status.changed")
	}
	return s.load(ctx, id)
}

func (s *service) receive(ctx context.Context, tx *gorm.DB, principal *authz.Principal, order *models.PurchaseOrder) error {
	orderID := order.ID
	note := "received on purchase order " + order.OrderNumber
	for _, line := range order.Lines {
		productID := line.ProductID
		if _, err := s.ledger.ApplyInTx(ctx, tx, principal, stock.Input{
			ProductID:       &productID,
			Direction:       enums.TransactionDirectionIn,
			Quantity:        line.Quantity,
			Note:            &note,
			PurchaseOrderID: &orderID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, principal *authz.Principal, filter ListFilter) ([]OrderDTO, error) {
	supplierID, err := authz.ResolveListSupplier(principal, authz.KindPurchaseOrder, filter.SupplierID)
	if err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, err := s.repo.ListOrders(ctx, ListFilter{Status: filter.Status, SupplierID: supplierID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*OrderDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	if err := authz.Authorize(principal, authz.ActionRead, authz.Owned(authz.KindPurchaseOrder, order.SupplierID)); err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	return FromModel(order), nil
}

// validateLines checks every line and returns Σ quantity × unit price.
func validateLines(lines []LineInput) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	total := decimal.Zero
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			return decimal.Zero, lineError(i, "product_id is required")
		}
		if line.Quantity <= 0 {
			return decimal.Zero, lineError(i, "quantity must be greater than zero")
		}
		if !line.UnitPrice.IsPositive() {
			return decimal.Zero, lineError(i, "unit_price must be greater than zero")
		}
		total = total.Add(line.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(2), nil
}

func lineError(index int, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"line": index})
}

func ensureSupplierProducts(ctx context.Context, repo Repository, supplierID uuid.UUID, lines []LineInput) error {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	products, err := repo.FindProducts(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	owners := make(map[uuid.UUID]uuid.UUID, len(products))
	for _, p := range products {
		owners[p.ID] = p.SupplierID
	}
	for _, id := range ids {
		owner, ok := owners[id]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "product not found").WithDetails(map[string]any{"product_id": id})
		}
		if owner != supplierID {
			return pkgerrors.New(pkgerrors.CodeValidation, "product does not belong to supplier").WithDetails(map[string]any{"product_id": id})
		}
	}
	return nil
}
