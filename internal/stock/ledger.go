package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/metrics"
	"github.com/Devvfong/inventory-management/pkg/pagination"
	"github.com/Devvfong/inventory-management/pkg/types"
)

// Input describes one stock movement. ProductID wins over SKU when both are set.
type Input struct {
	ProductID       *uuid.UUID
	SKU             string
	WarehouseID     *uuid.UUID
	Direction       enums.TransactionDirection
	Quantity        int
	Note            *string
	PurchaseOrderID *uuid.UUID
}

type ListFilter struct {
	ProductID *uuid.UUID
	Direction *enums.TransactionDirection
	Limit     int
	Cursor    string
}

// Service is the stock ledger.
type Service interface {
	ApplyTransaction(ctx context.Context, principal *authz.Principal, input Input) (*TransactionDTO, error)
	ApplyInTx(ctx context.Context, tx *gorm.DB, principal *authz.Principal, input Input) (*models.StockTransaction, error)
	List(ctx context.Context, principal *authz.Principal, filter ListFilter) (*types.ListBody[TransactionDTO], error)
	Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*TransactionDTO, error)
}

type ServiceParams struct {
	Repo       *Repository
	DB         *db.Client
	Warehouses *warehouses.Resolver
	Metrics    *metrics.LedgerMetrics
	Logger     *logger.Logger
}

type service struct {
	repo       *Repository
	db         *db.Client
	warehouses *warehouses.Resolver
	metrics    *metrics.LedgerMetrics
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Warehouses == nil {
		return nil, fmt.Errorf("warehouse resolver required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:       params.Repo,
		db:         params.DB,
		warehouses: params.Warehouses,
		metrics:    params.Metrics,
		logg:       logg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// ApplyTransaction posts one movement in its own database transaction.
// The stock row update and the ledger insert commit together or not at all.
func (s *service) ApplyTransaction(ctx context.Context, principal *authz.Principal, input Input) (*TransactionDTO, error) {
	var posted *models.StockTransaction
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		posted, err = s.ApplyInTx(ctx, tx, principal, input)
		return err
	})
	s.metrics.ObserveTransaction(string(input.Direction), outcomeOf(err), input.Quantity)
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post stock transaction")
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transaction_id": posted.ID.String(),
		"product_id":     posted.ProductID.String(),
		"direction":      string(posted.Direction),
		"quantity":       posted.Quantity,
		"new_quantity":   posted.ResultingQuantity,
	}), "stock.transaction.posted")
	return FromModel(posted), nil
}

// ApplyInTx runs the ledger algorithm on tx so callers can compose it with
// their own writes. Every read and write goes through tx.
func (s *service) ApplyInTx(ctx context.Context, tx *gorm.DB, principal *authz.Principal, input Input) (*models.StockTransaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)

	product, err := repo.FindProduct(ctx, input.ProductID, strings.TrimSpace(input.SKU))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrProductNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := authz.Authorize(principal, authz.ActionUpdate, authz.Owned(authz.KindProduct, product.SupplierID)); err != nil {
		return nil, err
	}

	// Without an explicit warehouse, stock held in exactly one place is moved there.
	warehouseID := input.WarehouseID
	if warehouseID == nil {
		if warehouseID, err = repo.SoleWarehouseID(ctx, product.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock locations")
		}
	}
	warehouse, err := s.warehouses.Resolve(ctx, tx, warehouseID)
	if err != nil {
		return nil, err
	}

	if err := repo.EnsureStockItem(ctx, &models.StockItem{ProductID: product.ID, WarehouseID: warehouse.ID}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure stock item")
	}

	now := s.now()
	delta := input.Quantity * input.Direction.Sign()
	affected, err := repo.Adjust(ctx, product.ID, warehouse.ID, delta, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if affected == 0 {
		current, qerr := repo.CurrentQuantity(ctx, product.ID, warehouse.ID)
		if qerr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, qerr, "read stock")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInsufficient, ErrInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": product.ID,
				"available":  current,
				"requested":  input.Quantity,
			})
	}

	resulting, err := repo.CurrentQuantity(ctx, product.ID, warehouse.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock")
	}

	txn := &models.StockTransaction{
		ProductID:         product.ID,
		WarehouseID:       warehouse.ID,
		Direction:         input.Direction,
		Quantity:          input.Quantity,
		ResultingQuantity: resulting,
		Note:              trimmedNote(input.Note),
		ActorID:           principal.ActorID(),
		PurchaseOrderID:   input.PurchaseOrderID,
		CreatedAt:         now,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock transaction")
	}
	txn.Product = product
	txn.Warehouse = warehouse
	return txn, nil
}

func (s *service) List(ctx context.Context, principal *authz.Principal, filter ListFilter) (*types.ListBody[TransactionDTO], error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filter.Direction != nil && !filter.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be one of: in, out")
	}

	rows, next, err := s.repo.List(ctx, listQuery{
		SupplierID: authz.ScopeSupplier(principal),
		ProductID:  filter.ProductID,
		Direction:  filter.Direction,
		Limit:      filter.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock transactions")
	}

	items := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &types.ListBody[TransactionDTO]{Items: items, NextCursor: next.Next()}, nil
}

func (s *service) Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*TransactionDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	txn, err := s.repo.FindTransaction(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock transaction")
	}
	if txn.Product != nil {
		if err := authz.Authorize(principal, authz.ActionRead, authz.Owned(authz.KindTransaction, txn.Product.SupplierID)); err != nil {
			return nil, err
		}
	}
	return FromModel(txn), nil
}

func validateInput(input Input) error {
	if input.ProductID == nil && strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id or sku is required")
	}
	if !input.Direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "direction must be one of: in, out")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	return nil
}

func trimmedNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomePosted
	case errors.Is(err, ErrInsufficientStock):
		return metrics.OutcomeInsufficient
	case pkgerrors.IsCode(err, pkgerrors.CodeDependency), pkgerrors.As(err) == nil:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeRejected
	}
}
