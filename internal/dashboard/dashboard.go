// Package dashboard aggregates the landing-page summary.
package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
)

// SummaryDTO is the dashboard payload.
type SummaryDTO struct {
	TotalProducts      int64                               `json:"total_products"`
	LowStockCount      int64                               `json:"low_stock_count"`
	InventoryValue     decimal.Decimal                     `json:"inventory_value"`
	TotalUnits         int64                               `json:"total_units"`
	PurchaseOrders     int64                               `json:"purchase_orders"`
	OrdersByStatus     map[enums.PurchaseOrderStatus]int64 `json:"orders_by_status"`
	RecentTransactions []stock.TransactionDTO              `json:"recent_transactions"`
}

type stockTotals struct {
	LowStock int64
	Units    int64
	Value    decimal.Decimal
}

type statusCount struct {
	Status enums.PurchaseOrderStatus
	Count  int64
}

type Service interface {
	Summary(ctx context.Context, principal *authz.Principal) (*SummaryDTO, error)
}

type service struct {
	db     *db.Client
	ledger stock.Service
	recent int
}

func NewService(client *db.Client, ledger stock.Service, recent int) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if recent <= 0 {
		recent = 5
	}
	return &service{db: client, ledger: ledger, recent: recent}, nil
}

// Summary runs the independent aggregates concurrently. Suppliers only see
// their own catalog and orders.
func (s *service) Summary(ctx context.Context, principal *authz.Principal) (*SummaryDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	scope := authz.ScopeSupplier(principal)
	out := &SummaryDTO{OrdersByStatus: map[enums.PurchaseOrderStatus]int64{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.products(gctx, scope).Count(&out.TotalProducts).Error
	})

	g.Go(func() error {
		var row stockTotals
		err := s.stockItems(gctx, scope).
			Select(`COALESCE(SUM(CASE WHEN stock_items.quantity <= stock_items.reorder_level THEN 1 ELSE 0 END), 0) AS low_stock,
				COALESCE(SUM(stock_items.quantity), 0) AS units,
				COALESCE(SUM(stock_items.quantity * products.price), 0) AS value`).
			Scan(&row).Error
		if err != nil {
			return err
		}
		out.LowStockCount = row.LowStock
		out.TotalUnits = row.Units
		out.InventoryValue = row.Value.Round(2)
		return nil
	})

	var byStatus []statusCount
	g.Go(func() error {
		query := s.db.DB().WithContext(gctx).Model(&models.PurchaseOrder{})
		if scope != nil {
			query = query.Where("supplier_id = ?", *scope)
		}
		return query.Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error
	})

	var recent []stock.TransactionDTO
	g.Go(func() error {
		page, err := s.ledger.List(gctx, principal, stock.ListFilter{Limit: s.recent})
		if err != nil {
			return err
		}
		recent = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dashboard summary")
	}

	for _, row := range byStatus {
		out.OrdersByStatus[row.Status] = row.Count
		out.PurchaseOrders += row.Count
	}
	out.RecentTransactions = recent
	return out, nil
}

func (s *service) products(ctx context.Context, scope *uuid.UUID) *gorm.DB {
	query := s.db.DB().WithContext(ctx).Model(&models.Product{})
	if scope != nil {
		query = query.Where("supplier_id = ?", *scope)
	}
	return query
}

func (s *service) stockItems(ctx context.Context, scope *uuid.UUID) *gorm.DB {
	query := s.db.DB().WithContext(ctx).
		Model(&models.StockItem{}).
		Joins("JOIN products ON products.id = stock_items.product_id")
	if scope != nil {
		query = query.Where("products.supplier_id = ?", *scope)
	}
	return query
}
