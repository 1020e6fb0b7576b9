package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	"github.com/Devvfong/inventory-management/pkg/pagination"
)

// Repository holds the ledger queries. Every write helper expects to run on
// a transaction handle.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindProduct resolves a product by id, or by SKU when id is nil.
func (r *Repository) FindProduct(ctx context.Context, id *uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	query := r.db.WithContext(ctx)
	if id != nil {
		query = query.Where("id = ?", *id)
	} else {
		query = query.Where("sku = ?", sku)
	}
	if err := query.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// EnsureStockItem inserts an empty stock row for the pair unless one exists.
func (r *Repository) EnsureStockItem(ctx context.Context, item *models.StockItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

// Adjust applies delta to the stock row. Negative deltas only match while
// quantity >= |delta|, so a zero row count means the guard rejected it.
func (r *Repository) Adjust(ctx context.Context, productID, warehouseID uuid.UUID, delta int, now time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}
	res := query.Updates(map[string]any{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": now,
	})
	return res.RowsAffected, res.Error
}

// SoleWarehouseID returns the warehouse of the product's only stock row, or
// nil when it has none or several.
func (r *Repository) SoleWarehouseID(ctx context.Context, productID uuid.UUID) (*uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ?", productID).
		Limit(2).
		Pluck("warehouse_id", &ids).Error
	if err != nil || len(ids) != 1 {
		return nil, err
	}
	return &ids[0], nil
}

func (r *Repository) CurrentQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Select("quantity").
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&item).Error
	return item.Quantity, err
}

func (r *Repository) CreateTransaction(ctx context.Context, txn *models.StockTransaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(txn).Error
}

type listQuery struct {
	SupplierID *uuid.UUID
	ProductID  *uuid.UUID
	Direction  *enums.TransactionDirection
	Limit      int
	Cursor     *pagination.Cursor
}

// List returns newest-first transactions plus the cursor of the next page.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.StockTransaction, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Preload("Product").
		Preload("Warehouse")
	if q.SupplierID != nil {
		query = query.Where("product_id IN (?)",
			r.db.Model(&models.Product{}).Select("id").Where("supplier_id = ?", *q.SupplierID))
	}
	if q.ProductID != nil {
		query = query.Where("product_id = ?", *q.ProductID)
	}
	if q.Direction != nil {
		query = query.Where("direction = ?", *q.Direction)
	}
	if q.Cursor != nil {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID)
	}

	var rows []models.StockTransaction
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(q.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, q.Limit, func(tx models.StockTransaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: tx.CreatedAt, ID: tx.ID}
	})
	return page, next, nil
}

func (r *Repository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.StockTransaction, error) {
	var txn models.StockTransaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Warehouse").
		First(&txn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
