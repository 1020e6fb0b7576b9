package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Devvfong/inventory-management/pkg/db/models"
)

// Repository wraps product persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) detail() *gorm.DB {
	return r.db.
		Preload("Supplier").
		Preload("StockItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("StockItems.Warehouse")
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetDetail loads the product with its supplier and stock rows.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.detail().WithContext(ctx).First(&product, "products.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

type listQuery struct {
	SupplierID *uuid.UUID
	Search     string
}

// List returns products newest first.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Product, error) {
	query := r.detail().WithContext(ctx).Model(&models.Product{})
	if q.SupplierID != nil {
		query = query.Where("supplier_id = ?", *q.SupplierID)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?))", like, like)
	}
	var rows []models.Product
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes).Error
}

// CreateStockItem inserts the product's first stock row.
func (r *Repository) CreateStockItem(ctx context.Context, item *models.StockItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// UpdateStockLevels applies reorder and max levels to every stock row of the product.
func (r *Repository) UpdateStockLevels(ctx context.Context, productID uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.StockItem{}).Where("product_id = ?", productID).Updates(changes).Error
}

// CountReferences reports how many ledger entries and order lines point at the product.
func (r *Repository) CountReferences(ctx context.Context, productID uuid.UUID) (transactions int64, orderLines int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.StockTransaction{}).Where("product_id = ?", productID).Count(&transactions).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&models.PurchaseOrderLine{}).Where("product_id = ?", productID).Count(&orderLines).Error; err != nil {
		return 0, 0, err
	}
	return transactions, orderLines, nil
}

// Delete removes the product and its stock rows.
func (r *Repository) Delete(ctx context.Context, productID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.StockItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", productID).Delete(&models.Product{}).Error
}

func (r *Repository) SupplierExists(ctx context.Context, supplierID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", supplierID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
