package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes only the provided columns.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Updates(changes).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Supplier{}, "id = ?", id).Error
}

// CountProducts returns product counts keyed by supplier id.
func (r *Repository) CountProducts(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		SupplierID uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("supplier_id, COUNT(*) AS total").
		Where("supplier_id IN ?", ids).
		Group("supplier_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SupplierID] = row.Total
	}
	return counts, nil
}

// CountPurchaseOrders returns how many purchase orders reference the supplier.
func (r *Repository) CountPurchaseOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrder{}).Where("supplier_id = ?", id).Count(&total).Error
	return total, err
}
