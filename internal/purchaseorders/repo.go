package purchaseorders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
)

// Repository defines persistence operations for purchase orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) error
	CreateLines(ctx context.Context, lines []models.PurchaseOrderLine) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]models.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PurchaseOrderStatus, receivedDate *time.Time) error
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	SupplierExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.PurchaseOrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error
}

func (r *repository) withDetail() *gorm.DB {
	return r.db.
		Preload("Supplier").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Lines.Product")
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	if err := r.withDetail().WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderForUpdate locks the order row so concurrent status changes serialise.
func (r *repository) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	query := r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") })
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, filter ListFilter) ([]models.PurchaseOrder, error) {
	query := r.withDetail().WithContext(ctx).Model(&models.PurchaseOrder{})
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var rows []models.PurchaseOrder
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PurchaseOrderStatus, receivedDate *time.Time) error {
	changes := map[string]any{"status": status}
	if receivedDate != nil {
		changes["received_date"] = *receivedDate
	}
	return r.db.WithContext(ctx).Model(&models.PurchaseOrder{}).Where("id = ?", id).Updates(changes).Error
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SupplierExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
