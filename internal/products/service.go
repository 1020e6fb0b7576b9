package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

// Service exposes catalog management operations.
type Service interface {
	List(ctx context.Context, principal *authz.Principal, filter ListFilter) ([]ProductDTO, error)
	Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, principal *authz.Principal, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, principal *authz.Principal, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, principal *authz.Principal, id uuid.UUID) error
}

type ListFilter struct {
	SupplierID *uuid.UUID
	Search     string
}

// CreateInput holds the validated payload to create a product. SupplierID
// defaults to the caller's own supplier profile.
type CreateInput struct {
	SupplierID      *uuid.UUID
	Name            string
	SKU             string
	Description     *string
	Price           decimal.Decimal
	InitialQuantity int
	ReorderLevel    int
	MaxStockLevel   *int
	WarehouseID     *uuid.UUID
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name          *string
	SKU           *string
	Description   *string
	Price         *decimal.Decimal
	ReorderLevel  *int
	MaxStockLevel *int
}

type ServiceParams struct {
	Repo       *Repository
	DB         *db.Client
	Ledger     stock.Service
	Warehouses *warehouses.Resolver
	Logger     *logger.Logger
}

type service struct {
	repo       *Repository
	db         *db.Client
	ledger     stock.Service
	warehouses *warehouses.Resolver
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
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
		ledger:     params.Ledger,
		warehouses: params.Warehouses,
		logg:       logg,
	}, nil
}

func (s *service) List(ctx context.Context, principal *authz.Principal, filter ListFilter) ([]ProductDTO, error) {
	supplierID, err := authz.ResolveListSupplier(principal, authz.KindProduct, filter.SupplierID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, listQuery{SupplierID: supplierID, Search: strings.TrimSpace(filter.Search)})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*ProductDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	product, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := authz.Authorize(principal, authz.ActionRead, authz.Owned(authz.KindProduct, product.SupplierID)); err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

// Create inserts the product, its first stock row and, when requested, the
// opening inbound ledger entry in one transaction.
func (s *service) Create(ctx context.Context, principal *authz.Principal, input CreateInput) (*ProductDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	supplierID := input.SupplierID
	if supplierID == nil && !principal.IsAdmin() {
		supplierID = principal.SupplierID
	}
	if supplierID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id is required")
	}
	if err := authz.Authorize(principal, authz.ActionCreate, authz.Owned(authz.KindProduct, *supplierID)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" || sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and sku are required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial_quantity must be zero or greater")
	}
	if err := validateLevels(&input.ReorderLevel, input.MaxStockLevel); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		exists, err := txRepo.SupplierExists(ctx, *supplierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}

		product := &models.Product{
			SupplierID:  *supplierID,
			Name:        name,
			SKU:         sku,
			Description: input.Description,
			Price:       input.Price.Round(2),
		}
		if err := txRepo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "sku") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists").
					WithDetails(map[string]any{"sku": sku})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
		}
		createdID = product.ID

		warehouse, err := s.warehouses.Resolve(ctx, tx, input.WarehouseID)
		if err != nil {
			return err
		}
		item := &models.StockItem{
			ProductID:     product.ID,
			WarehouseID:   warehouse.ID,
			ReorderLevel:  input.ReorderLevel,
			MaxStockLevel: input.MaxStockLevel,
		}
		if err := txRepo.CreateStockItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock item")
		}

		if input.InitialQuantity > 0 {
			productID, warehouseID := product.ID, warehouse.ID
			note := "initial stock"
			if _, err := s.ledger.ApplyInTx(ctx, tx, principal, stock.Input{
				ProductID:   &productID,
				WarehouseID: &warehouseID,
				Direction:   enums.TransactionDirectionIn,
				Quantity:    input.InitialQuantity,
				Note:        &note,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id":  createdID.String(),
		"supplier_id": supplierID.String(),
		"sku":         sku,
	}), "product.created")
	return s.detail(ctx, createdID)
}

func (s *service) Update(ctx context.Context, principal *authz.Principal, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}

	productChanges := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		productChanges["name"] = name
	}
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be blank")
		}
		productChanges["sku"] = sku
	}
	if input.Description != nil {
		productChanges["description"] = input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		productChanges["price"] = input.Price.Round(2)
	}
	if err := validateLevels(input.ReorderLevel, input.MaxStockLevel); err != nil {
		return nil, err
	}
	levelChanges := map[string]any{}
	if input.ReorderLevel != nil {
		levelChanges["reorder_level"] = *input.ReorderLevel
	}
	if input.MaxStockLevel != nil {
		levelChanges["max_stock_level"] = *input.MaxStockLevel
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := authz.Authorize(principal, authz.ActionUpdate, authz.Owned(authz.KindProduct, product.SupplierID)); err != nil {
			return err
		}
		if err := txRepo.Update(ctx, id, productChanges); err != nil {
			if db.IsUniqueViolation(err, "sku") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		if err := txRepo.UpdateStockLevels(ctx, id, levelChanges); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock levels")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.detail(ctx, id)
}

// Delete removes a product that nothing in the ledger or an order references.
func (s *service) Delete(ctx context.Context, principal *authz.Principal, id uuid.UUID) error {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return err
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := authz.Authorize(principal, authz.ActionDelete, authz.Owned(authz.KindProduct, product.SupplierID)); err != nil {
			return err
		}
		transactions, lines, err := txRepo.CountReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product references")
		}
		if transactions > 0 || lines > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "product has stock history or purchase orders").
				WithDetails(map[string]any{"transactions": transactions, "order_lines": lines})
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) detail(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return FromModel(product), nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be zero or greater")
	}
	return nil
}

func validateLevels(reorder, maxLevel *int) error {
	if reorder != nil && *reorder < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reorder_level must be zero or greater")
	}
	if maxLevel != nil && *maxLevel < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_stock_level must be zero or greater")
	}
	if reorder != nil && maxLevel != nil && *maxLevel < *reorder {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_stock_level must not be below reorder_level")
	}
	return nil
}
