package warehouses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
)

type WarehouseDTO struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  *string   `json:"location,omitempty"`
	Capacity  *int      `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(w *models.Warehouse) *WarehouseDTO {
	if w == nil {
		return nil
	}
	return &WarehouseDTO{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Location:  w.Location,
		Capacity:  w.Capacity,
		CreatedAt: w.CreatedAt,
	}
}

type CreateInput struct {
	Code     string
	Name     string
	Location *string
	Capacity *int
}

// Resolver finds the warehouse a ledger operation targets.
type Resolver struct {
	defaultCode string
	defaultName string
}

func NewResolver(cfg config.InventoryConfig) *Resolver {
	code := strings.ToUpper(strings.TrimSpace(cfg.DefaultWarehouseCode))
	if code == "" {
		code = "MAIN"
	}
	name := strings.TrimSpace(cfg.DefaultWarehouseName)
	if name == "" {
		name = "Main Warehouse"
	}
	return &Resolver{defaultCode: code, defaultName: name}
}

// DefaultCode is the code of the warehouse used when none is given.
func (r *Resolver) DefaultCode() string {
	return r.defaultCode
}

// Resolve loads id when set, otherwise the default warehouse, creating it on
// first use. It must run on the caller's transaction handle.
func (r *Resolver) Resolve(ctx context.Context, tx *gorm.DB, id *uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if id != nil {
		if err := tx.WithContext(ctx).First(&warehouse, "id = ?", *id).Error; err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
		}
		return &warehouse, nil
	}

	// Concurrent first uses may both insert; the loser's row is dropped.
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&models.Warehouse{Code: r.defaultCode, Name: r.defaultName}).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default warehouse")
	}
	if err := tx.WithContext(ctx).First(&warehouse, "code = ?", r.defaultCode).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default warehouse")
	}
	return &warehouse, nil
}

type Service interface {
	List(ctx context.Context, principal *authz.Principal) ([]WarehouseDTO, error)
	Create(ctx context.Context, principal *authz.Principal, input CreateInput) (*WarehouseDTO, error)
}

type service struct {
	db *db.Client
}

func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{db: client}, nil
}

func (s *service) List(ctx context.Context, principal *authz.Principal) ([]WarehouseDTO, error) {
	if err := authz.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	var rows []models.Warehouse
	if err := s.db.DB().WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	out := make([]WarehouseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, principal *authz.Principal, input CreateInput) (*WarehouseDTO, error) {
	if err := authz.RequireAdmin(principal, authz.KindWarehouse); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code and name are required")
	}
	if input.Capacity != nil && *input.Capacity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be zero or greater")
	}

	warehouse := &models.Warehouse{Code: code, Name: name, Location: input.Location, Capacity: input.Capacity}
	if err := s.db.DB().WithContext(ctx).Create(warehouse).Error; err != nil {
		if db.IsUniqueViolation(err, "code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "warehouse code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warehouse")
	}
	return FromModel(warehouse), nil
}
