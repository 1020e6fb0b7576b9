package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/users"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/security"
)

// Service manages supplier profiles.
type Service interface {
	List(ctx context.Context, principal *authz.Principal) ([]SupplierDTO, error)
	Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*SupplierDTO, error)
	Create(ctx context.Context, principal *authz.Principal, input CreateInput) (*SupplierDTO, error)
	Update(ctx context.Context, principal *authz.Principal, id uuid.UUID, input UpdateInput) (*SupplierDTO, error)
	Delete(ctx context.Context, principal *authz.Principal, id uuid.UUID) error
	// Provision creates a SUPPLIER user and its profile in one transaction.
	Provision(ctx context.Context, input ProvisionInput) (*models.User, *models.Supplier, error)
}

// CreateInput is the admin payload for onboarding a supplier together with its login.
type CreateInput struct {
	Name        string
	ContactInfo *string
	Address     *string
	Email       string
	Password    string
	ContactName string
}

// UpdateInput carries optional field changes.
type UpdateInput struct {
	Name        *string
	ContactInfo *string
	Address     *string
}

// ProvisionInput expects an already hashed password.
type ProvisionInput struct {
	Email        string
	PasswordHash string
	UserName     string
	Name         string
	ContactInfo  *string
	Address      *string
}

type ServiceParams struct {
	Repo           *Repository
	Users          *users.Repository
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo        *Repository
	users       *users.Repository
	db          *db.Client
	passwordCfg config.PasswordConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:        params.Repo,
		users:       params.Users,
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) List(ctx context.Context, principal *authz.Principal) ([]SupplierDTO, error) {
	if err := authz.RequireAdmin(principal, authz.KindSupplier); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.repo.CountProducts(ctx, ids...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count supplier products")
	}
	out := make([]SupplierDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], counts[rows[i].ID]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, principal *authz.Principal, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(principal, authz.ActionRead, authz.Owned(authz.KindSupplier, supplier.ID)); err != nil {
		return nil, err
	}
	return s.withCount(ctx, supplier)
}

func (s *service) Create(ctx context.Context, principal *authz.Principal, input CreateInput) (*SupplierDTO, error) {
	if err := authz.RequireAdmin(principal, authz.KindSupplier); err != nil {
		return nil, err
	}
	if err := security.CheckPolicy(input.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	userName := strings.TrimSpace(input.ContactName)
	if userName == "" {
		userName = input.Name
	}
	_, supplier, err := s.Provision(ctx, ProvisionInput{
		Email:        input.Email,
		PasswordHash: hash,
		UserName:     userName,
		Name:         input.Name,
		ContactInfo:  input.ContactInfo,
		Address:      input.Address,
	})
	if err != nil {
		return nil, err
	}
	return FromModel(supplier, 0), nil
}

func (s *service) Provision(ctx context.Context, input ProvisionInput) (*models.User, *models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}

	var (
		user     *models.User
		supplier *models.Supplier
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = s.users.WithTx(tx).Create(ctx, users.CreateUserDTO{
			Email:        input.Email,
			PasswordHash: input.PasswordHash,
			Name:         strings.TrimSpace(input.UserName),
			Role:         enums.UserRoleSupplier,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "email") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		supplier = &models.Supplier{
			UserID:      user.ID,
			Name:        name,
			ContactInfo: input.ContactInfo,
			Address:     input.Address,
		}
		if err := s.repo.WithTx(tx).Create(ctx, supplier); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
		}
		user.Supplier = supplier
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision supplier")
	}
	return user, supplier, nil
}

func (s *service) Update(ctx context.Context, principal *authz.Principal, id uuid.UUID, input UpdateInput) (*SupplierDTO, error) {
	supplier, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(principal, authz.ActionUpdate, authz.Owned(authz.KindSupplier, supplier.ID)); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name cannot be empty")
		}
		changes["name"] = name
	}
	if input.ContactInfo != nil {
		changes["contact_info"] = *input.ContactInfo
	}
	if input.Address != nil {
		changes["address"] = *input.Address
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}

	updated, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.withCount(ctx, updated)
}

// Delete removes the supplier and its login. Suppliers still referenced by
// products or purchase orders are kept.
func (s *service) Delete(ctx context.Context, principal *authz.Principal, id uuid.UUID) error {
	if err := authz.RequireAdmin(principal, authz.KindSupplier); err != nil {
		return err
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplier, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		counts, err := repo.CountProducts(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count supplier products")
		}
		if counts[id] > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "supplier still has products").
				WithDetails(map[string]any{"product_count": counts[id]})
		}
		orders, err := repo.CountPurchaseOrders(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count supplier purchase orders")
		}
		if orders > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "supplier still has purchase orders").
				WithDetails(map[string]any{"purchase_order_count": orders})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
		}
		if err := tx.WithContext(ctx).Delete(&models.User{}, "id = ?", supplier.UserID).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier user")
		}
		return nil
	})
	if err != nil && pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
	}
	return err
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func (s *service) withCount(ctx context.Context, supplier *models.Supplier) (*SupplierDTO, error) {
	counts, err := s.repo.CountProducts(ctx, supplier.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count supplier products")
	}
	return FromModel(supplier, counts[supplier.ID]), nil
}
