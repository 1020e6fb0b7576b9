package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Devvfong/inventory-management/internal/suppliers"
	"github.com/Devvfong/inventory-management/internal/users"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/security"
)

// RegisterService handles self-service supplier onboarding. Admin accounts
// are only created by the seed command.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type provisioner interface {
	Provision(ctx context.Context, input suppliers.ProvisionInput) (*models.User, *models.Supplier, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	Suppliers      provisioner
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type registerService struct {
	suppliers   provisioner
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier provisioner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &registerService{
		suppliers:   params.Suppliers,
		passwordCfg: params.PasswordConfig,
		logg:        logg,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}
	if err := security.CheckPolicy(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	supplierName := strings.TrimSpace(req.SupplierName)
	if supplierName == "" {
		supplierName = name
	}
	user, _, err := s.suppliers.Provision(ctx, suppliers.ProvisionInput{
		Email:        email,
		PasswordHash: passwordHash,
		UserName:     name,
		Name:         supplierName,
		ContactInfo:  req.ContactInfo,
		Address:      req.Address,
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.register.success")
	return users.FromModel(user), nil
}
