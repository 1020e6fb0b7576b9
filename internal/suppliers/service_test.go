package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/users"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/dbtest"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.New(t)
	svc, err := NewService(ServiceParams{
		Repo:           NewRepository(client.DB()),
		Users:          users.NewRepository(client.DB()),
		DB:             client,
		PasswordConfig: testPasswordConfig,
	})
	require.NoError(t, err)
	return svc, client
}

func admin() *authz.Principal {
	return &authz.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func supplierPrincipal(s *models.Supplier) *authz.Principal {
	id := s.ID
	return &authz.Principal{UserID: s.UserID, Role: enums.UserRoleSupplier, SupplierID: &id}
}

func TestCreateSupplierProvisionsLogin(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	contact := "contact@demosupplier.com"

	created, err := svc.Create(ctx, admin(), CreateInput{
		Name:        "Demo Supplier Co.",
		ContactInfo: &contact,
		Email:       "Supplier@Example.com",
		Password:    "Password123!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Demo Supplier Co.", created.Name)

	var user models.User
	require.NoError(t, client.DB().First(&user, "id = ?", created.UserID).Error)
	assert.Equal(t, "supplier@example.com", user.Email)
	assert.Equal(t, enums.UserRoleSupplier, user.Role)
	ok, err := security.VerifyPassword("Password123!", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, admin(), CreateInput{Name: "Dup", Email: "supplier@example.com", Password: "Password123!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var count int64
	require.NoError(t, client.DB().Model(&models.Supplier{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "failed provisioning must not leave a supplier behind")
}

func TestCreateSupplierRequiresAdminAndPolicy(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	existing := dbtest.Supplier(t, client, "Acme")

	_, err := svc.Create(ctx, supplierPrincipal(existing), CreateInput{Name: "X", Email: "x@example.com", Password: "Password123!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Create(ctx, admin(), CreateInput{Name: "X", Email: "x@example.com", Password: "short"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetAndUpdateOwnership(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	acme := dbtest.Supplier(t, client, "Acme")
	globex := dbtest.Supplier(t, client, "Globex")
	dbtest.Product(t, client, acme.ID, "A-1", "1.00")

	got, err := svc.Get(ctx, supplierPrincipal(acme), acme.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ProductCount)

	_, err = svc.Get(ctx, supplierPrincipal(globex), acme.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Get(ctx, admin(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	address := "123 Business Street"
	newName := "Acme Ltd"
	updated, err := svc.Update(ctx, supplierPrincipal(acme), acme.ID, UpdateInput{Name: &newName, Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	require.NotNil(t, updated.Address)
	assert.Equal(t, address, *updated.Address)

	blank := "  "
	_, err = svc.Update(ctx, admin(), acme.ID, UpdateInput{Name: &blank})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, supplierPrincipal(globex), acme.ID, UpdateInput{Name: &newName})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestListIsAdminOnly(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	acme := dbtest.Supplier(t, client, "Acme")
	dbtest.Supplier(t, client, "Beta")

	list, err := svc.List(ctx, admin())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acme", list[0].Name)

	_, err = svc.List(ctx, supplierPrincipal(acme))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestDeleteRefusedWhileProductsExist(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	acme := dbtest.Supplier(t, client, "Acme")
	product := dbtest.Product(t, client, acme.ID, "A-1", "1.00")

	err := svc.Delete(ctx, admin(), acme.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	require.NoError(t, client.DB().Delete(&models.Product{}, "id = ?", product.ID).Error)
	require.NoError(t, svc.Delete(ctx, admin(), acme.ID))

	var userCount int64
	require.NoError(t, client.DB().Model(&models.User{}).Where("id = ?", acme.UserID).Count(&userCount).Error)
	assert.Zero(t, userCount)

	err = svc.Delete(ctx, admin(), acme.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
