package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
)

func supplierPrincipal(supplierID uuid.UUID) *Principal {
	return &Principal{UserID: uuid.New(), Role: enums.UserRoleSupplier, SupplierID: &supplierID}
}

func adminPrincipal() *Principal {
	return &Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestAuthorize(t *testing.T) {
	ownSupplier := uuid.New()
	otherSupplier := uuid.New()

	cases := []struct {
		name      string
		principal *Principal
		resource  Resource
		code      pkgerrors.Code
	}{
		{"missing principal", nil, Owned(KindProduct, ownSupplier), pkgerrors.CodeUnauthorized},
		{"missing role", &Principal{UserID: uuid.New()}, Owned(KindProduct, ownSupplier), pkgerrors.CodeUnauthorized},
		{"admin on owned", adminPrincipal(), Owned(KindProduct, otherSupplier), ""},
		{"admin on unowned", adminPrincipal(), Unowned(KindWarehouse), ""},
		{"supplier on own", supplierPrincipal(ownSupplier), Owned(KindProduct, ownSupplier), ""},
		{"supplier on other", supplierPrincipal(ownSupplier), Owned(KindPurchaseOrder, otherSupplier), pkgerrors.CodeForbidden},
		{"supplier on unowned", supplierPrincipal(ownSupplier), Unowned(KindSupplier), pkgerrors.CodeForbidden},
		{"supplier without profile", &Principal{UserID: uuid.New(), Role: enums.UserRoleSupplier}, Owned(KindProduct, ownSupplier), pkgerrors.CodeForbidden},
		{"unknown role", &Principal{UserID: uuid.New(), Role: "AUDITOR"}, Owned(KindProduct, ownSupplier), pkgerrors.CodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.principal, ActionRead, tc.resource)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.CodeOf(err))
		})
	}
}

func TestAuthorizeDenialMessage(t *testing.T) {
	err := Authorize(supplierPrincipal(uuid.New()), ActionUpdate, Owned(KindProduct, uuid.New()))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "access denied", typed.Message())

	err = Authorize(nil, ActionUpdate, Owned(KindProduct, uuid.New()))
	assert.Equal(t, "unauthenticated", pkgerrors.As(err).Message())
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(adminPrincipal(), KindSupplier))
	assert.True(t, pkgerrors.IsCode(RequireAdmin(supplierPrincipal(uuid.New()), KindSupplier), pkgerrors.CodeForbidden))
	assert.True(t, pkgerrors.IsCode(RequireAdmin(nil, KindSupplier), pkgerrors.CodeUnauthorized))
}

func TestScopeSupplier(t *testing.T) {
	assert.Nil(t, ScopeSupplier(adminPrincipal()))

	supplierID := uuid.New()
	scope := ScopeSupplier(supplierPrincipal(supplierID))
	require.NotNil(t, scope)
	assert.Equal(t, supplierID, *scope)

	orphan := ScopeSupplier(&Principal{UserID: uuid.New(), Role: enums.UserRoleSupplier})
	require.NotNil(t, orphan)
	assert.Equal(t, uuid.Nil, *orphan)
}

func TestResolveListSupplier(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	got, err := ResolveListSupplier(adminPrincipal(), KindProduct, &other)
	require.NoError(t, err)
	assert.Equal(t, other, *got)

	got, err = ResolveListSupplier(adminPrincipal(), KindProduct, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ResolveListSupplier(supplierPrincipal(own), KindProduct, nil)
	require.NoError(t, err)
	assert.Equal(t, own, *got)

	_, err = ResolveListSupplier(supplierPrincipal(own), KindProduct, &other)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = ResolveListSupplier(nil, KindProduct, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}
