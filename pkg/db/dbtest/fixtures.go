package dbtest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
)

// Admin inserts an ADMIN user.
func Admin(t testing.TB, client *db.Client) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "admin-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "unused",
		Name:         "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return user
}

// Supplier inserts a SUPPLIER user together with its profile.
func Supplier(t testing.TB, client *db.Client, name string) *models.Supplier {
	t.Helper()
	user := &models.User{
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "unused",
		Name:         name,
		Role:         enums.UserRoleSupplier,
		IsActive:     true,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("seed supplier user: %v", err)
	}
	supplier := &models.Supplier{UserID: user.ID, Name: name}
	if err := client.DB().Create(supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return supplier
}

// Product inserts a product owned by supplierID with the given price.
func Product(t testing.TB, client *db.Client, supplierID uuid.UUID, sku, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		SupplierID: supplierID,
		Name:       "Product " + sku,
		SKU:        sku,
		Price:      decimal.RequireFromString(price),
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}
