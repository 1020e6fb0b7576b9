package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Devvfong/inventory-management/api"
	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/products"
	"github.com/Devvfong/inventory-management/internal/suppliers"
	"github.com/Devvfong/inventory-management/internal/users"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/enums"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/security"
)

const (
	adminEmail    = "admin@example.com"
	supplierEmail = "supplier@example.com"
	demoPassword  = "Password123!"
)

type demoProduct struct {
	name     string
	sku      string
	price    string
	quantity int
	reorder  int
}

var demoProducts = []demoProduct{
	{name: "Laptop", sku: "LAP-001", price: "999.99", quantity: 25, reorder: 5},
	{name: "Wireless Mouse", sku: "MOU-001", price: "24.50", quantity: 150, reorder: 20},
	{name: "USB-C Cable", sku: "CAB-001", price: "9.99", quantity: 8, reorder: 10},
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	password := flag.String("password", demoPassword, "password for the demo accounts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{ServiceName: "seed", Level: logger.ParseLevel(cfg.App.LogLevel)})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := seed(ctx, cfg, logg, client, *password); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
}

// seed loads the demo dataset. It is a no-op once the admin account exists.
func seed(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client, password string) error {
	userRepo := users.NewRepository(client.DB())
	if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
		logg.Info(ctx, "seed.skip already seeded")
		return nil
	} else if !db.IsNotFound(err) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	services, err := api.NewServices(api.Options{Config: cfg, Logger: logg, DB: client})
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	active := true
	admin, err := userRepo.Create(ctx, users.CreateUserDTO{
		Email:        adminEmail,
		PasswordHash: hash,
		Name:         "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     &active,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	principal := &authz.Principal{UserID: admin.ID, Email: admin.Email, Role: enums.UserRoleAdmin}

	if _, err := services.Warehouses.Create(ctx, principal, warehouses.CreateInput{
		Code: cfg.Inventory.DefaultWarehouseCode,
		Name: cfg.Inventory.DefaultWarehouseName,
	}); err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}

	contact := "+1 555 0100"
	address := "1 Demo Street"
	supplier, err := services.Suppliers.Create(ctx, principal, suppliers.CreateInput{
		Name:        "Demo Supplier Co.",
		ContactInfo: &contact,
		Address:     &address,
		Email:       supplierEmail,
		Password:    password,
		ContactName: "Demo Supplier",
	})
	if err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	for _, p := range demoProducts {
		if _, err := createProduct(ctx, services.Products, principal, supplier.ID, p); err != nil {
			return fmt.Errorf("create product %s: %w", p.sku, err)
		}
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"admin":    adminEmail,
		"supplier": supplierEmail,
		"products": len(demoProducts),
	}), "seed.complete")
	return nil
}

func createProduct(ctx context.Context, svc products.Service, principal *authz.Principal, supplierID uuid.UUID, p demoProduct) (*products.ProductDTO, error) {
	price, err := decimal.NewFromString(p.price)
	if err != nil {
		return nil, err
	}
	return svc.Create(ctx, principal, products.CreateInput{
		SupplierID:      &supplierID,
		Name:            p.name,
		SKU:             p.sku,
		Price:           price,
		InitialQuantity: p.quantity,
		ReorderLevel:    p.reorder,
	})
}
