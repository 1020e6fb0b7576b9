package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Devvfong/inventory-management/api/routes"
	"github.com/Devvfong/inventory-management/internal/auth"
	"github.com/Devvfong/inventory-management/internal/dashboard"
	"github.com/Devvfong/inventory-management/internal/products"
	"github.com/Devvfong/inventory-management/internal/purchaseorders"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/internal/suppliers"
	"github.com/Devvfong/inventory-management/internal/users"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/auth/session"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/metrics"
	"github.com/Devvfong/inventory-management/pkg/redis"
)

// Options are the bootstrapped clients the API is assembled from.
type Options struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.Client
	Redis  *redis.Client
	// Registry receives the HTTP and ledger collectors; nil disables /metrics.
	Registry *prometheus.Registry
}

// Services is the wired domain layer, shared by the HTTP handler and the seed command.
type Services struct {
	Auth           auth.Service
	Register       auth.RegisterService
	Products       products.Service
	Suppliers      suppliers.Service
	Warehouses     warehouses.Service
	PurchaseOrders purchaseorders.Service
	Ledger         stock.Service
	Dashboard      dashboard.Service
	Sessions       *session.Manager
}

// NewServices wires repositories and services over the shared clients. The
// session manager is only built when redis is available.
func NewServices(opts Options) (*Services, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	cfg := opts.Config
	gdb := opts.DB.DB()

	var ledgerMetrics *metrics.LedgerMetrics
	if opts.Registry != nil {
		ledgerMetrics = metrics.NewLedgerMetrics(opts.Registry)
	}
	resolver := warehouses.NewResolver(cfg.Inventory)
	userRepo := users.NewRepository(gdb)

	out := &Services{}
	var err error

	if out.Ledger, err = stock.NewService(stock.ServiceParams{
		Repo:       stock.NewRepository(gdb),
		DB:         opts.DB,
		Warehouses: resolver,
		Metrics:    ledgerMetrics,
		Logger:     opts.Logger,
	}); err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}

	if out.Products, err = products.NewService(products.ServiceParams{
		Repo:       products.NewRepository(gdb),
		DB:         opts.DB,
		Ledger:     out.Ledger,
		Warehouses: resolver,
		Logger:     opts.Logger,
	}); err != nil {
		return nil, fmt.Errorf("product service: %w", err)
	}

	if out.PurchaseOrders, err = purchaseorders.NewService(purchaseorders.ServiceParams{
		Repo:    purchaseorders.NewRepository(gdb),
		Tx:      opts.DB,
		Ledger:  out.Ledger,
		Metrics: ledgerMetrics,
		Logger:  opts.Logger,
	}); err != nil {
		return nil, fmt.Errorf("purchase order service: %w", err)
	}

	if out.Suppliers, err = suppliers.NewService(suppliers.ServiceParams{
		Repo:           suppliers.NewRepository(gdb),
		Users:          userRepo,
		DB:             opts.DB,
		PasswordConfig: cfg.Password,
	}); err != nil {
		return nil, fmt.Errorf("supplier service: %w", err)
	}

	if out.Warehouses, err = warehouses.NewService(opts.DB); err != nil {
		return nil, fmt.Errorf("warehouse service: %w", err)
	}

	if out.Dashboard, err = dashboard.NewService(opts.DB, out.Ledger, cfg.Inventory.RecentTransactions); err != nil {
		return nil, fmt.Errorf("dashboard service: %w", err)
	}

	if out.Register, err = auth.NewRegisterService(auth.RegisterServiceParams{
		Suppliers:      out.Suppliers,
		PasswordConfig: cfg.Password,
		Logger:         opts.Logger,
	}); err != nil {
		return nil, fmt.Errorf("register service: %w", err)
	}

	if opts.Redis != nil {
		if out.Sessions, err = session.NewManager(opts.Redis, cfg.JWT); err != nil {
			return nil, fmt.Errorf("session manager: %w", err)
		}
		if out.Auth, err = auth.NewService(auth.ServiceParams{
			UserRepo:       userRepo,
			SessionManager: out.Sessions,
			JWTConfig:      cfg.JWT,
			PasswordConfig: &cfg.Password,
			Logger:         opts.Logger,
		}); err != nil {
			return nil, fmt.Errorf("auth service: %w", err)
		}
	}

	return out, nil
}

// NewHandler returns the HTTP handler that cmd/api wires into its server.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Redis == nil {
		return nil, fmt.Errorf("redis client required")
	}
	services, err := NewServices(opts)
	if err != nil {
		return nil, err
	}

	deps := routes.Dependencies{
		Config:         opts.Config,
		Logger:         opts.Logger,
		DB:             opts.DB,
		Redis:          opts.Redis,
		Sessions:       services.Sessions,
		Auth:           services.Auth,
		Register:       services.Register,
		Products:       services.Products,
		Suppliers:      services.Suppliers,
		Warehouses:     services.Warehouses,
		PurchaseOrders: services.PurchaseOrders,
		Ledger:         services.Ledger,
		Dashboard:      services.Dashboard,
	}
	if opts.Registry != nil {
		deps.Gatherer = opts.Registry
		deps.Metrics = metrics.NewHTTPMetrics(opts.Registry)
	}
	return routes.NewRouter(deps), nil
}
