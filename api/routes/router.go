package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Devvfong/inventory-management/api/controllers"
	"github.com/Devvfong/inventory-management/api/middleware"
	"github.com/Devvfong/inventory-management/internal/auth"
	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/dashboard"
	"github.com/Devvfong/inventory-management/internal/products"
	"github.com/Devvfong/inventory-management/internal/purchaseorders"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/internal/suppliers"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/auth/session"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/metrics"
	"github.com/Devvfong/inventory-management/pkg/redis"
)

// Dependencies bundles everything the HTTP surface is wired to.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	Auth           auth.Service
	Register       auth.RegisterService
	Products       products.Service
	Suppliers      suppliers.Service
	Warehouses     warehouses.Service
	PurchaseOrders purchaseorders.Service
	Ledger         stock.Service
	Dashboard      dashboard.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.SecureHeaders(cfg.App.IsProd(), logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	authenticate := middleware.Auth(middleware.AuthOptions{
		JWT:      cfg.JWT,
		Sessions: deps.Sessions,
		Required: cfg.App.AuthRequired,
	}, logg)

	// A typed nil *redis.Client must not reach the interface-typed parameters.
	rateStore := rateLimiterFor(deps.Redis)
	idempotent := middleware.Idempotency(idempotencyFor(deps.Redis), cfg.Inventory.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.With(authenticate).Get("/me", controllers.AuthMe(deps.Auth, logg))
			r.With(authenticate).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Products, logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
				r.Put("/{id}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.Products, logg))
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.With(middleware.RequireAdmin(authz.KindSupplier, logg)).Get("/", controllers.ListSuppliers(deps.Suppliers, logg))
				r.With(middleware.RequireAdmin(authz.KindSupplier, logg)).Post("/", controllers.CreateSupplier(deps.Suppliers, logg))
				r.Get("/{id}", controllers.GetSupplier(deps.Suppliers, logg))
				r.Put("/{id}", controllers.UpdateSupplier(deps.Suppliers, logg))
				r.With(middleware.RequireAdmin(authz.KindSupplier, logg)).Delete("/{id}", controllers.DeleteSupplier(deps.Suppliers, logg))
			})

			r.Route("/warehouses", func(r chi.Router) {
				r.Get("/", controllers.ListWarehouses(deps.Warehouses, logg))
				r.With(middleware.RequireAdmin(authz.KindWarehouse, logg)).Post("/", controllers.CreateWarehouse(deps.Warehouses, logg))
			})

			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", controllers.ListPurchaseOrders(deps.PurchaseOrders, logg))
				r.With(middleware.RequireAdmin(authz.KindPurchaseOrder, logg), idempotent).Post("/", controllers.CreatePurchaseOrder(deps.PurchaseOrders, logg))
				r.Get("/{id}", controllers.GetPurchaseOrder(deps.PurchaseOrders, logg))
				r.With(middleware.RequireAdmin(authz.KindPurchaseOrder, logg)).Put("/{id}/status", controllers.UpdatePurchaseOrderStatus(deps.PurchaseOrders, logg))
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", controllers.ListTransactions(deps.Ledger, logg))
				r.With(idempotent).Post("/", controllers.CreateTransaction(deps.Ledger, logg))
				r.Get("/{id}", controllers.GetTransaction(deps.Ledger, logg))
			})

			r.Get("/dashboard/summary", controllers.DashboardSummary(deps.Dashboard, logg))
		})
	})

	return r
}

func readinessDeps(deps Dependencies) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}

func rateLimiterFor(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyFor(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
