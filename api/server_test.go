package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/internal/users"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db/dbtest"
	"github.com/Devvfong/inventory-management/pkg/enums"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/redis"
	"github.com/Devvfong/inventory-management/pkg/security"
	"github.com/Devvfong/inventory-management/pkg/types"
)

const testPassword = "Password123!"

type apiHarness struct {
	t       *testing.T
	server  *httptest.Server
	cfg     *config.Config
	opts    Options
	redis   *miniredis.Miniredis
	adminPW string
}

func testConfig(authRequired bool) *config.Config {
	env := config.AppEnvDev
	return &config.Config{
		App: config.AppConfig{Env: env, AuthRequired: authRequired, CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "inventory-api", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginEmailLimit:    50,
			LoginIPLimit:       100,
			RegisterWindow:     time.Minute,
			RegisterEmailLimit: 10,
			RegisterIPLimit:    100,
		},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
		Inventory: config.InventoryConfig{DefaultWarehouseCode: "MAIN", DefaultWarehouseName: "Main Warehouse", RecentTransactions: 5},
	}
}

func newAPI(t *testing.T, authRequired bool) *apiHarness {
	t.Helper()
	cfg := testConfig(authRequired)
	client := dbtest.New(t)
	mr := miniredis.RunT(t)
	raw := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	opts := Options{
		Config:   cfg,
		Logger:   logger.Nop(),
		DB:       client,
		Redis:    redis.NewFromClient(raw),
		Registry: prometheus.NewRegistry(),
	}
	handler, err := NewHandler(opts)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hash, err := security.HashPassword(testPassword, cfg.Password)
	require.NoError(t, err)
	active := true
	_, err = users.NewRepository(client.DB()).Create(context.Background(), users.CreateUserDTO{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     &active,
	})
	require.NoError(t, err)

	return &apiHarness{t: t, server: server, cfg: cfg, opts: opts, redis: mr}
}

type response struct {
	status int
	body   []byte
	header http.Header
}

func (r response) decode(t *testing.T, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dest), string(r.body))
}

func (r response) errorBody(t *testing.T) types.ErrorBody {
	t.Helper()
	var body types.ErrorBody
	r.decode(t, &body)
	return body
}

func (h *apiHarness) do(method, path, token string, payload any, headers ...string) response {
	h.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(h.t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return response{status: resp.StatusCode, body: raw, header: resp.Header}
}

type tokenBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID         string  `json:"id"`
		Role       string  `json:"role"`
		SupplierID *string `json:"supplier_id"`
	} `json:"user"`
}

func (h *apiHarness) login(email string) tokenBody {
	h.t.Helper()
	resp := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": testPassword})
	require.Equal(h.t, http.StatusOK, resp.status, string(resp.body))
	var out tokenBody
	resp.decode(h.t, &out)
	return out
}

// registerSupplier signs up a supplier and returns its token and supplier id.
func (h *apiHarness) registerSupplier(name, email string) (string, string) {
	h.t.Helper()
	resp := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":          name,
		"email":         email,
		"password":      testPassword,
		"supplier_name": name + " Co.",
	})
	require.Equal(h.t, http.StatusCreated, resp.status, string(resp.body))
	login := h.login(email)
	require.NotNil(h.t, login.User.SupplierID)
	return login.AccessToken, *login.User.SupplierID
}

type productBody struct {
	ID         string `json:"id"`
	SKU        string `json:"sku"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	SupplierID string `json:"supplier_id"`
}

type transactionBody struct {
	ID          string `json:"id"`
	Direction   string `json:"direction"`
	Quantity    int    `json:"quantity"`
	NewQuantity int    `json:"new_quantity"`
}

func TestWidgetStockScenario(t *testing.T) {
	h := newAPI(t, true)
	supplierToken, supplierID := h.registerSupplier("Widget Maker", "widgets@example.com")

	resp := h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Widget", "sku": "W-1", "price": "10.00"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var product productBody
	resp.decode(t, &product)
	assert.Equal(t, supplierID, product.SupplierID)
	assert.Equal(t, "10", product.Price)
	assert.Equal(t, 0, product.Quantity)

	resp = h.do(http.MethodPost, "/api/transactions", supplierToken, map[string]any{"product_id": product.ID, "type": "in", "quantity": 50})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var txn transactionBody
	resp.decode(t, &txn)
	assert.Equal(t, 50, txn.NewQuantity)

	resp = h.do(http.MethodPost, "/api/transactions", supplierToken, map[string]any{"product_id": product.ID, "direction": "out", "quantity": 60})
	require.Equal(t, http.StatusBadRequest, resp.status, string(resp.body))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.errorBody(t).Code)

	resp = h.do(http.MethodGet, "/api/products/"+product.ID, supplierToken, nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp.decode(t, &product)
	assert.Equal(t, 50, product.Quantity)

	// Duplicate SKU is a conflict.
	resp = h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Widget 2", "sku": "W-1", "price": "1.00"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, "CONFLICT", resp.errorBody(t).Code)

	// Negative price is rejected.
	resp = h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Bad", "sku": "B-1", "price": "-1"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, "VALIDATION_ERROR", resp.errorBody(t).Code)
}

func TestConcurrentOutboundRequests(t *testing.T) {
	h := newAPI(t, true)
	supplierToken, _ := h.registerSupplier("Busy", "busy@example.com")

	resp := h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Gadget", "sku": "G-1", "price": "3.00", "initial_quantity": 50})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var product productBody
	resp.decode(t, &product)
	require.Equal(t, 50, product.Quantity)

	var wg sync.WaitGroup
	statuses := make([]int, 2)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = h.do(http.MethodPost, "/api/transactions", supplierToken, map[string]any{"product_id": product.ID, "direction": "out", "quantity": 30}).status
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusBadRequest}, statuses)

	resp = h.do(http.MethodGet, "/api/products/"+product.ID, supplierToken, nil)
	resp.decode(t, &product)
	assert.Equal(t, 20, product.Quantity)
}

func TestPurchaseOrderScenario(t *testing.T) {
	h := newAPI(t, true)
	admin := h.login("admin@example.com").AccessToken
	supplierToken, supplierID := h.registerSupplier("Parts", "parts@example.com")

	var a, b productBody
	resp := h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Bolt", "sku": "P-A", "price": "5.00"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	resp.decode(t, &a)
	resp = h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Nut", "sku": "P-B", "price": "2.00"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	resp.decode(t, &b)

	order := map[string]any{
		"supplier_id":   supplierID,
		"order_number":  "PO-1",
		"expected_date": "2026-11-01",
		"lines": []map[string]any{
			{"product_id": a.ID, "quantity": 10, "unit_price": "5.00"},
			{"product_id": b.ID, "quantity": 5, "unit_price": "2.00"},
		},
	}

	// Suppliers cannot raise purchase orders.
	resp = h.do(http.MethodPost, "/api/purchase-orders", supplierToken, order)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = h.do(http.MethodPost, "/api/purchase-orders", admin, order)
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var created struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		TotalAmount string `json:"total_amount"`
		Lines       []any  `json:"lines"`
	}
	resp.decode(t, &created)
	assert.Equal(t, "60", created.TotalAmount)
	assert.Equal(t, "PENDING", created.Status)
	assert.Len(t, created.Lines, 2)

	resp = h.do(http.MethodPost, "/api/purchase-orders", admin, order)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, "CONFLICT", resp.errorBody(t).Code)

	// The supplier sees its own order.
	resp = h.do(http.MethodGet, "/api/purchase-orders/"+created.ID, supplierToken, nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = h.do(http.MethodPut, "/api/purchase-orders/"+created.ID+"/status", admin, map[string]any{"status": "RECEIVED"})
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))

	resp = h.do(http.MethodPut, "/api/purchase-orders/"+created.ID+"/status", admin, map[string]any{"status": "PENDING"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Equal(t, "STATE_CONFLICT", resp.errorBody(t).Code)

	resp = h.do(http.MethodGet, "/api/products/"+a.ID, supplierToken, nil)
	resp.decode(t, &a)
	assert.Equal(t, 10, a.Quantity)
	resp = h.do(http.MethodGet, "/api/products/"+b.ID, supplierToken, nil)
	resp.decode(t, &b)
	assert.Equal(t, 5, b.Quantity)
}

func TestSupplierIsolation(t *testing.T) {
	h := newAPI(t, true)
	admin := h.login("admin@example.com").AccessToken
	ownerToken, _ := h.registerSupplier("Owner", "owner@example.com")
	otherToken, otherSupplierID := h.registerSupplier("Other", "other@example.com")

	resp := h.do(http.MethodPost, "/api/products", ownerToken, map[string]any{"name": "Secret", "sku": "S-1", "price": "1.00"})
	require.Equal(t, http.StatusCreated, resp.status)
	var product productBody
	resp.decode(t, &product)

	resp = h.do(http.MethodGet, "/api/products/"+product.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "FORBIDDEN", resp.errorBody(t).Code)

	resp = h.do(http.MethodGet, "/api/products/"+product.ID, admin, nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = h.do(http.MethodGet, "/api/products", otherToken, nil)
	require.Equal(t, http.StatusOK, resp.status)
	var listed []productBody
	resp.decode(t, &listed)
	assert.Empty(t, listed)

	resp = h.do(http.MethodGet, "/api/suppliers", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = h.do(http.MethodGet, "/api/suppliers/"+otherSupplierID, otherToken, nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = h.do(http.MethodGet, "/api/dashboard/summary", otherToken, nil)
	require.Equal(t, http.StatusOK, resp.status)
	var summary struct {
		TotalProducts int64 `json:"total_products"`
	}
	resp.decode(t, &summary)
	assert.Zero(t, summary.TotalProducts)
}

func TestAuthEndpoints(t *testing.T) {
	h := newAPI(t, true)

	resp := h.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	tokens := h.login("admin@example.com")
	assert.Equal(t, "ADMIN", tokens.User.Role)

	resp = h.do(http.MethodGet, "/api/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.status)

	resp = h.do(http.MethodPost, "/api/auth/refresh", tokens.AccessToken, map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	var refreshed tokenBody
	resp.decode(t, &refreshed)
	assert.NotEqual(t, tokens.AccessToken, refreshed.AccessToken)

	// The rotated-out access token no longer has a session.
	resp = h.do(http.MethodGet, "/api/auth/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = h.do(http.MethodPost, "/api/auth/logout", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp = h.do(http.MethodGet, "/api/auth/me", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = h.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Weak", "email": "weak@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestIdempotentTransactionReplay(t *testing.T) {
	h := newAPI(t, true)
	supplierToken, _ := h.registerSupplier("Replay", "replay@example.com")

	resp := h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Cog", "sku": "C-1", "price": "1.00"})
	require.Equal(t, http.StatusCreated, resp.status)
	var product productBody
	resp.decode(t, &product)

	payload := map[string]any{"product_id": product.ID, "direction": "in", "quantity": 7}
	first := h.do(http.MethodPost, "/api/transactions", supplierToken, payload, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, first.status)
	second := h.do(http.MethodPost, "/api/transactions", supplierToken, payload, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, second.status)
	assert.Equal(t, string(first.body), string(second.body))

	resp = h.do(http.MethodGet, "/api/products/"+product.ID, supplierToken, nil)
	resp.decode(t, &product)
	assert.Equal(t, 7, product.Quantity)

	payload["quantity"] = 8
	conflict := h.do(http.MethodPost, "/api/transactions", supplierToken, payload, "Idempotency-Key", "abc-123")
	assert.Equal(t, http.StatusConflict, conflict.status)
}

func TestTransactionListPaginates(t *testing.T) {
	h := newAPI(t, true)
	supplierToken, _ := h.registerSupplier("Pager", "pager@example.com")

	resp := h.do(http.MethodPost, "/api/products", supplierToken, map[string]any{"name": "Pin", "sku": "PIN-1", "price": "0.10"})
	require.Equal(t, http.StatusCreated, resp.status)
	var product productBody
	resp.decode(t, &product)
	for i := 1; i <= 3; i++ {
		resp = h.do(http.MethodPost, "/api/transactions", supplierToken, map[string]any{"product_id": product.ID, "direction": "in", "quantity": i})
		require.Equal(t, http.StatusCreated, resp.status)
	}

	var page struct {
		Items      []transactionBody `json:"items"`
		NextCursor *string           `json:"next_cursor"`
	}
	resp = h.do(http.MethodGet, "/api/transactions?limit=2&productId="+product.ID, supplierToken, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	resp.decode(t, &page)
	require.Len(t, page.Items, 2)
	require.NotNil(t, page.NextCursor)

	resp = h.do(http.MethodGet, "/api/transactions?limit=2&productId="+product.ID+"&cursor="+*page.NextCursor, supplierToken, nil)
	require.Equal(t, http.StatusOK, resp.status)
	page.NextCursor = nil
	resp.decode(t, &page)
	assert.Len(t, page.Items, 1)
	assert.Nil(t, page.NextCursor)

	resp = h.do(http.MethodGet, "/api/transactions?direction=sideways", supplierToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestAnonymousRequestsRunAsAdminWhenAuthOptional(t *testing.T) {
	h := newAPI(t, false)

	resp := h.do(http.MethodGet, "/api/suppliers", "", nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))

	resp = h.do(http.MethodPost, "/api/warehouses", "", map[string]any{"code": "east", "name": "East"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	assert.Contains(t, string(resp.body), `"code":"EAST"`)

	resp = h.do(http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, string(resp.body), `"role":"ADMIN"`)

	// A bad bearer is still rejected.
	resp = h.do(http.MethodGet, "/api/suppliers", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestOperationalEndpoints(t *testing.T) {
	h := newAPI(t, true)

	resp := h.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.NotEmpty(t, resp.header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.header.Get("X-Content-Type-Options"))

	resp = h.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.status, string(resp.body))

	resp = h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.True(t, strings.Contains(string(resp.body), "inventory_http_requests_total"))

	h.redis.Close()
	resp = h.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.status)
}
