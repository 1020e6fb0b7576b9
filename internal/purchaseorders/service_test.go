package purchaseorders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/internal/authz"
	"github.com/Devvfong/inventory-management/internal/stock"
	"github.com/Devvfong/inventory-management/internal/warehouses"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/db/dbtest"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/metrics"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.New(t)
	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.NewRegistry())
	ledger, err := stock.NewService(stock.ServiceParams{
		Repo:       stock.NewRepository(client.DB()),
		DB:         client,
		Warehouses: warehouses.NewResolver(config.InventoryConfig{DefaultWarehouseCode: "MAIN"}),
		Metrics:    ledgerMetrics,
	})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Ledger:  ledger,
		Metrics: ledgerMetrics,
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

func line(productID uuid.UUID, qty int, price string) LineInput {
	return LineInput{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestCreateOrderComputesTotal(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	supplier := dbtest.Supplier(t, client, "Acme")
	a := dbtest.Product(t, client, supplier.ID, "A-1", "5.00")
	b := dbtest.Product(t, client, supplier.ID, "B-1", "2.00")
	expected := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	order, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{
		SupplierID:   supplier.ID,
		OrderNumber:  "PO-1",
		ExpectedDate: &expected,
		Lines:        []LineInput{line(a.ID, 10, "5.00"), line(b.ID, 5, "2.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, "60.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, enums.PurchaseOrderStatusPending, order.Status)
	assert.Equal(t, 2, order.LineCount)
	require.NotNil(t, order.Supplier)
	assert.Equal(t, "Acme", order.Supplier.Name)
	assert.Equal(t, "A-1", order.Lines[0].ProductSKU)
	assert.Equal(t, "50.00", order.Lines[0].Subtotal.StringFixed(2))
	require.NotNil(t, order.CreatedBy)

	single, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{
		SupplierID:  supplier.ID,
		OrderNumber: "PO-2",
		Lines:       []LineInput{line(a.ID, 3, "1.25")},
	})
	require.NoError(t, err)
	assert.Equal(t, "3.75", single.TotalAmount.StringFixed(2))

	_, err = svc.CreateOrder(ctx, admin(), CreateOrderInput{
		SupplierID:  supplier.ID,
		OrderNumber: "PO-1",
		Lines:       []LineInput{line(a.ID, 1, "1.00")},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var lines int64
	require.NoError(t, client.DB().Model(&models.PurchaseOrderLine{}).Count(&lines).Error)
	assert.EqualValues(t, 3, lines, "duplicate order must not leave lines behind")
}

func TestCreateOrderValidation(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	supplier := dbtest.Supplier(t, client, "Acme")
	other := dbtest.Supplier(t, client, "Other")
	mine := dbtest.Product(t, client, supplier.ID, "MINE", "1.00")
	theirs := dbtest.Product(t, client, other.ID, "THEIRS", "1.00")

	cases := map[string]CreateOrderInput{
		"no lines":        {SupplierID: supplier.ID, OrderNumber: "X-1"},
		"zero quantity":   {SupplierID: supplier.ID, OrderNumber: "X-2", Lines: []LineInput{line(mine.ID, 0, "1.00")}},
		"zero price":      {SupplierID: supplier.ID, OrderNumber: "X-3", Lines: []LineInput{line(mine.ID, 1, "0")}},
		"blank number":    {SupplierID: supplier.ID, OrderNumber: "  ", Lines: []LineInput{line(mine.ID, 1, "1.00")}},
		"foreign line":    {SupplierID: supplier.ID, OrderNumber: "X-4", Lines: []LineInput{line(theirs.ID, 1, "1.00")}},
		"unknown product": {SupplierID: supplier.ID, OrderNumber: "X-5", Lines: []LineInput{line(uuid.New(), 1, "1.00")}},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, admin(), input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	_, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{SupplierID: uuid.New(), OrderNumber: "X-6", Lines: []LineInput{line(mine.ID, 1, "1.00")}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.CreateOrder(ctx, supplierPrincipal(supplier), CreateOrderInput{SupplierID: supplier.ID, OrderNumber: "X-7", Lines: []LineInput{line(mine.ID, 1, "1.00")}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	var orders int64
	require.NoError(t, client.DB().Model(&models.PurchaseOrder{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestUpdateStatusStateMachine(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	supplier := dbtest.Supplier(t, client, "Acme")
	product := dbtest.Product(t, client, supplier.ID, "P-1", "1.00")

	order, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{SupplierID: supplier.ID, OrderNumber: "SM-1", Lines: []LineInput{line(product.ID, 4, "1.00")}})
	require.NoError(t, err)

	approved, err := svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusApproved, approved.Status)

	again, err := svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusApproved})
	require.NoError(t, err, "same status is a no-op")
	assert.Equal(t, enums.PurchaseOrderStatusApproved, again.Status)

	_, err = svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusPending})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	cancelled, err := svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusCancelled, cancelled.Status)

	_, err = svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusReceived})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: "SHIPPED"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateStatus(ctx, admin(), uuid.New(), UpdateStatusInput{Status: enums.PurchaseOrderStatusApproved})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.UpdateStatus(ctx, supplierPrincipal(supplier), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusApproved})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestReceivingPostsInboundStock(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	supplier := dbtest.Supplier(t, client, "Acme")
	a := dbtest.Product(t, client, supplier.ID, "RCV-A", "1.00")
	b := dbtest.Product(t, client, supplier.ID, "RCV-B", "1.00")

	order, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{
		SupplierID:  supplier.ID,
		OrderNumber: "RCV-1",
		Lines:       []LineInput{line(a.ID, 10, "1.00"), line(b.ID, 5, "2.00")},
	})
	require.NoError(t, err)

	receivedAt := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	received, err := svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusReceived, ReceivedDate: &receivedAt})
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedDate)
	assert.True(t, receivedAt.Equal(*received.ReceivedDate))

	var txns []models.StockTransaction
	require.NoError(t, client.DB().Where("purchase_order_id = ?", order.ID).Order("quantity DESC").Find(&txns).Error)
	require.Len(t, txns, 2)
	assert.Equal(t, 10, txns[0].Quantity)
	assert.Equal(t, 5, txns[1].Quantity)

	var qty int
	require.NoError(t, client.DB().Model(&models.StockItem{}).Select("quantity").Where("product_id = ?", a.ID).Scan(&qty).Error)
	assert.Equal(t, 10, qty)

	_, err = svc.UpdateStatus(ctx, admin(), order.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusReceived})
	require.NoError(t, err)
	var count int64
	require.NoError(t, client.DB().Model(&models.StockTransaction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "repeating RECEIVED must not post stock twice")
}

func TestListAndGetScopedToSupplier(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	mine := dbtest.Supplier(t, client, "Mine")
	theirs := dbtest.Supplier(t, client, "Theirs")
	pm := dbtest.Product(t, client, mine.ID, "PM", "1.00")
	pt := dbtest.Product(t, client, theirs.ID, "PT", "1.00")

	own, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{SupplierID: mine.ID, OrderNumber: "L-1", Lines: []LineInput{line(pm.ID, 1, "1.00")}})
	require.NoError(t, err)
	foreign, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{SupplierID: theirs.ID, OrderNumber: "L-2", Lines: []LineInput{line(pt.ID, 1, "1.00")}})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, admin(), foreign.ID, UpdateStatusInput{Status: enums.PurchaseOrderStatusApproved})
	require.NoError(t, err)

	all, err := svc.List(ctx, admin(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved := enums.PurchaseOrderStatusApproved
	filtered, err := svc.List(ctx, admin(), ListFilter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "L-2", filtered[0].OrderNumber)

	scoped, err := svc.List(ctx, supplierPrincipal(mine), ListFilter{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, own.ID, scoped[0].ID)

	_, err = svc.Get(ctx, supplierPrincipal(mine), foreign.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	got, err := svc.Get(ctx, admin(), foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, "L-2", got.OrderNumber)
}

func TestOrderLinesKeepSubmissionOrder(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	supplier := dbtest.Supplier(t, client, "Acme")
	skus := []string{"Z-9", "A-1", "M-5", "B-2", "Q-7"}
	inputs := make([]LineInput, 0, len(skus))
	for _, sku := range skus {
		p := dbtest.Product(t, client, supplier.ID, sku, "1.00")
		inputs = append(inputs, line(p.ID, 1, "1.00"))
	}

	order, err := svc.CreateOrder(ctx, admin(), CreateOrderInput{SupplierID: supplier.ID, OrderNumber: "PO-ORD", Lines: inputs})
	require.NoError(t, err)
	require.Len(t, order.Lines, len(skus))
	for i, sku := range skus {
		assert.Equal(t, sku, order.Lines[i].ProductSKU)
	}

	var stored []models.PurchaseOrderLine
	require.NoError(t, client.DB().Where("purchase_order_id = ?", order.ID).Order("line_no").Find(&stored).Error)
	for i, l := range stored {
		assert.Equal(t, i+1, l.LineNo)
	}
}
