package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db/dbtest"
	"github.com/Devvfong/inventory-management/pkg/db/models"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

func seedConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: config.AppEnvDev, AuthRequired: true},
		JWT:       config.JWTConfig{Secret: "seed", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60},
		Password:  config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		Inventory: config.InventoryConfig{DefaultWarehouseCode: "MAIN", DefaultWarehouseName: "Main Warehouse", RecentTransactions: 5},
	}
}

func TestSeedLoadsDemoDataOnce(t *testing.T) {
	client := dbtest.New(t)
	ctx := context.Background()

	require.NoError(t, seed(ctx, seedConfig(), logger.Nop(), client, demoPassword))
	require.NoError(t, seed(ctx, seedConfig(), logger.Nop(), client, demoPassword))

	var userCount, productCount, txnCount int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&productCount).Error)
	require.NoError(t, client.DB().Model(&models.StockTransaction{}).Count(&txnCount).Error)
	assert.EqualValues(t, 2, userCount)
	assert.EqualValues(t, len(demoProducts), productCount)
	assert.EqualValues(t, len(demoProducts), txnCount)

	var laptop models.Product
	require.NoError(t, client.DB().Where("sku = ?", "LAP-001").First(&laptop).Error)
	assert.Equal(t, "999.99", laptop.Price.StringFixed(2))
}
