package migrate

import (
	"context"
	"fmt"

	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/db"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

// MaybeRunDev brings the schema up to date from the embedded migrations.
// It is a no-op outside dev or without INVENTORY_AUTO_MIGRATE.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	pool, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	fsys, err := EmbeddedFS()
	if err != nil {
		return err
	}
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	if err := Apply(ctx, pool, fsys, "up", "", nil); err != nil {
		return err
	}
	logg.Info(ctx, "migrations.autorun.complete")
	return nil
}
