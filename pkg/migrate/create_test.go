package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationBumpsPastNewestVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20300101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path, err := createSQLMigration(dir, "Reorder alerts", now)
	require.NoError(t, err)
	assert.Equal(t, "20300101000001_reorder_alerts.sql", filepath.Base(path))

	_, err = createSQLMigration(dir, "reorder-alerts", now)
	assert.Error(t, err)
}

func TestCreateSQLMigrationUsesClock(t *testing.T) {
	dir := t.TempDir()
	path, err := createSQLMigration(dir, "add index", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20260102030405_add_index.sql", filepath.Base(path))
}
