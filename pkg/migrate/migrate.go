// Package migrate owns the goose SQL migrations. They are embedded in every
// binary; cmd/migrate can also point at a checkout on disk while authoring.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// EmbeddedFS is the compiled-in migrations directory.
func EmbeddedFS() (fs.FS, error) {
	return fs.Sub(embedded, "migrations")
}

// Source resolves where migrations are read from: the embedded set when dir
// is empty, otherwise dir on disk.
func Source(dir string) (fs.FS, error) {
	if dir == "" {
		return EmbeddedFS()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	return os.DirFS(dir), nil
}

// Apply runs command against db: up, down, status or version (which needs
// target). status writes one line per migration to report.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS, command, target string, report func(string)) error {
	if db == nil {
		return errors.New("db is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	switch command {
	case "up":
		_, err = provider.Up(ctx)
	case "down":
		_, err = provider.Down(ctx)
	case "status":
		err = status(ctx, provider, report)
	case "version":
		err = moveTo(ctx, provider, target)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func status(ctx context.Context, provider *goose.Provider, report func(string)) error {
	rows, err := provider.Status(ctx)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	for _, row := range rows {
		line := fmt.Sprintf("%-8s %d %s", row.State, row.Source.Version, row.Source.Path)
		if row.State == goose.StateApplied {
			line += " applied " + row.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		report(line)
	}
	return nil
}

// moveTo migrates up or down until the schema sits at target.
func moveTo(ctx context.Context, provider *goose.Provider, target string) error {
	if target == "" {
		return errors.New("target version is required")
	}
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", target, err)
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return err
	}
	switch {
	case version > current:
		_, err = provider.UpTo(ctx, version)
	case version < current:
		_, err = provider.DownTo(ctx, version)
	}
	return err
}
