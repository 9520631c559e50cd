// Package migrate applies the embedded goose migrations to a pgx pool.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Up runs every pending migration found at the root of fsys.
func Up(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	provider, err := newProvider(pool, fsys)
	if err != nil {
		return err
	}
	defer provider.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}

	for _, r := range results {
		slog.InfoContext(ctx, "migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	}

	return nil
}

// Version returns the current schema version.
func Version(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) (int64, error) {
	provider, err := newProvider(pool, fsys)
	if err != nil {
		return 0, err
	}
	defer provider.Close()

	return provider.GetDBVersion(ctx)
}

// newProvider wraps pool in a database/sql handle. Closing the provider
// closes only that handle, the pool stays open.
func newProvider(pool *pgxpool.Pool, fsys fs.FS) (*goose.Provider, error) {
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: new provider: %w", err)
	}

	return provider, nil
}
