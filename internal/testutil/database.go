// Package testutil provides database helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/contentlink/contentlink/internal/config"
	"github.com/contentlink/contentlink/internal/migrate"
)

// SetupTestDB creates a uniquely named scratch database, runs the
// migrations against it, and returns a bun handle. The database is
// dropped on test cleanup. Tests are skipped when Postgres is not
// reachable with the POSTGRES_* environment settings.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	baseCfg, err := config.NewConfig(log)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	adminCfg := *baseCfg
	adminCfg.Database.Database = "postgres"

	adminPool, err := createPool(ctx, &adminCfg)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := adminPool.Ping(ctx); err != nil {
		adminPool.Close()
		t.Skipf("postgres not available: %v", err)
	}

	testDBName := fmt.Sprintf("contentlink_test_%d", time.Now().UnixNano())

	if _, err := adminPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", testDBName)); err != nil {
		adminPool.Close()
		t.Fatalf("create test db: %v", err)
	}
	adminPool.Close()

	testCfg := *baseCfg
	testCfg.Database.Database = testDBName

	testPool, err := createPool(ctx, &testCfg)
	if err != nil {
		dropTestDB(baseCfg, testDBName)
		t.Fatalf("connect to test db: %v", err)
	}

	sqldb := stdlib.OpenDBFromPool(testPool)
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := migrate.RunWithDB(ctx, db.DB); err != nil {
		db.Close()
		testPool.Close()
		dropTestDB(baseCfg, testDBName)
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		testPool.Close()
		dropTestDB(baseCfg, testDBName)
	})

	return db
}

func createPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = 5
	return pgxpool.NewWithConfig(ctx, poolConfig)
}

func dropTestDB(baseCfg *config.Config, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	adminCfg := *baseCfg
	adminCfg.Database.Database = "postgres"

	pool, err := createPool(ctx, &adminCfg)
	if err != nil {
		return
	}
	defer pool.Close()

	_, _ = pool.Exec(ctx, fmt.Sprintf(`
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = '%s' AND pid <> pg_backend_pid()
	`, dbName))

	_, _ = pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
}
