package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-browser/internal/config"
	"github.com/pkordes/trip-browser/internal/repo"
	"github.com/pkordes/trip-browser/migrations"
)

// OpenStorage opens the key-value backend selected by cfg.StorageBackend.
// The returned close func releases it and is never nil.
func OpenStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.KV, func() error, error) {
	noop := func() error { return nil }

	var kv repo.KV
	switch cfg.StorageBackend {
	case config.StorageMemory:
		kv = repo.NewMemoryKV()

	case config.StorageFile:
		fkv, err := repo.NewFileKV(cfg.StoragePath)
		if err != nil {
			return nil, noop, fmt.Errorf("app.OpenStorage: %w", err)
		}
		kv = fkv

	case config.StorageBadger:
		bkv, err := repo.NewBadgerKV(cfg.StoragePath)
		if err != nil {
			return nil, noop, fmt.Errorf("app.OpenStorage: %w", err)
		}
		kv = bkv

	case config.StorageRedis:
		rkv, err := repo.NewRedisKV(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, noop, fmt.Errorf("app.OpenStorage: %w", err)
		}
		kv = rkv

	case config.StoragePostgres:
		return openPostgres(ctx, cfg, log)

	default:
		return nil, noop, fmt.Errorf("app.OpenStorage: unknown storage backend %q", cfg.StorageBackend)
	}

	if c, ok := kv.(repo.Closer); ok {
		return kv, c.Close, nil
	}
	return kv, noop, nil
}

// openPostgres connects, migrates and wraps the pool. The pool belongs to
// the returned close func, not to the KV.
func openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.KV, func() error, error) {
	noop := func() error { return nil }

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, noop, fmt.Errorf("app.OpenStorage: create pool: %w", err)
	}
	// Verify the DB is reachable before serving.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, noop, fmt.Errorf("app.OpenStorage: ping: %w", err)
	}
	if err := migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, noop, fmt.Errorf("app.OpenStorage: %w", err)
	}
	return repo.NewPostgresKV(pool), func() error { pool.Close(); return nil }, nil
}

// migrate applies the embedded goose migrations through a database/sql view
// of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.InfoContext(ctx, "database migrations applied", "count", len(results))
	return nil
}
