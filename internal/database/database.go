package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the connection pool. Zero values fall back to defaults
// sized for a single game server instance.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// Connect creates a connection pool to PostgreSQL and validates it with a
// ping before returning.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return ConnectWithOptions(ctx, dsn, PoolOptions{})
}

// ConnectWithOptions is Connect with explicit pool sizing.
func ConnectWithOptions(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	cfg.MaxConns = opts.MaxConns
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 10
	}
	cfg.MinConns = opts.MinConns
	if cfg.MinConns == 0 {
		cfg.MinConns = 1
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
