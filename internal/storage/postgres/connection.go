// Package postgres stores insight reports and chat logs in PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
)

// DB wraps the connection pool
type DB struct {
	pool   *pgxpool.Pool
	logger arbor.ILogger
}

// NewDB opens the pool, verifies connectivity and applies the schema
func NewDB(ctx context.Context, logger arbor.ILogger, config *common.PostgresConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool, logger: logger}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Debug().Int32("max_conns", poolConfig.MaxConns).Msg("Postgres connection pool initialized")
	return db, nil
}

// Pool returns the underlying pool
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the pool
func (db *DB) Close() {
	db.pool.Close()
}
