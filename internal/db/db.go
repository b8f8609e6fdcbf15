// Package db provides optional PostgreSQL storage for run records and artifacts.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS cv_runs (
	id           UUID PRIMARY KEY,
	workflow     TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS cv_run_steps (
	run_id        UUID NOT NULL REFERENCES cv_runs(id) ON DELETE CASCADE,
	step          TEXT NOT NULL,
	status        TEXT NOT NULL,
	duration_ms   INTEGER,
	error_message TEXT,
	fields        JSONB,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_id, step)
);

CREATE TABLE IF NOT EXISTS cv_artifacts (
	run_id       UUID NOT NULL REFERENCES cv_runs(id) ON DELETE CASCADE,
	step         TEXT NOT NULL,
	category     TEXT NOT NULL,
	content      JSONB,
	text_content TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_id, step)
);
`

// EnsureSchema creates the run tables when they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
