// Package postgres provides a PostgreSQL-backed record store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lllllllleong/resumind/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_records (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RecordStore wraps a PostgreSQL connection pool and stores key/value records.
type RecordStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*RecordStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &RecordStore{pool: pool}, nil
}

// EnsureSchema creates the records table if it does not exist.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kv_records table: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *RecordStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Set inserts or overwrites the value for key.
func (s *RecordStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO kv_records (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// List returns entries whose key starts with prefix, ordered by key.
func (s *RecordStore) List(ctx context.Context, prefix string, includeValues bool) ([]models.Entry, error) {
	query := `SELECT key, '' FROM kv_records WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`
	if includeValues {
		query = `SELECT key, value FROM kv_records WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`
	}

	rows, err := s.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list records with prefix %q: %w", prefix, err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Entry, error) {
		var e models.Entry
		err := row.Scan(&e.Key, &e.Value)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	return entries, nil
}
