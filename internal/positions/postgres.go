package positions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"watchtower/dashd/internal/db"
)

// PostgresKV stores values in a single key-value table.
type PostgresKV struct {
	pool *db.Pool
}

// NewPostgresKV ensures the backing table exists and returns the store.
func NewPostgresKV(ctx context.Context, pool *db.Pool) (*PostgresKV, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS dashboard_kv (
		key   text PRIMARY KEY,
		value text NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, err
	}
	return &PostgresKV{pool: pool}, nil
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM dashboard_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO dashboard_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM dashboard_kv WHERE key = $1`, key)
	return err
}
