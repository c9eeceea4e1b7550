package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campaignvideos/backend/internal/db"
)

// PostgresSlot persists the catalog payload in a single-row PostgreSQL table,
// keyed by slot name.
type PostgresSlot struct {
	pool db.Pool
	key  string
}

// NewPostgresSlot constructs a slot backed by PostgreSQL.
func NewPostgresSlot(pool db.Pool, key string) *PostgresSlot {
	return &PostgresSlot{pool: pool, key: key}
}

// EnsureSchema creates the slot table when it does not exist.
func (s *PostgresSlot) EnsureSchema(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS catalog_slots (
            key TEXT PRIMARY KEY,
            data TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("ensure catalog_slots table: %w", err)
	}
	return nil
}

// Load reads the slot row, reporting absence when the key has never been written.
func (s *PostgresSlot) Load(ctx context.Context) ([]byte, bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT data FROM catalog_slots WHERE key = $1`, s.key)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select catalog slot %s: %w", s.key, err)
	}
	return []byte(data), true, nil
}

// Save upserts the slot row.
func (s *PostgresSlot) Save(ctx context.Context, data []byte) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO catalog_slots (key, data, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
    `, s.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert catalog slot %s: %w", s.key, err)
	}
	return nil
}
