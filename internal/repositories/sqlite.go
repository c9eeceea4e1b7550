package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSlot persists the catalog payload in a single-row SQLite table,
// keyed by slot name.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

// OpenSQLiteSlot opens (or creates) the SQLite database at path and ensures
// the slot schema exists.
func OpenSQLiteSlot(path, key string) (*SQLiteSlot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}

	// Single writer keeps SQLite happy under WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS catalog_slots (
            key TEXT PRIMARY KEY,
            data TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure catalog_slots table: %w", err)
	}

	return &SQLiteSlot{db: db, key: key}, nil
}

// Load reads the slot row, reporting absence when the key has never been written.
func (s *SQLiteSlot) Load(ctx context.Context) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM catalog_slots WHERE key = ?`, s.key)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select catalog slot %s: %w", s.key, err)
	}
	return []byte(data), true, nil
}

// Save upserts the slot row.
func (s *SQLiteSlot) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO catalog_slots (key, data, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
    `, s.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert catalog slot %s: %w", s.key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
