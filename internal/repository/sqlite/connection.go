package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Connection wraps the agent's local sqlite database.
type Connection struct {
	*sql.DB
}

// NewConnection opens the local database at path, creating it and its
// schema when absent.
func NewConnection(ctx context.Context, path string) (*Connection, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping local database: %w", err)
	}

	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Connection{DB: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS scan_history (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('barcode', 'qr')),
	status TEXT NOT NULL CHECK (status IN ('success', 'failed')),
	order_id TEXT,
	error_msg TEXT,
	scanned_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_history_scanned_at ON scan_history(scanned_at);
`

// createSchema is safe to run on every start.
func createSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
