package db

import (
	"context"
	"fmt"
	"time"
)

type migration struct {
	version int
	sql     string
}

// Statements stay within the SQL subset shared by SQLite and Postgres.
// Money columns are TEXT holding exact decimal strings.
var migrations = []migration{
	{
		version: 1,
		sql: `
-- Product catalog
CREATE TABLE products (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Clients
CREATE TABLE clients (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Invoices carry their own copy of client details; client_id is
-- informational and deliberately not a foreign key.
CREATE TABLE invoices (
    id TEXT PRIMARY KEY,
    invoice_number TEXT NOT NULL UNIQUE,
    client_id TEXT NOT NULL,
    client_name TEXT NOT NULL,
    client_phone TEXT NOT NULL,
    client_address TEXT NOT NULL DEFAULT '',
    subtotal TEXT NOT NULL,
    tax_rate TEXT NOT NULL,
    tax TEXT NOT NULL,
    discount TEXT NOT NULL,
    total TEXT NOT NULL,
    currency TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Invoice line items (title and price frozen at order time)
CREATE TABLE invoice_items (
    invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    product_id TEXT NOT NULL,
    title TEXT NOT NULL,
    unit_price TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    PRIMARY KEY (invoice_id, position)
);

-- Invoice number sequence (singleton)
CREATE TABLE invoice_counter (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_value BIGINT NOT NULL
);

-- Business settings (singleton)
CREATE TABLE settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    company_name TEXT NOT NULL,
    company_logo TEXT NOT NULL DEFAULT '',
    company_address TEXT NOT NULL DEFAULT '',
    company_phone TEXT NOT NULL DEFAULT '',
    tax_rate TEXT NOT NULL,
    currency TEXT NOT NULL,
    dark_mode INTEGER NOT NULL DEFAULT 0,
    pin_hash TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL
);

-- Indexes
CREATE INDEX idx_invoices_created ON invoices(created_at);
CREATE INDEX idx_products_title ON products(title);
`,
	},
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	// Ensure schema_version table exists
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Apply pending migrations in a transaction
	return db.RunInTx(ctx, func(tx *Tx) error {
		for _, m := range migrations {
			if m.version <= currentVersion {
				continue
			}

			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
			}

			// Record migration
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
				m.version, time.Now().UTC().Format(time.RFC3339),
			)
			if err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
		}
		return nil
	})
}
