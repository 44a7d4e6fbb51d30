package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Migration is one versioned schema step. Statements run inside a single
// transaction together with the version bookkeeping, so a migration either
// applies fully or not at all.
type Migration struct {
	Version    int
	Statements []string
}

// migrations is the ordered schema history. Never edit an applied entry;
// append a new version instead.
var migrations = []Migration{
	{
		Version: 1,
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS items (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				name        TEXT NOT NULL,
				unit_price  TEXT NOT NULL,
				location    TEXT NOT NULL DEFAULT '',
				condition   TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMP NOT NULL,
				updated_at  TIMESTAMP NOT NULL,
				deleted_at  TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS stock_movements (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				item_id     INTEGER NOT NULL REFERENCES items(id),
				delta       INTEGER NOT NULL,
				kind        TEXT NOT NULL,
				actor       TEXT NOT NULL DEFAULT '',
				recorded_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_stock_movements_item ON stock_movements(item_id)`,
			`CREATE TABLE IF NOT EXISTS tags (
				tag      TEXT PRIMARY KEY,
				item_id  INTEGER NOT NULL REFERENCES items(id),
				bound_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		Version: 2,
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS suppliers (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				name          TEXT NOT NULL,
				contact       TEXT NOT NULL DEFAULT '',
				order_history TEXT NOT NULL DEFAULT '',
				rating        INTEGER NOT NULL DEFAULT 0,
				bidding_price TEXT NOT NULL,
				created_at    TIMESTAMP NOT NULL,
				updated_at    TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS contracts (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				supplier_id   INTEGER NOT NULL REFERENCES suppliers(id),
				status        TEXT NOT NULL,
				reference     TEXT NOT NULL,
				contract_date TIMESTAMP NOT NULL
			)`,
		},
	},
}

// Migrate applies all pending migrations. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	var versions []int
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	for _, v := range versions {
		applied[v] = true
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
			for _, stmt := range m.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d: %w", m.Version, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				m.Version, time.Now().UTC())
			return err
		})
		if err != nil {
			return err
		}

		db.logger.Info().Int("version", m.Version).Msg("schema migration applied")
	}

	return nil
}

// SchemaVersion returns the highest applied migration version
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	return version, err
}
