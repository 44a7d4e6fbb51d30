package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/stocktrack/stocktrack-backend/pkg/config"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

func init() {
	// modernc's driver is not known to sqlx; it uses ? placeholders
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps sqlx.DB with additional functionality
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// New opens the file-based store and applies pending schema migrations.
// The connection pool is capped at one connection: SQLite allows a single
// writer, and the dispatch loop is the only writer anyway.
func New(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	return NewWithDSN(cfg.DSN(), log)
}

// NewWithDSN opens a store from a raw DSN string
func NewWithDSN(dsn string, log *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	wrapped := &DB{
		DB:     db,
		logger: log,
	}

	if err := wrapped.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return wrapped, nil
}

// NewFromDB wraps an already-open connection. No migrations run; tests use
// this to drive repositories against a mocked driver.
func NewFromDB(sqlDB *sql.DB, driverName string, log *logger.Logger) *DB {
	return &DB{
		DB:     sqlx.NewDb(sqlDB, driverName),
		logger: log,
	}
}

// Ping checks the database connection
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Health returns the health status of the database
func (db *DB) Health(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "up",
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}

	return status
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
