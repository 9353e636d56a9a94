package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewDB opens (or creates) the device-local database. WAL keeps the atomic
// single-row replace cheap and crash-safe.
func NewDB(path string) (*sqlx.DB, error) {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	db, err := sqlx.Connect("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func migrate(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notification_index (
		owner_id   TEXT NOT NULL,
		day_key    TEXT NOT NULL,
		entries    BLOB NOT NULL,
		checksum   TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (owner_id, day_key)
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
