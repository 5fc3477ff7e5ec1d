package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite leg cache schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	createLegCacheQuery := `
	CREATE TABLE IF NOT EXISTS leg_cache (
        cache_key TEXT PRIMARY KEY,
        polyline TEXT NOT NULL,
        distance_meters REAL NOT NULL,
        duration_seconds REAL NOT NULL,
        created_at INTEGER NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_leg_cache_created_at
    ON leg_cache(created_at);
	`

	return execSchema(ctx, db, createLegCacheQuery, createIndexQuery)
}

// Initialize the Postgres leg cache schema.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	createLegCacheQuery := `
	CREATE TABLE IF NOT EXISTS leg_cache (
        cache_key TEXT PRIMARY KEY,
        polyline TEXT NOT NULL,
        distance_meters DOUBLE PRECISION NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        created_at BIGINT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_leg_cache_created_at
    ON leg_cache(created_at);
	`

	return execSchema(ctx, db, createLegCacheQuery, createIndexQuery)
}

func execSchema(ctx context.Context, db *sql.DB, statements ...string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// PurgeExpired deletes leg cache rows created before the unix cutoff and
// returns the number of rows removed.
func PurgeExpired(ctx context.Context, db *sql.DB, cutoff int64, postgres bool) (int64, error) {
	if db == nil {
		return 0, errors.New("purge leg cache: DB is nil")
	}

	q := `DELETE FROM leg_cache WHERE created_at < ?;`
	if postgres {
		q = `DELETE FROM leg_cache WHERE created_at < $1;`
	}

	res, err := db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge leg cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge leg cache: rows affected: %w", err)
	}
	return n, nil
}
