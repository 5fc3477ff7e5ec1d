package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Pool settings for the leg cache. Lookups are short single-row queries.
const (
	maxOpenConns    = 10
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to the Postgres leg cache through the pgx stdlib driver,
// which callers register with a blank import.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open leg cache db: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxOpenConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open leg cache db: verify postgres connection: %w", err)
	}

	return conn, nil
}
