package cache

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed LegCache. Keys are expected to come from ports.LegKey.
type SqliteLegCache struct {
	DB  *sql.DB
	TTL time.Duration

	now func() time.Time
}

func NewSqliteLegCache(db *sql.DB, ttl time.Duration) *SqliteLegCache {
	return &SqliteLegCache{DB: db, TTL: ttl, now: time.Now}
}

func (s *SqliteLegCache) Get(ctx context.Context, key string) (ports.RouteLeg, bool, error) {
	if s.DB == nil {
		return ports.RouteLeg{}, false, errors.New("leg cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return ports.RouteLeg{}, false, errors.New("get leg cache: key must not be empty")
	}

	q := `
	SELECT
        polyline,
        distance_meters,
        duration_seconds
    FROM leg_cache
    WHERE cache_key = ?
        AND created_at >= ?;
	`

	var (
		encoded string
		leg     ports.RouteLeg
	)
	err := s.DB.QueryRowContext(ctx, q, key, cutoff(s.now(), s.TTL)).
		Scan(&encoded, &leg.DistanceMeters, &leg.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteLeg{}, false, nil
	}
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache: query leg_cache table: %w", err)
	}

	leg.Geometry, err = decodeGeometry(encoded)
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache key=%q: %w", key, err)
	}

	return leg, true, nil
}

func (s *SqliteLegCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	if s.DB == nil {
		return errors.New("leg cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert leg cache: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO leg_cache (
        cache_key,
        polyline,
        distance_meters,
        duration_seconds,
        created_at
    )
    VALUES (?, ?, ?, ?, ?)
	`, key, encodeGeometry(leg.Geometry), leg.DistanceMeters, leg.DurationSeconds, s.now().Unix())
	if err != nil {
		return fmt.Errorf("insert leg cache key=%q: %w", key, err)
	}

	return nil
}
