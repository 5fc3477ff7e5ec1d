package cache

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLLegCache is a Postgres-backed LegCache. Entries older than TTL are
// treated as misses; a zero TTL keeps them forever.
type SQLLegCache struct {
	DB  *sql.DB
	TTL time.Duration

	now func() time.Time
}

func NewSQLLegCache(db *sql.DB, ttl time.Duration) *SQLLegCache {
	return &SQLLegCache{DB: db, TTL: ttl, now: time.Now}
}

func (s *SQLLegCache) Get(ctx context.Context, key string) (_ ports.RouteLeg, _ bool, err error) {
	defer obs.Time(ctx, "leg.cache.Get")(&err)

	if s.DB == nil {
		return ports.RouteLeg{}, false, errors.New("leg cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return ports.RouteLeg{}, false, errors.New("get leg cache: key must not be empty")
	}

	q := `
	SELECT polyline, distance_meters, duration_seconds
    FROM leg_cache
    WHERE cache_key = $1
        AND created_at >= $2;
	`

	var (
		encoded string
		leg     ports.RouteLeg
	)
	err = s.DB.QueryRowContext(ctx, q, key, cutoff(s.now(), s.TTL)).
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

func (s *SQLLegCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	if s.DB == nil {
		return errors.New("leg cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert leg cache: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO leg_cache (cache_key, polyline, distance_meters, duration_seconds, created_at)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (cache_key) DO UPDATE
	SET polyline = EXCLUDED.polyline,
		distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		created_at = EXCLUDED.created_at;
	`, key, encodeGeometry(leg.Geometry), leg.DistanceMeters, leg.DurationSeconds, s.now().Unix())
	if err != nil {
		return fmt.Errorf("insert leg cache key=%q: %w", key, err)
	}

	return nil
}
