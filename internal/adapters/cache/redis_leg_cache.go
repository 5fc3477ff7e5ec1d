package cache

import (
	"context"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "leg:"

// Redis backed LegCache. Each leg is a hash with polyline, distance and
// duration fields; expiry is delegated to Redis.
type RedisLegCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLegCache(client *redis.Client, ttl time.Duration) *RedisLegCache {
	return &RedisLegCache{Client: client, TTL: ttl}
}

func (r *RedisLegCache) Get(ctx context.Context, key string) (ports.RouteLeg, bool, error) {
	if r.Client == nil {
		return ports.RouteLeg{}, false, errors.New("leg cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return ports.RouteLeg{}, false, errors.New("get leg cache: key must not be empty")
	}

	fields, err := r.Client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache: hgetall: %w", err)
	}
	if len(fields) == 0 {
		return ports.RouteLeg{}, false, nil
	}

	var leg ports.RouteLeg
	if leg.DistanceMeters, err = strconv.ParseFloat(fields["distance_meters"], 64); err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache key=%q: distance: %w", key, err)
	}
	if leg.DurationSeconds, err = strconv.ParseFloat(fields["duration_seconds"], 64); err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache key=%q: duration: %w", key, err)
	}
	if leg.Geometry, err = decodeGeometry(fields["polyline"]); err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache key=%q: %w", key, err)
	}

	return leg, true, nil
}

func (r *RedisLegCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	if r.Client == nil {
		return errors.New("leg cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert leg cache: key must not be empty")
	}

	k := redisKeyPrefix + key
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, map[string]any{
			"polyline":         encodeGeometry(leg.Geometry),
			"distance_meters":  strconv.FormatFloat(leg.DistanceMeters, 'f', -1, 64),
			"duration_seconds": strconv.FormatFloat(leg.DurationSeconds, 'f', -1, 64),
		})
		if r.TTL > 0 {
			pipe.Expire(ctx, k, r.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert leg cache key=%q: %w", key, err)
	}

	return nil
}
