package routing

import (
	"context"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"

	"go.uber.org/zap"
)

// CachedProvider serves traffic-free requests from a LegCache before falling
// back to the wrapped provider. Traffic-aware requests always go upstream
// since their answer depends on the departure time.
//
// Cache failures never fail a request: read errors count as misses and write
// errors are only logged.
type CachedProvider struct {
	next    ports.RoutingProvider
	cache   ports.LegCache
	metrics *obs.Collector
}

func NewCachedProvider(next ports.RoutingProvider, cache ports.LegCache, metrics *obs.Collector) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, metrics: metrics}
}

func (c *CachedProvider) CalculateRoute(ctx context.Context, req ports.RouteRequest) (ports.RouteResult, error) {
	if c.cache == nil || !req.Traffic.IsNone() {
		return c.next.CalculateRoute(ctx, req)
	}

	key := ports.LegKey(req.Mode, req.Origin, req.Destination)

	leg, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.ObserveCacheLookup("error")
		zap.L().Warn("leg cache read failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("key", key),
			zap.Error(err),
		)
	case ok:
		c.metrics.ObserveCacheLookup("hit")
		return ports.RouteResult{Legs: []ports.RouteLeg{leg}}, nil
	default:
		c.metrics.ObserveCacheLookup("miss")
	}

	res, err := c.next.CalculateRoute(ctx, req)
	if err != nil {
		return res, err
	}

	// Only complete single-leg answers are worth keeping.
	if len(res.Legs) == 1 && len(res.Legs[0].Geometry) >= 2 {
		if err := c.cache.Put(ctx, key, res.Legs[0]); err != nil {
			zap.L().Warn("leg cache write failed",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return res, nil
}
