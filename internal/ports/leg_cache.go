package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"fmt"
)

// Port: a store of provider legs for traffic-free requests.
type LegCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context, key string) (leg RouteLeg, ok bool, err error)
	Put(ctx context.Context, key string, leg RouteLeg) error
}

// LegKey builds the cache key for a request. Coordinates are rounded to six
// decimals (about 0.1 m).
func LegKey(mode domain.TravelMode, origin, destination domain.Coordinates) string {
	return fmt.Sprintf(
		"%s|%.6f,%.6f|%.6f,%.6f",
		mode, origin.Lon, origin.Lat, destination.Lon, destination.Lat,
	)
}
