package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// A stop handed to or returned by a WaypointOptimizer. ID is the caller's
// position of the stop in its delivery list; optimizers are not required to
// echo it back, so callers must match on Position.
type Waypoint struct {
	Position domain.Coordinates
	ID       int
}

type OptimizeRequest struct {
	Origin      domain.Coordinates
	Destination domain.Coordinates
	Waypoints   []Waypoint
	Mode        domain.TravelMode
	Traffic     domain.TrafficParams
}

// Contract for an external service that suggests a visiting order.
type WaypointOptimizer interface {
	// Return the waypoints in suggested visiting order.
	OptimizeWaypoints(ctx context.Context, req OptimizeRequest) ([]Waypoint, error)
}
