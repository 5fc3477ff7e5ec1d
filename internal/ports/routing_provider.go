package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// Request for a single origin->destination path.
type RouteRequest struct {
	Origin          domain.Coordinates
	Destination     domain.Coordinates
	Mode            domain.TravelMode
	IncludeGeometry bool
	Traffic         domain.TrafficParams
}

// One leg of a provider route. Geometry is the ordered path from origin to
// destination.
type RouteLeg struct {
	Geometry        []domain.Coordinates
	DistanceMeters  float64
	DurationSeconds float64
}

// Provider response. An empty Legs slice means no route was found.
type RouteResult struct {
	Legs []RouteLeg
}

// Contract for retrieving a road path between two coordinates.
type RoutingProvider interface {
	// Return the path, distance and duration between two coordinates.
	CalculateRoute(ctx context.Context, req RouteRequest) (RouteResult, error)
}
