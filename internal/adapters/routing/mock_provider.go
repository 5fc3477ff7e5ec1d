package routing

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"fmt"
	"sync"
)

// MockLeg is a canned answer for one origin->destination request. A nil
// Geometry defaults to the straight line between the endpoints; NoRoute makes
// the provider answer with an empty result instead.
type MockLeg struct {
	From, To domain.Coordinates
	Geometry []domain.Coordinates
	Meters   float64
	Seconds  float64
	NoRoute  bool
}

// MockProvider answers CalculateRoute from a fixed table and fails for any
// pair it does not know. It records every request it receives.
type MockProvider struct {
	m map[string]MockLeg

	mu    sync.Mutex
	calls []ports.RouteRequest
}

func NewMockProvider(legs []MockLeg) *MockProvider {
	m := make(map[string]MockLeg, len(legs))
	for _, l := range legs {
		m[mockKey(l.From, l.To)] = l
	}
	return &MockProvider{m: m}
}

func (p *MockProvider) CalculateRoute(ctx context.Context, req ports.RouteRequest) (ports.RouteResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	l, ok := p.m[mockKey(req.Origin, req.Destination)]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing pair %v -> %v", req.Origin, req.Destination)
	}
	if l.NoRoute {
		return ports.RouteResult{}, nil
	}

	geometry := l.Geometry
	if geometry == nil {
		geometry = []domain.Coordinates{l.From, l.To}
	}

	return ports.RouteResult{Legs: []ports.RouteLeg{{
		Geometry:        append([]domain.Coordinates(nil), geometry...),
		DistanceMeters:  l.Meters,
		DurationSeconds: l.Seconds,
	}}}, nil
}

// Calls returns a copy of the requests received so far.
func (p *MockProvider) Calls() []ports.RouteRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.RouteRequest(nil), p.calls...)
}

func mockKey(from, to domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", from.Lon, from.Lat, to.Lon, to.Lat)
}

// OptimizerFunc adapts a function to ports.WaypointOptimizer.
type OptimizerFunc func(ctx context.Context, req ports.OptimizeRequest) ([]ports.Waypoint, error)

func (f OptimizerFunc) OptimizeWaypoints(ctx context.Context, req ports.OptimizeRequest) ([]ports.Waypoint, error) {
	return f(ctx, req)
}

// FixedOrderOptimizer returns the request's waypoints in the given order of
// their positions in req.Waypoints.
func FixedOrderOptimizer(order ...int) OptimizerFunc {
	return func(ctx context.Context, req ports.OptimizeRequest) ([]ports.Waypoint, error) {
		out := make([]ports.Waypoint, 0, len(order))
		for _, i := range order {
			if i < 0 || i >= len(req.Waypoints) {
				return nil, fmt.Errorf("waypoint %d out of range", i)
			}
			out = append(out, req.Waypoints[i])
		}
		return out, nil
	}
}
