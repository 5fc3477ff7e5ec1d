package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	StrategyNearestNeighbor = "nearest_neighbor"
	StrategyExternal        = "external"

	// MinStops is the number of delivery stops an optimization needs.
	MinStops = 2

	DefaultServiceTime = 5 * time.Minute
	MaxServiceTime     = 15 * time.Minute
)

var algorithmNames = map[string]string{
	StrategyNearestNeighbor: "Nearest Neighbor Algorithm",
	StrategyExternal:        "Waypoint Optimization",
}

var (
	ErrNoDepot              = errors.New("depot is not set")
	ErrTooFewStops          = fmt.Errorf("at least %d delivery stops are required", MinStops)
	ErrUnknownStrategy      = errors.New("unknown optimization strategy")
	ErrOptimizerUnavailable = errors.New("no waypoint optimizer configured")
	ErrOptimizerFailed      = errors.New("waypoint optimizer failed")
)

// AlgorithmName returns the display name of a strategy.
func AlgorithmName(strategy string) string {
	return algorithmNames[strategy]
}

type OptimizeRequest struct {
	Depot       *domain.Stop
	Stops       []domain.Stop
	Strategy    string
	Mode        domain.TravelMode
	Traffic     domain.TrafficParams
	ServiceTime time.Duration
}

// Planner runs optimization requests against the injected providers.
// It holds no per-request state and is safe for concurrent use as long as
// its providers are.
type Planner struct {
	Routing   ports.RoutingProvider
	Optimizer ports.WaypointOptimizer
	Metrics   *obs.Collector
}

// OptimizeRoute orders the stops with the requested strategy and assembles
// the resulting route. Routing failures degrade individual segments; only
// invalid input, optimizer failures and cancellation are returned as errors.
func (p *Planner) OptimizeRoute(ctx context.Context, req OptimizeRequest) (_ *domain.AssembledRoute, err error) {
	defer obs.Time(ctx, "services.OptimizeRoute")(&err)
	defer func() { p.Metrics.ObserveOptimization(req.Strategy, err) }()

	if req.Depot == nil {
		return nil, fmt.Errorf("optimize route: %w", ErrNoDepot)
	}
	if len(req.Stops) < MinStops {
		return nil, fmt.Errorf("optimize route: got %d stops: %w", len(req.Stops), ErrTooFewStops)
	}
	name, ok := algorithmNames[req.Strategy]
	if !ok {
		return nil, fmt.Errorf("optimize route: %w: %q", ErrUnknownStrategy, req.Strategy)
	}

	var seq domain.Sequence
	switch req.Strategy {
	case StrategyNearestNeighbor:
		seq = NearestNeighborSequence(*req.Depot, req.Stops)

	case StrategyExternal:
		seq, err = p.externalSequence(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("optimize route: %w", err)
		}
	}

	stops := make([]domain.Stop, 0, len(req.Stops)+1)
	stops = append(stops, *req.Depot)
	stops = append(stops, req.Stops...)

	route, err := AssembleRoute(ctx, p.Routing, AssembleRequest{
		Stops:         stops,
		Sequence:      seq,
		Mode:          req.Mode,
		Traffic:       req.Traffic,
		ServiceTime:   req.ServiceTime,
		Strategy:      req.Strategy,
		AlgorithmName: name,
	})
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	for _, s := range route.Segments {
		p.Metrics.ObserveSegment(s.Degraded)
	}
	if n := route.DegradedCount(); n > 0 {
		zap.L().Warn("route assembled with straight-line segments",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int("degraded", n),
			zap.Int("segments", len(route.Segments)),
		)
	}

	return route, nil
}

func (p *Planner) externalSequence(ctx context.Context, req OptimizeRequest) (domain.Sequence, error) {
	if p.Optimizer == nil {
		return nil, ErrOptimizerUnavailable
	}

	waypoints := make([]ports.Waypoint, 0, len(req.Stops))
	for i, s := range req.Stops {
		waypoints = append(waypoints, ports.Waypoint{Position: s.Coordinates, ID: i})
	}

	ordered, err := p.Optimizer.OptimizeWaypoints(ctx, ports.OptimizeRequest{
		Origin:      req.Depot.Coordinates,
		Destination: req.Depot.Coordinates,
		Waypoints:   waypoints,
		Mode:        req.Mode,
		Traffic:     req.Traffic,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOptimizerFailed, err)
	}

	return ResolveExternalOrder(ordered, req.Stops)
}

// ClampServiceTime bounds a per-stop service time to 0..MaxServiceTime.
func ClampServiceTime(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > MaxServiceTime {
		return MaxServiceTime
	}
	return d
}
