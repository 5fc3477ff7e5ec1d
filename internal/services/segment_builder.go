package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/geo"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var errNoRoute = errors.New("provider returned no usable route")

type SegmentRequest struct {
	From        domain.Coordinates
	To          domain.Coordinates
	FromIndex   int
	ToIndex     int
	Mode        domain.TravelMode
	Traffic     domain.TrafficParams
	ServiceTime time.Duration
}

// BuildSegment fetches the road path between two consecutive stops.
//
// It never fails: when the provider errors or returns no geometry the segment
// falls back to a straight line between the endpoints with distance and
// duration estimated from the great-circle distance, and is marked Degraded.
// ServiceTime is added to the duration of routed segments only; a degraded
// segment still reports it in ServiceSeconds.
func BuildSegment(ctx context.Context, provider ports.RoutingProvider, req SegmentRequest) domain.Segment {
	seg := domain.Segment{
		FromIndex:      req.FromIndex,
		ToIndex:        req.ToIndex,
		Start:          req.From,
		End:            req.To,
		Midpoint:       req.From.Midpoint(req.To),
		ServiceSeconds: req.ServiceTime.Seconds(),
	}

	leg, err := fetchLeg(ctx, provider, req)
	if err != nil {
		zap.L().Warn("routing failed, using straight-line segment",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int("from", req.FromIndex),
			zap.Int("to", req.ToIndex),
			zap.Stringer("origin", req.From),
			zap.Stringer("destination", req.To),
			zap.Error(err),
		)

		meters, seconds := geo.StraightLineEstimate(req.From, req.To)
		seg.Geometry = []domain.Coordinates{req.From, req.To}
		seg.DistanceMeters = meters
		seg.DurationSeconds = seconds
		seg.Degraded = true
		return seg
	}

	seg.Geometry = leg.Geometry
	seg.DistanceMeters = leg.DistanceMeters
	seg.DurationSeconds = leg.DurationSeconds + seg.ServiceSeconds
	return seg
}

// fetchLeg merges the provider's legs into one. A result with fewer than two
// geometry points is treated as no route.
func fetchLeg(ctx context.Context, provider ports.RoutingProvider, req SegmentRequest) (ports.RouteLeg, error) {
	if provider == nil {
		return ports.RouteLeg{}, errors.New("no routing provider configured")
	}

	res, err := provider.CalculateRoute(ctx, ports.RouteRequest{
		Origin:          req.From,
		Destination:     req.To,
		Mode:            req.Mode,
		IncludeGeometry: true,
		Traffic:         req.Traffic,
	})
	if err != nil {
		return ports.RouteLeg{}, fmt.Errorf("calculate route: %w", err)
	}

	var merged ports.RouteLeg
	for _, leg := range res.Legs {
		merged.Geometry = appendPath(merged.Geometry, leg.Geometry)
		merged.DistanceMeters += leg.DistanceMeters
		merged.DurationSeconds += leg.DurationSeconds
	}

	if len(merged.Geometry) < 2 {
		return ports.RouteLeg{}, errNoRoute
	}
	return merged, nil
}
