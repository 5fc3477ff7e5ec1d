package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"time"
)

type AssembleRequest struct {
	// Depot at index 0, delivery stops after it.
	Stops         []domain.Stop
	Sequence      domain.Sequence
	Mode          domain.TravelMode
	Traffic       domain.TrafficParams
	ServiceTime   time.Duration
	Strategy      string
	AlgorithmName string
}

// AssembleRoute walks the sequence and builds one segment per consecutive
// pair of stops, in visiting order.
//
// Segments are fetched one at a time; a failing provider degrades the
// affected segment without aborting the route. Service time is charged for
// every arrival except the final return to the depot. Totals are reported in
// kilometres and minutes.
func AssembleRoute(ctx context.Context, provider ports.RoutingProvider, req AssembleRequest) (*domain.AssembledRoute, error) {
	if len(req.Stops) == 0 {
		return nil, errors.New("assemble route: no depot")
	}
	if err := req.Sequence.Validate(len(req.Stops) - 1); err != nil {
		return nil, fmt.Errorf("assemble route: %w", err)
	}

	total := len(req.Sequence) - 1
	segments := make([]domain.Segment, 0, total)
	geometry := []domain.Coordinates{req.Stops[0].Coordinates}

	var distanceMeters, durationSeconds float64
	for i := 1; i < len(req.Sequence); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assemble route: stopped after %d of %d segments: %w", i-1, total, err)
		}

		prev, next := req.Sequence[i-1], req.Sequence[i]

		var service time.Duration
		if next != 0 {
			service = req.ServiceTime
		}

		seg := BuildSegment(ctx, provider, SegmentRequest{
			From:        req.Stops[prev].Coordinates,
			To:          req.Stops[next].Coordinates,
			FromIndex:   prev,
			ToIndex:     next,
			Mode:        req.Mode,
			Traffic:     req.Traffic,
			ServiceTime: service,
		})

		distanceMeters += seg.DistanceMeters
		durationSeconds += seg.DurationSeconds
		seg.CumulativeDistanceMeters = distanceMeters
		seg.CumulativeDurationSeconds = durationSeconds

		geometry = appendPath(geometry, seg.Geometry)
		segments = append(segments, seg)
	}

	// A cancellation during the last provider call degrades that segment
	// instead of failing it.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble route: stopped after %d of %d segments: %w", total, total, err)
	}

	stops := make([]domain.Stop, len(req.Stops))
	copy(stops, req.Stops)

	return &domain.AssembledRoute{
		Strategy:         req.Strategy,
		AlgorithmName:    req.AlgorithmName,
		Sequence:         append(domain.Sequence(nil), req.Sequence...),
		Stops:            stops,
		TotalDistanceKm:  distanceMeters / 1000,
		TotalTimeMinutes: durationSeconds / 60,
		Geometry:         geometry,
		Segments:         segments,
	}, nil
}

// appendPath appends tail to path, dropping the first point of tail and any
// further leading points that repeat the current end of path.
func appendPath(path, tail []domain.Coordinates) []domain.Coordinates {
	if len(path) == 0 {
		return append(path, tail...)
	}
	if len(tail) == 0 {
		return path
	}

	tail = tail[1:]
	for len(tail) > 0 && tail[0] == path[len(path)-1] {
		tail = tail[1:]
	}
	return append(path, tail...)
}
