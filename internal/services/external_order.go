package services

import (
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/rtree"
)

// MatchTolerance is the per-axis tolerance, in degrees, used to map a
// position returned by a WaypointOptimizer back to an input stop.
const MatchTolerance = 1e-4

// UnresolvedIndex marks a returned waypoint that matched no input stop.
const UnresolvedIndex = -1

var (
	ErrUnresolvedWaypoint = errors.New("optimizer returned a waypoint that matches no stop")
	ErrIncompleteOrder    = errors.New("optimizer order does not visit every stop exactly once")
)

// ResolveExternalOrder converts an optimizer's visiting order into a Sequence
// over [depot, stops...].
//
// Each returned position is matched to the lowest-indexed stop within
// MatchTolerance on both axes that has not been claimed yet, so stops sharing
// a location resolve to distinct indices. Any waypoint left unmatched, or an
// order that skips or repeats stops, fails the whole run.
func ResolveExternalOrder(ordered []ports.Waypoint, stops []domain.Stop) (domain.Sequence, error) {
	indices := matchWaypoints(ordered, stops)

	seq := make(domain.Sequence, 0, len(indices)+2)
	seq = append(seq, 0)

	var unresolved []string
	for i, idx := range indices {
		if idx == UnresolvedIndex {
			unresolved = append(unresolved, ordered[i].Position.String())
			continue
		}
		seq = append(seq, idx)
	}
	seq = append(seq, 0)

	if len(unresolved) > 0 {
		return nil, fmt.Errorf(
			"resolve external order: %w: %s",
			ErrUnresolvedWaypoint, strings.Join(unresolved, ", "),
		)
	}

	if err := seq.Validate(len(stops)); err != nil {
		return nil, fmt.Errorf("resolve external order: %w: %w", ErrIncompleteOrder, err)
	}

	return seq, nil
}

// matchWaypoints returns, for every returned waypoint, the matching internal
// index (stop position + 1) or UnresolvedIndex.
func matchWaypoints(ordered []ports.Waypoint, stops []domain.Stop) []int {
	var tr rtree.RTreeG[int]
	for i, s := range stops {
		p := [2]float64{s.Coordinates.Lon, s.Coordinates.Lat}
		tr.Insert(p, p, i)
	}

	claimed := make([]bool, len(stops))
	out := make([]int, 0, len(ordered))
	for _, w := range ordered {
		pos := w.Position
		min := [2]float64{pos.Lon - MatchTolerance, pos.Lat - MatchTolerance}
		max := [2]float64{pos.Lon + MatchTolerance, pos.Lat + MatchTolerance}

		best := -1
		tr.Search(min, max, func(_, _ [2]float64, i int) bool {
			if claimed[i] || !stops[i].Coordinates.ApproxEqual(pos, MatchTolerance) {
				return true
			}
			if best == -1 || i < best {
				best = i
			}
			return true
		})

		if best == -1 {
			out = append(out, UnresolvedIndex)
			continue
		}
		claimed[best] = true
		out = append(out, best+1)
	}

	return out
}
