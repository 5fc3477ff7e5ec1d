package services

import (
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/geo"
)

// Order delivery stops using a greedy nearest-neighbor walk from the depot.
//
// At each step the closest unvisited stop by great-circle distance is chosen;
// on equal distances the stop listed first wins, so the result is
// deterministic for a given input. It does not attempt global optimization.
//
// The returned Sequence indexes [depot, stops...]: it starts and ends at 0 and
// visits every stop once. Callers must supply a depot and at least two stops.
func NearestNeighborSequence(depot domain.Stop, stops []domain.Stop) domain.Sequence {
	points := make([]domain.Coordinates, 0, len(stops)+1)
	points = append(points, depot.Coordinates)
	for _, s := range stops {
		points = append(points, s.Coordinates)
	}

	visited := make([]bool, len(points))
	visited[0] = true

	seq := make(domain.Sequence, 0, len(points)+1)
	seq = append(seq, 0)

	current := 0
	for len(seq) < len(points) {
		best := -1
		bestDistance := 0.0

		for i := 1; i < len(points); i++ {
			if visited[i] {
				continue
			}

			d := geo.Distance(points[current], points[i])
			// Strict comparison keeps the first-encountered stop on ties.
			if best == -1 || d < bestDistance {
				best = i
				bestDistance = d
			}
		}

		seq = append(seq, best)
		visited[best] = true
		current = best
	}

	return append(seq, 0)
}
