package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidSequence = errors.New("invalid sequence")

// Ordered visiting plan as indices into [depot, stops...]. A valid Sequence
// starts and ends at the depot (0) and lists every other index exactly once.
type Sequence []int

// Validate checks the sequence against a stop list of n delivery stops.
func (s Sequence) Validate(n int) error {
	if len(s) != n+2 {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidSequence, len(s), n+2)
	}
	if s[0] != 0 || s[len(s)-1] != 0 {
		return fmt.Errorf("%w: must start and end at the depot", ErrInvalidSequence)
	}

	seen := make(map[int]struct{}, n)
	for _, idx := range s[1 : len(s)-1] {
		if idx < 1 || idx > n {
			return fmt.Errorf("%w: index %d out of range 1..%d", ErrInvalidSequence, idx, n)
		}
		if _, ok := seen[idx]; ok {
			return fmt.Errorf("%w: index %d visited twice", ErrInvalidSequence, idx)
		}
		seen[idx] = struct{}{}
	}

	return nil
}

// Represents the realized path between two consecutive stops of a Sequence.
//
// DurationSeconds includes ServiceSeconds, the fixed time spent at the stop
// the segment arrives at (zero when arriving at the depot). Degraded segments
// were synthesized as a straight line because the routing provider returned no
// usable path; their distance and duration are estimates.
type Segment struct {
	FromIndex                 int
	ToIndex                   int
	Start                     Coordinates
	End                       Coordinates
	Midpoint                  Coordinates
	Geometry                  []Coordinates
	DistanceMeters            float64
	DurationSeconds           float64
	ServiceSeconds            float64
	CumulativeDistanceMeters  float64
	CumulativeDurationSeconds float64
	Degraded                  bool
}

// Represents the output of one optimization request.
// It is immutable planning data: a new request produces a new route.
type AssembledRoute struct {
	Strategy         string
	AlgorithmName    string
	Sequence         Sequence
	Stops            []Stop
	TotalDistanceKm  float64
	TotalTimeMinutes float64
	Geometry         []Coordinates
	Segments         []Segment
}

func (r *AssembledRoute) DegradedCount() int {
	n := 0
	for _, s := range r.Segments {
		if s.Degraded {
			n++
		}
	}
	return n
}

// OrderedStops returns the stops in visiting order, depot at both ends.
func (r *AssembledRoute) OrderedStops() []Stop {
	out := make([]Stop, 0, len(r.Sequence))
	for _, idx := range r.Sequence {
		if idx >= 0 && idx < len(r.Stops) {
			out = append(out, r.Stops[idx])
		}
	}
	return out
}
