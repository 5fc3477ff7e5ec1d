package services

import (
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"reflect"
	"testing"
)

func waypointsAt(coords ...domain.Coordinates) []ports.Waypoint {
	out := make([]ports.Waypoint, 0, len(coords))
	for _, c := range coords {
		out = append(out, ports.Waypoint{Position: c})
	}
	return out
}

func TestResolveExternalOrderOffsetsByOne(t *testing.T) {
	a := domain.Coordinates{Lon: 10, Lat: 10}
	b := domain.Coordinates{Lon: 20, Lat: 20}
	c := domain.Coordinates{Lon: 30, Lat: 30}
	stops := stopsAt(a, b, c)

	// The optimizer snaps positions slightly; still within tolerance.
	returned := waypointsAt(
		domain.Coordinates{Lon: 30.00005, Lat: 29.99995},
		domain.Coordinates{Lon: 10, Lat: 10},
		domain.Coordinates{Lon: 19.99999, Lat: 20.00001},
	)

	seq, err := ResolveExternalOrder(returned, stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.Sequence{0, 3, 1, 2, 0}
	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
}

func TestResolveExternalOrderDuplicateCoordinates(t *testing.T) {
	same := domain.Coordinates{Lon: 1, Lat: 1}
	other := domain.Coordinates{Lon: 2, Lat: 2}
	stops := stopsAt(same, same, other)

	seq, err := ResolveExternalOrder(waypointsAt(other, same, same), stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.Sequence{0, 3, 1, 2, 0}
	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
}

func TestResolveExternalOrderUnmatchedWaypoint(t *testing.T) {
	stops := stopsAt(
		domain.Coordinates{Lon: 1, Lat: 1},
		domain.Coordinates{Lon: 2, Lat: 2},
	)

	returned := waypointsAt(
		domain.Coordinates{Lon: 1, Lat: 1},
		domain.Coordinates{Lon: 2.0002, Lat: 2}, // outside tolerance
	)

	seq, err := ResolveExternalOrder(returned, stops)
	if !errors.Is(err, ErrUnresolvedWaypoint) {
		t.Fatalf("err = %v, want ErrUnresolvedWaypoint", err)
	}
	if seq != nil {
		t.Fatalf("expected no sequence, got %v", seq)
	}
}

func TestResolveExternalOrderMissingStop(t *testing.T) {
	stops := stopsAt(
		domain.Coordinates{Lon: 1, Lat: 1},
		domain.Coordinates{Lon: 2, Lat: 2},
		domain.Coordinates{Lon: 3, Lat: 3},
	)

	_, err := ResolveExternalOrder(waypointsAt(stops[2].Coordinates, stops[0].Coordinates), stops)
	if !errors.Is(err, ErrIncompleteOrder) {
		t.Fatalf("err = %v, want ErrIncompleteOrder", err)
	}
	if !errors.Is(err, domain.ErrInvalidSequence) {
		t.Fatalf("err = %v, expected to wrap ErrInvalidSequence", err)
	}
}

func TestMatchWaypointsMarksUnresolved(t *testing.T) {
	stops := stopsAt(domain.Coordinates{Lon: 1, Lat: 1})

	got := matchWaypoints(waypointsAt(
		domain.Coordinates{Lon: 1, Lat: 1},
		domain.Coordinates{Lon: 1, Lat: 1},
	), stops)

	want := []int{1, UnresolvedIndex}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
}
