package services

import (
	"delivery-route-optimizer/internal/domain"
	"math/rand"
	"reflect"
	"testing"
)

func stopsAt(coords ...domain.Coordinates) []domain.Stop {
	out := make([]domain.Stop, 0, len(coords))
	for i, c := range coords {
		out = append(out, domain.Stop{
			ID:          string(rune('A' + i)),
			Coordinates: c,
			Label:       domain.FormatStopLabel(i+1, c),
		})
	}
	return out
}

func TestNearestNeighborSequencePicksClosestFirst(t *testing.T) {
	depot := domain.NewDepot(domain.Coordinates{Lon: 0, Lat: 0})
	stops := stopsAt(
		domain.Coordinates{Lon: 0, Lat: 2}, // A
		domain.Coordinates{Lon: 0, Lat: 1}, // B
	)

	got := NearestNeighborSequence(depot, stops)

	want := domain.Sequence{0, 2, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}
}

func TestNearestNeighborSequenceTieKeepsListOrder(t *testing.T) {
	depot := domain.NewDepot(domain.Coordinates{Lon: 0, Lat: 0})
	east := domain.Coordinates{Lon: 1, Lat: 0}
	west := domain.Coordinates{Lon: -1, Lat: 0}

	for _, stops := range [][]domain.Stop{stopsAt(east, west), stopsAt(west, east)} {
		got := NearestNeighborSequence(depot, stops)
		if got[1] != 1 {
			t.Fatalf("sequence = %v, expected the first listed stop to be visited first", got)
		}
	}
}

func TestNearestNeighborSequenceInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 2; n <= 25; n++ {
		depot := domain.NewDepot(domain.Coordinates{Lon: rng.Float64()*360 - 180, Lat: rng.Float64()*180 - 90})

		coords := make([]domain.Coordinates, n)
		for i := range coords {
			coords[i] = domain.Coordinates{Lon: rng.Float64()*360 - 180, Lat: rng.Float64()*180 - 90}
		}
		stops := stopsAt(coords...)

		seq := NearestNeighborSequence(depot, stops)
		if err := seq.Validate(n); err != nil {
			t.Fatalf("n=%d: %v (sequence %v)", n, err, seq)
		}

		again := NearestNeighborSequence(depot, stops)
		if !reflect.DeepEqual(seq, again) {
			t.Fatalf("n=%d: not deterministic: %v vs %v", n, seq, again)
		}
	}
}

func TestNearestNeighborSequenceDuplicateCoordinates(t *testing.T) {
	depot := domain.NewDepot(domain.Coordinates{Lon: 0, Lat: 0})
	same := domain.Coordinates{Lon: 0.5, Lat: 0.5}
	stops := stopsAt(same, same, same)

	seq := NearestNeighborSequence(depot, stops)

	want := domain.Sequence{0, 1, 2, 3, 0}
	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
}
