package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCoordinatesApproxEqual(t *testing.T) {
	a := Coordinates{Lon: 44.3661, Lat: 33.3152}

	if !a.ApproxEqual(Coordinates{Lon: 44.36615, Lat: 33.31515}, 1e-4) {
		t.Errorf("expected coordinates within 5e-5 to match")
	}
	if a.ApproxEqual(Coordinates{Lon: 44.3663, Lat: 33.3152}, 1e-4) {
		t.Errorf("expected longitude offset of 2e-4 not to match")
	}
	if a.ApproxEqual(Coordinates{Lon: 44.3661, Lat: 33.3154}, 1e-4) {
		t.Errorf("expected latitude offset of 2e-4 not to match")
	}
}

func TestCoordinatesMidpoint(t *testing.T) {
	got := Coordinates{Lon: 0, Lat: 0}.Midpoint(Coordinates{Lon: 2, Lat: 4})
	if got != (Coordinates{Lon: 1, Lat: 2}) {
		t.Fatalf("midpoint = %v, want (1, 2)", got)
	}
}

func TestCoordinatesFromList(t *testing.T) {
	c, err := CoordinatesFromList([]float64{-74.006, 40.7128})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lon != -74.006 || c.Lat != 40.7128 {
		t.Fatalf("got %v, want lon=-74.006 lat=40.7128", c)
	}

	if _, err := CoordinatesFromList([]float64{1}); err == nil {
		t.Fatalf("expected error for single value")
	}
}

func TestSequenceValidate(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence
		n    int
		ok   bool
	}{
		{name: "valid", seq: Sequence{0, 2, 1, 3, 0}, n: 3, ok: true},
		{name: "too short", seq: Sequence{0, 1, 0}, n: 2},
		{name: "does not start at depot", seq: Sequence{1, 2, 0, 0}, n: 2},
		{name: "duplicate stop", seq: Sequence{0, 1, 1, 0}, n: 2},
		{name: "unresolved index", seq: Sequence{0, -1, 2, 0}, n: 2},
		{name: "out of range", seq: Sequence{0, 1, 3, 0}, n: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seq.Validate(tt.n)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSequence) {
				t.Fatalf("err = %v, want ErrInvalidSequence", err)
			}
		})
	}
}

func TestParseStopLines(t *testing.T) {
	text := "44.3661, 33.3152\n\n44.3700 33.3200\nnot a coordinate\n44.1,abc\n"

	stops, issues := ParseStopLines(text, 2, "p")

	if len(stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(stops))
	}
	if stops[0].Coordinates != (Coordinates{Lon: 44.3661, Lat: 33.3152}) {
		t.Errorf("first stop = %v", stops[0].Coordinates)
	}
	if stops[0].Label != "3. (44.3661, 33.3152)" {
		t.Errorf("first label = %q", stops[0].Label)
	}
	if stops[1].Label != "4. (44.3700, 33.3200)" {
		t.Errorf("second label = %q", stops[1].Label)
	}
	if stops[0].ID == stops[1].ID {
		t.Errorf("expected distinct ids, both %q", stops[0].ID)
	}

	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	if issues[0].Line != 4 || issues[1].Line != 5 {
		t.Errorf("issue lines = %d, %d, want 4, 5", issues[0].Line, issues[1].Line)
	}
}

func TestParseStopLinesRejectsNaN(t *testing.T) {
	stops, issues := ParseStopLines("NaN, 1", 0, "p")
	if len(stops) != 0 || len(issues) != 1 {
		t.Fatalf("stops=%d issues=%d, want 0 and 1", len(stops), len(issues))
	}
}

func TestParseTravelMode(t *testing.T) {
	tests := map[string]TravelMode{
		"Truck":         TravelModeDrivingHeavy,
		"car":           TravelModeDrivingLight,
		" Scooter ":     TravelModeTwoWheeled,
		"Pedestrian":    TravelModeWalking,
		"driving-heavy": TravelModeDrivingHeavy,
	}
	for in, want := range tests {
		got, err := ParseTravelMode(in)
		if err != nil {
			t.Fatalf("ParseTravelMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseTravelMode(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseTravelMode("boat"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}

func TestTrafficParams(t *testing.T) {
	if !NoTraffic().IsNone() {
		t.Errorf("NoTraffic should be none")
	}
	if DepartNow().IsNone() {
		t.Errorf("DepartNow should not be none")
	}

	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	p := DepartAt(at)
	if p.IsNone() || p.DepartureTime == nil {
		t.Fatalf("DepartAt should carry a departure time")
	}
	if !p.DepartureTime.Equal(at) || p.DepartureTime.Location() != time.UTC {
		t.Errorf("departure = %v, want %v in UTC", p.DepartureTime, at)
	}
}

func TestAssembledRouteOrderedStops(t *testing.T) {
	depot := NewDepot(Coordinates{Lon: 0, Lat: 0})
	a := Stop{ID: "a"}
	b := Stop{ID: "b"}

	r := &AssembledRoute{
		Sequence: Sequence{0, 2, 1, 0},
		Stops:    []Stop{depot, a, b},
		Segments: []Segment{{Degraded: true}, {}, {Degraded: true}},
	}

	got := r.OrderedStops()
	want := []string{DepotID, "b", "a", DepotID}
	if len(got) != len(want) {
		t.Fatalf("got %d stops, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("stop %d = %q, want %q", i, got[i].ID, want[i])
		}
	}

	if r.DegradedCount() != 2 {
		t.Errorf("degraded = %d, want 2", r.DegradedCount())
	}
}
