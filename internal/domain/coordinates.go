package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (longitude, latitude) in degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// CoordinatesFromList reads a [lon, lat] pair as returned by routing services.
func CoordinatesFromList(v []float64) (Coordinates, error) {
	if len(v) < 2 {
		return Coordinates{}, fmt.Errorf("coordinates: expected [lon, lat], got %d values", len(v))
	}
	return Coordinates{Lon: v[0], Lat: v[1]}, nil
}

// Midpoint is the arithmetic mean of both endpoints. It is only meant for
// marker placement and is not the midpoint of the travelled path.
func (c Coordinates) Midpoint(other Coordinates) Coordinates {
	return Coordinates{
		Lon: (c.Lon + other.Lon) / 2,
		Lat: (c.Lat + other.Lat) / 2,
	}
}

// ApproxEqual reports whether both axes differ by strictly less than eps degrees.
func (c Coordinates) ApproxEqual(other Coordinates, eps float64) bool {
	return math.Abs(c.Lon-other.Lon) < eps && math.Abs(c.Lat-other.Lat) < eps
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Lon, c.Lat)
}
