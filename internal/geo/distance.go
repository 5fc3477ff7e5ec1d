package geo

import (
	"delivery-route-optimizer/internal/domain"

	"github.com/golang/geo/s2"
)

const (
	earthRadiusKM = 6371.0

	// Planning estimates for straight-line fallback legs.
	FallbackMetersPerKM  = 1000.0
	FallbackSecondsPerKM = 120.0
)

// Distance returns the great-circle distance between two coordinates in km
// using the haversine formula. It is a heuristic metric only and never the
// authoritative length of a road route. Arguments are put in a canonical
// order first so that Distance(a, b) == Distance(b, a) holds bit for bit.
func Distance(a, b domain.Coordinates) float64 {
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lon < a.Lon) {
		a, b = b, a
	}
	pa := s2.LatLngFromDegrees(a.Lat, a.Lon)
	pb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return pa.Distance(pb).Radians() * earthRadiusKM
}

// StraightLineEstimate returns the placeholder distance (meters) and duration
// (seconds) used when no road path is available, i.e. roughly 30 km/h.
func StraightLineEstimate(a, b domain.Coordinates) (meters, seconds float64) {
	km := Distance(a, b)
	return km * FallbackMetersPerKM, km * FallbackSecondsPerKM
}
