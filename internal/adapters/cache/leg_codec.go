package cache

import (
	"delivery-route-optimizer/internal/domain"
	"fmt"
	"time"

	"github.com/twpayne/go-polyline"
)

// Geometry is stored as an encoded polyline at 1e-6 degree precision, the
// precision of provider coordinates and of ports.LegKey, so a cache hit
// returns the same path as the provider call it replaced. Pairs are ordered
// lat,lon.
var geometryCodec = polyline.Codec{Dim: 2, Scale: 1e6}

func encodeGeometry(path []domain.Coordinates) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(geometryCodec.EncodeCoords(nil, coords))
}

func decodeGeometry(s string) ([]domain.Coordinates, error) {
	coords, rest, err := geometryCodec.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	out := make([]domain.Coordinates, 0, len(coords))
	for _, c := range coords {
		out = append(out, domain.Coordinates{Lon: c[1], Lat: c[0]})
	}
	return out, nil
}

// cutoff returns the oldest acceptable creation time in unix seconds, or 0
// when entries never expire.
func cutoff(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(-ttl).Unix()
}
