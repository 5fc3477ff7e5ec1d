package dto

import (
	"delivery-route-optimizer/internal/domain"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

type CoordinateRequest struct {
	Lon *float64 `json:"lon" validate:"required,longitude"`
	Lat *float64 `json:"lat" validate:"required,latitude"`
}

func (c CoordinateRequest) ToDomain() domain.Coordinates {
	return domain.Coordinates{Lon: *c.Lon, Lat: *c.Lat}
}

type StopRequest struct {
	ID    string   `json:"id" validate:"omitempty,max=64,ne=depot"`
	Lon   *float64 `json:"lon" validate:"required,longitude"`
	Lat   *float64 `json:"lat" validate:"required,latitude"`
	Label string   `json:"label" validate:"max=128"`
}

type TrafficRequest struct {
	Enabled  bool       `json:"enabled"`
	DepartAt *time.Time `json:"depart_at"`
}

// ToDomain maps the request onto traffic params. An omitted block departs
// now; disabled means no traffic data; enabled without a time departs now.
func (t *TrafficRequest) ToDomain() domain.TrafficParams {
	switch {
	case t == nil:
		return domain.DepartNow()
	case !t.Enabled:
		return domain.NoTraffic()
	case t.DepartAt != nil:
		return domain.DepartAt(*t.DepartAt)
	default:
		return domain.DepartNow()
	}
}

type OptimizeRouteRequest struct {
	Depot              *CoordinateRequest `json:"depot" validate:"required"`
	Stops              []StopRequest      `json:"stops" validate:"max=200,dive"`
	Strategy           string             `json:"strategy" validate:"omitempty,oneof=nearest_neighbor external"`
	TravelMode         string             `json:"travel_mode"`
	ServiceTimeMinutes *float64           `json:"service_time_minutes" validate:"omitempty,min=0,max=15"`
	Traffic            *TrafficRequest    `json:"traffic"`
}

// StopsToDomain assigns ids and display labels to stops that omit them.
// Generated ids ("s<index>") never collide with ids supplied by the client;
// duplicate client ids are rejected.
func (r OptimizeRouteRequest) StopsToDomain() ([]domain.Stop, error) {
	taken := make(map[string]bool, len(r.Stops))
	for _, s := range r.Stops {
		if s.ID == "" {
			continue
		}
		if taken[s.ID] {
			return nil, fmt.Errorf("duplicate stop id %q", s.ID)
		}
		taken[s.ID] = true
	}

	stops := make([]domain.Stop, 0, len(r.Stops))
	for i, s := range r.Stops {
		c := domain.Coordinates{Lon: *s.Lon, Lat: *s.Lat}

		id := s.ID
		if id == "" {
			id = fmt.Sprintf("s%d", i)
			for n := 1; taken[id]; n++ {
				id = fmt.Sprintf("s%d-%d", i, n)
			}
			taken[id] = true
		}
		label := s.Label
		if label == "" {
			label = domain.FormatStopLabel(i+1, c)
		}

		stops = append(stops, domain.Stop{ID: id, Coordinates: c, Label: label})
	}
	return stops, nil
}

type StopResponse struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
}

type SegmentResponse struct {
	FromStopID                string    `json:"from_stop_id"`
	ToStopID                  string    `json:"to_stop_id"`
	Start                     []float64 `json:"start"`
	End                       []float64 `json:"end"`
	Midpoint                  []float64 `json:"midpoint"`
	DistanceMeters            float64   `json:"distance_meters"`
	DurationSeconds           float64   `json:"duration_seconds"`
	ServiceSeconds            float64   `json:"service_seconds"`
	CumulativeDistanceMeters  float64   `json:"cumulative_distance_meters"`
	CumulativeDurationSeconds float64   `json:"cumulative_duration_seconds"`
	Label                     string    `json:"label"`
	Degraded                  bool      `json:"degraded"`
}

type RouteResponse struct {
	Strategy         string            `json:"strategy"`
	AlgorithmName    string            `json:"algorithm_name"`
	Sequence         []int             `json:"sequence"`
	Stops            []StopResponse    `json:"stops"`
	TotalDistanceKm  float64           `json:"total_distance_km"`
	TotalTimeMinutes float64           `json:"total_time_minutes"`
	Segments         []SegmentResponse `json:"segments"`
	DegradedSegments int               `json:"degraded_segments"`
	Polyline         string            `json:"polyline"`
	Geometry         *geojson.Feature  `json:"geometry"`
}

// DurationLabel renders a segment duration as whole minutes for map markers.
func DurationLabel(seconds float64) string {
	return fmt.Sprintf("%d min", int(math.Round(seconds/60)))
}

func NewRouteResponse(r *domain.AssembledRoute) RouteResponse {
	stops := make([]StopResponse, 0, len(r.Sequence))
	for _, s := range r.OrderedStops() {
		stops = append(stops, StopResponse{
			ID:    s.ID,
			Label: s.Label,
			Lon:   s.Coordinates.Lon,
			Lat:   s.Coordinates.Lat,
		})
	}

	segments := make([]SegmentResponse, 0, len(r.Segments))
	for _, s := range r.Segments {
		segments = append(segments, SegmentResponse{
			FromStopID:                r.Stops[s.FromIndex].ID,
			ToStopID:                  r.Stops[s.ToIndex].ID,
			Start:                     s.Start.CoordsToList(),
			End:                       s.End.CoordsToList(),
			Midpoint:                  s.Midpoint.CoordsToList(),
			DistanceMeters:            s.DistanceMeters,
			DurationSeconds:           s.DurationSeconds,
			ServiceSeconds:            s.ServiceSeconds,
			CumulativeDistanceMeters:  s.CumulativeDistanceMeters,
			CumulativeDurationSeconds: s.CumulativeDurationSeconds,
			Label:                     DurationLabel(s.DurationSeconds),
			Degraded:                  s.Degraded,
		})
	}

	return RouteResponse{
		Strategy:         r.Strategy,
		AlgorithmName:    r.AlgorithmName,
		Sequence:         append([]int(nil), r.Sequence...),
		Stops:            stops,
		TotalDistanceKm:  r.TotalDistanceKm,
		TotalTimeMinutes: r.TotalTimeMinutes,
		Segments:         segments,
		DegradedSegments: r.DegradedCount(),
		Polyline:         EncodePolyline(r.Geometry),
		Geometry:         RouteFeature(r),
	}
}

func lineString(path []domain.Coordinates) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, c := range path {
		ls = append(ls, orb.Point{c.Lon, c.Lat})
	}
	return ls
}

// RouteFeature is the continuous route line annotated with its totals.
func RouteFeature(r *domain.AssembledRoute) *geojson.Feature {
	f := geojson.NewFeature(lineString(r.Geometry))
	f.Properties["kind"] = "route"
	f.Properties["algorithm_name"] = r.AlgorithmName
	f.Properties["total_distance_km"] = r.TotalDistanceKm
	f.Properties["total_time_minutes"] = r.TotalTimeMinutes
	return f
}

// RouteFeatureCollection renders the route line, one point per stop in
// visiting order and one midpoint marker per segment.
func RouteFeatureCollection(r *domain.AssembledRoute) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(RouteFeature(r))

	for i, s := range r.OrderedStops() {
		// The closing depot is already drawn as the first point.
		if i == len(r.Sequence)-1 {
			break
		}
		f := geojson.NewFeature(orb.Point{s.Coordinates.Lon, s.Coordinates.Lat})
		f.Properties["kind"] = "stop"
		f.Properties["id"] = s.ID
		f.Properties["label"] = s.Label
		f.Properties["order"] = i
		fc.Append(f)
	}

	for _, s := range r.Segments {
		f := geojson.NewFeature(orb.Point{s.Midpoint.Lon, s.Midpoint.Lat})
		f.Properties["kind"] = "segment"
		f.Properties["label"] = DurationLabel(s.DurationSeconds)
		f.Properties["duration_seconds"] = s.DurationSeconds
		f.Properties["distance_meters"] = s.DistanceMeters
		f.Properties["degraded"] = s.Degraded
		fc.Append(f)
	}

	return fc
}

// EncodePolyline encodes a path in the Google polyline format (lat,lon
// pairs, 1e-5 precision).
func EncodePolyline(path []domain.Coordinates) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
