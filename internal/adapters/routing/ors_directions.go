package routing

import (
	"bytes"
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
	Geometry     bool        `json:"geometry"`
	Departure    string      `json:"departure,omitempty"`
}

// CalculateRoute fetches a single origin->destination path from the ORS
// directions endpoint in GeoJSON form.
func (o *ORSProvider) CalculateRoute(ctx context.Context, req ports.RouteRequest) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "ors.CalculateRoute")(&err)

	start := time.Now()
	defer func() { o.metrics.ObserveProviderCall("directions", time.Since(start), err) }()

	profile, err := profileFor(req.Mode)
	if err != nil {
		return ports.RouteResult{}, err
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates:  [][]float64{req.Origin.CoordsToList(), req.Destination.CoordsToList()},
		Instructions: false,
		Geometry:     req.IncludeGeometry,
		Departure:    o.departure(req.Traffic),
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	httpReq, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ports.RouteResult{}, err
	}

	resp, err := o.do(httpReq)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("read directions response: %w", err)
	}

	return decodeDirections(body)
}

// decodeDirections turns an ORS GeoJSON FeatureCollection into legs. Each
// feature is one route; only LineString geometries are accepted. A feature
// without geometry yields a leg with an empty path.
func decodeDirections(body []byte) (ports.RouteResult, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	legs := make([]ports.RouteLeg, 0, len(fc.Features))
	for _, f := range fc.Features {
		leg := ports.RouteLeg{}

		if ls, ok := f.Geometry.(orb.LineString); ok {
			leg.Geometry = make([]domain.Coordinates, 0, len(ls))
			for _, p := range ls {
				leg.Geometry = append(leg.Geometry, domain.Coordinates{Lon: p.Lon(), Lat: p.Lat()})
			}
		}

		// ORS omits zero values from the summary, e.g. for identical endpoints.
		if summary, ok := f.Properties["summary"].(map[string]interface{}); ok {
			leg.DistanceMeters, _ = summary["distance"].(float64)
			leg.DurationSeconds, _ = summary["duration"].(float64)
		}

		legs = append(legs, leg)
	}

	return ports.RouteResult{Legs: legs}, nil
}
