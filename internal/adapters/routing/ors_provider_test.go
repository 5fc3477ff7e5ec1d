package routing

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directionsBody = `{
  "type": "FeatureCollection",
  "bbox": [8.681495, 49.41461, 8.690123, 49.420318],
  "features": [{
    "type": "Feature",
    "bbox": [8.681495, 49.41461, 8.690123, 49.420318],
    "properties": {
      "segments": [{"distance": 1408.8, "duration": 281.9}],
      "summary": {"distance": 1408.8, "duration": 281.9},
      "way_points": [0, 2]
    },
    "geometry": {
      "type": "LineString",
      "coordinates": [[8.681495, 49.41461], [8.686507, 49.41943], [8.690123, 49.420318]]
    }
  }],
  "metadata": {"service": "routing"}
}`

func newTestORS(t *testing.T, h http.HandlerFunc) *ORSProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewORSProvider(ORSConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	p.retryBackoff = time.Millisecond
	p.now = func() time.Time { return time.Date(2026, 5, 4, 7, 30, 0, 0, time.UTC) }
	return p
}

func TestNewORSProviderRequiresKey(t *testing.T) {
	_, err := NewORSProvider(ORSConfig{})
	require.Error(t, err)
}

func TestORSCalculateRoute(t *testing.T) {
	var got directionsRequest
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/directions/driving-hgv/geojson", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(directionsBody))
	})

	res, err := p.CalculateRoute(context.Background(), ports.RouteRequest{
		Origin:          domain.Coordinates{Lon: 8.681495, Lat: 49.41461},
		Destination:     domain.Coordinates{Lon: 8.690123, Lat: 49.420318},
		Mode:            domain.TravelModeDrivingHeavy,
		IncludeGeometry: true,
		Traffic:         domain.DepartNow(),
	})
	require.NoError(t, err)
	require.Len(t, res.Legs, 1)

	leg := res.Legs[0]
	assert.InDelta(t, 1408.8, leg.DistanceMeters, 1e-9)
	assert.InDelta(t, 281.9, leg.DurationSeconds, 1e-9)
	require.Len(t, leg.Geometry, 3)
	assert.Equal(t, domain.Coordinates{Lon: 8.686507, Lat: 49.41943}, leg.Geometry[1])

	assert.Equal(t, [][]float64{{8.681495, 49.41461}, {8.690123, 49.420318}}, got.Coordinates)
	assert.True(t, got.Geometry)
	assert.Equal(t, "2026-05-04T07:30:00Z", got.Departure)
}

func TestORSCalculateRouteWithoutTrafficOmitsDeparture(t *testing.T) {
	var raw map[string]any
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	})

	res, err := p.CalculateRoute(context.Background(), ports.RouteRequest{
		Mode:            domain.TravelModeWalking,
		IncludeGeometry: true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Legs)
	assert.NotContains(t, raw, "departure")
}

func TestORSCalculateRouteDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":2099,"message":"unavailable"}}`, http.StatusServiceUnavailable)
	})

	_, err := p.CalculateRoute(context.Background(), ports.RouteRequest{Mode: domain.TravelModeDrivingLight})
	require.Error(t, err)

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestORSCalculateRouteUnknownMode(t *testing.T) {
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request")
	})

	_, err := p.CalculateRoute(context.Background(), ports.RouteRequest{Mode: "boat"})
	require.Error(t, err)
}

func TestORSOptimizeWaypoints(t *testing.T) {
	var calls atomic.Int32
	var got optimizationRequest
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "/optimization", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
		  "code": 0,
		  "routes": [{
		    "vehicle": 1,
		    "steps": [
		      {"type": "start", "location": [0, 0]},
		      {"type": "job", "id": 1, "location": [2, 2]},
		      {"type": "job", "id": 0, "location": [1, 1]},
		      {"type": "end", "location": [0, 0]}
		    ]
		  }],
		  "unassigned": []
		}`))
	})

	depot := domain.Coordinates{Lon: 0, Lat: 0}
	out, err := p.OptimizeWaypoints(context.Background(), ports.OptimizeRequest{
		Origin:      depot,
		Destination: depot,
		Waypoints: []ports.Waypoint{
			{Position: domain.Coordinates{Lon: 1, Lat: 1}, ID: 0},
			{Position: domain.Coordinates{Lon: 2, Lat: 2}, ID: 1},
		},
		Mode: domain.TravelModeTwoWheeled,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	require.Len(t, out, 2)
	assert.Equal(t, ports.Waypoint{Position: domain.Coordinates{Lon: 2, Lat: 2}, ID: 1}, out[0])
	assert.Equal(t, ports.Waypoint{Position: domain.Coordinates{Lon: 1, Lat: 1}, ID: 0}, out[1])

	require.Len(t, got.Vehicles, 1)
	assert.Equal(t, "cycling-electric", got.Vehicles[0].Profile)
	assert.Equal(t, []float64{0, 0}, got.Vehicles[0].Start)
	assert.Len(t, got.Jobs, 2)
}

func TestORSOptimizeWaypointsClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := p.OptimizeWaypoints(context.Background(), ports.OptimizeRequest{
		Waypoints: []ports.Waypoint{{Position: domain.Coordinates{Lon: 1, Lat: 1}}},
		Mode:      domain.TravelModeDrivingHeavy,
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestORSOptimizeWaypointsGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	p := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := p.OptimizeWaypoints(context.Background(), ports.OptimizeRequest{
		Waypoints: []ports.Waypoint{{Position: domain.Coordinates{Lon: 1, Lat: 1}}},
		Mode:      domain.TravelModeDrivingHeavy,
	})
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}
