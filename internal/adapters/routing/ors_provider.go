package routing

import (
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultORSBaseURL = "https://api.openrouteservice.org"

var orsProfiles = map[domain.TravelMode]string{
	domain.TravelModeDrivingHeavy: "driving-hgv",
	domain.TravelModeDrivingLight: "driving-car",
	domain.TravelModeTwoWheeled:   "cycling-electric",
	domain.TravelModeWalking:      "foot-walking",
}

// ORSProvider implements RoutingProvider and WaypointOptimizer on top of
// OpenRouteService.
//
// Directions are requested once per segment with no retry; a failed call is
// handled by the caller's straight-line fallback. Optimization calls retry
// transient failures with backoff.
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	metrics      *obs.Collector
	retryBackoff time.Duration
	now          func() time.Time
}

type ORSConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Metrics *obs.Collector
}

func NewORSProvider(cfg ORSConfig) (*ORSProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	provider := &ORSProvider{
		session:      &http.Client{Timeout: timeout},
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		metrics:      cfg.Metrics,
		retryBackoff: 200 * time.Millisecond,
		now:          time.Now,
	}

	return provider, nil
}

func profileFor(mode domain.TravelMode) (string, error) {
	p, ok := orsProfiles[mode]
	if !ok {
		return "", fmt.Errorf("no ORS profile for travel mode %q", mode)
	}
	return p, nil
}

// departure renders traffic params as the ORS departure timestamp, or "" for
// traffic-free requests.
func (o *ORSProvider) departure(p domain.TrafficParams) string {
	switch {
	case p.DepartureTime != nil:
		return p.DepartureTime.UTC().Format(time.RFC3339)
	case p.DepartNow:
		return o.now().UTC().Format(time.RFC3339)
	}
	return ""
}
