package domain

import (
	"fmt"
	"strings"
	"time"
)

type TravelMode string

const (
	TravelModeDrivingHeavy TravelMode = "driving-heavy"
	TravelModeDrivingLight TravelMode = "driving-light"
	TravelModeTwoWheeled   TravelMode = "two-wheeled"
	TravelModeWalking      TravelMode = "walking"
)

var travelModeAliases = map[string]TravelMode{
	"driving-heavy": TravelModeDrivingHeavy,
	"truck":         TravelModeDrivingHeavy,
	"driving-light": TravelModeDrivingLight,
	"car":           TravelModeDrivingLight,
	"two-wheeled":   TravelModeTwoWheeled,
	"scooter":       TravelModeTwoWheeled,
	"walking":       TravelModeWalking,
	"pedestrian":    TravelModeWalking,
}

// ParseTravelMode accepts the canonical names and the vehicle labels shown to
// users (Truck, Car, Scooter, Pedestrian).
func ParseTravelMode(s string) (TravelMode, error) {
	m, ok := travelModeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
	return m, nil
}

func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeDrivingHeavy, TravelModeDrivingLight, TravelModeTwoWheeled, TravelModeWalking:
		return true
	}
	return false
}

// Traffic-aware routing options. The zero value requests no traffic data.
// At most one of DepartNow and DepartureTime is set.
type TrafficParams struct {
	DepartNow     bool
	DepartureTime *time.Time
}

func NoTraffic() TrafficParams { return TrafficParams{} }

func DepartNow() TrafficParams { return TrafficParams{DepartNow: true} }

func DepartAt(t time.Time) TrafficParams {
	t = t.UTC()
	return TrafficParams{DepartureTime: &t}
}

func (p TrafficParams) IsNone() bool {
	return !p.DepartNow && p.DepartureTime == nil
}
