package repositories

import (
	"delivery-route-optimizer/internal/domain"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type StopSeed struct {
	ID    string  `json:"id"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Label string  `json:"label"`
}

// LoadStops reads delivery stops from a file. A .json file holds an array of
// StopSeed; any other file is read as manual input, one "lon,lat" per line,
// and unreadable lines are returned as issues instead of failing the load.
func LoadStops(path string) ([]domain.Stop, []domain.ParseIssue, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load stops: read %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		stops, err := parseStopSeeds(b)
		if err != nil {
			return nil, nil, fmt.Errorf("load stops: %w", err)
		}
		return stops, nil, nil
	}

	stops, issues := domain.ParseStopLines(string(b), 0, "s")
	return stops, issues, nil
}

func parseStopSeeds(b []byte) ([]domain.Stop, error) {
	var data []StopSeed
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	stops := make([]domain.Stop, 0, len(data))
	for i, item := range data {
		if math.IsNaN(item.Lon) || math.IsNaN(item.Lat) || math.Abs(item.Lon) > 180 || math.Abs(item.Lat) > 90 {
			return nil, fmt.Errorf("invalid coordinates at index %d: (%v, %v)", i+1, item.Lon, item.Lat)
		}

		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = "s" + strconv.Itoa(i)
		}
		if id == domain.DepotID {
			return nil, fmt.Errorf("stop id at index %d: %q is reserved", i+1, id)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate stop id %q at index %d", id, i+1)
		}
		seen[id] = struct{}{}

		c := domain.Coordinates{Lon: item.Lon, Lat: item.Lat}
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = domain.FormatStopLabel(len(stops)+1, c)
		}

		stops = append(stops, domain.Stop{ID: id, Coordinates: c, Label: label})
	}

	return stops, nil
}
