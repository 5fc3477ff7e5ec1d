package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DepotID is reserved for the depot stop.
const DepotID = "depot"

// Represents a location on the route: the depot or a delivery point.
// The depot always occupies index 0 of any ordering.
type Stop struct {
	ID          string
	Coordinates Coordinates
	Label       string
}

func NewDepot(c Coordinates) Stop {
	return Stop{
		ID:          DepotID,
		Coordinates: c,
		Label:       FormatDepotLabel(c),
	}
}

func (s Stop) IsDepot() bool { return s.ID == DepotID }

func FormatDepotLabel(c Coordinates) string {
	return fmt.Sprintf("Depot (%.4f, %.4f)", c.Lon, c.Lat)
}

// FormatStopLabel renders the 1-based display label of a delivery stop.
func FormatStopLabel(n int, c Coordinates) string {
	return fmt.Sprintf("%d. (%.4f, %.4f)", n, c.Lon, c.Lat)
}

// Reports one input line that could not be read as a coordinate pair.
type ParseIssue struct {
	Line   int
	Text   string
	Reason string
}

// ParseStopLines reads manually entered coordinates, one "lon,lat" pair per
// line. Commas and whitespace both separate values. Lines that do not hold two
// numbers are skipped and reported. Stops are numbered after offset, which is
// the count of delivery stops the caller already holds.
func ParseStopLines(text string, offset int, idPrefix string) ([]Stop, []ParseIssue) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	stops := make([]Stop, 0, len(lines))
	var issues []ParseIssue
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})
		if len(fields) < 2 {
			issues = append(issues, ParseIssue{Line: i + 1, Text: line, Reason: "expected lon,lat"})
			continue
		}

		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			issues = append(issues, ParseIssue{Line: i + 1, Text: line, Reason: "invalid longitude"})
			continue
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			issues = append(issues, ParseIssue{Line: i + 1, Text: line, Reason: "invalid latitude"})
			continue
		}

		if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
			issues = append(issues, ParseIssue{Line: i + 1, Text: line, Reason: "coordinates must be finite"})
			continue
		}

		c := Coordinates{Lon: lon, Lat: lat}
		stops = append(stops, Stop{
			ID:          idPrefix + strconv.Itoa(i),
			Coordinates: c,
			Label:       FormatStopLabel(offset+len(stops)+1, c),
		})
	}

	return stops, issues
}
