package handlers

import (
	"delivery-route-optimizer/internal/api/dto"
	"delivery-route-optimizer/internal/domain"
	"net/http"

	"github.com/google/uuid"
)

type StopHandler struct {
	Validator *Validator
}

// Parse reads manually entered coordinates, one "lon,lat" pair per line.
// Unreadable lines are reported back instead of failing the request.
func (h *StopHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req dto.ParseStopsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Validator.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Ids only need to be unique among the stops a client holds.
	prefix := "m" + uuid.NewString()[:8] + "-"
	stops, issues := domain.ParseStopLines(req.Text, req.Offset, prefix)

	res := dto.ParseStopsResponse{
		Stops:  make([]dto.StopResponse, 0, len(stops)),
		Issues: make([]dto.ParseIssueResponse, 0, len(issues)),
	}
	for _, s := range stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			ID:    s.ID,
			Label: s.Label,
			Lon:   s.Coordinates.Lon,
			Lat:   s.Coordinates.Lat,
		})
	}
	for _, i := range issues {
		res.Issues = append(res.Issues, dto.ParseIssueResponse{Line: i.Line, Text: i.Text, Reason: i.Reason})
	}

	writeJSON(w, r, http.StatusOK, res)
}
