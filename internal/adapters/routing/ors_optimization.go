package routing

import (
	"bytes"
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type optimizationJob struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
}

type optimizationVehicle struct {
	ID      int       `json:"id"`
	Profile string    `json:"profile"`
	Start   []float64 `json:"start"`
	End     []float64 `json:"end"`
}

type optimizationRequest struct {
	Jobs     []optimizationJob     `json:"jobs"`
	Vehicles []optimizationVehicle `json:"vehicles"`
}

type optimizationStep struct {
	Type     string    `json:"type"`
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
}

type optimizationResponse struct {
	Code   int `json:"code"`
	Routes []struct {
		Vehicle int                `json:"vehicle"`
		Steps   []optimizationStep `json:"steps"`
	} `json:"routes"`
	Unassigned []struct {
		ID int `json:"id"`
	} `json:"unassigned"`
}

// OptimizeWaypoints asks the ORS optimization endpoint for a single-vehicle
// visiting order. The endpoint has no traffic model, so req.Traffic is not
// sent. Jobs the solver leaves unassigned are missing from the result.
func (o *ORSProvider) OptimizeWaypoints(ctx context.Context, req ports.OptimizeRequest) (_ []ports.Waypoint, err error) {
	defer obs.Time(ctx, "ors.OptimizeWaypoints")(&err)

	start := time.Now()
	defer func() { o.metrics.ObserveProviderCall("optimization", time.Since(start), err) }()

	if len(req.Waypoints) == 0 {
		return []ports.Waypoint{}, nil
	}

	profile, err := profileFor(req.Mode)
	if err != nil {
		return nil, err
	}

	jobs := make([]optimizationJob, 0, len(req.Waypoints))
	for _, w := range req.Waypoints {
		if w.ID < 0 {
			return nil, fmt.Errorf("waypoint id %d must be non-negative", w.ID)
		}
		jobs = append(jobs, optimizationJob{ID: w.ID, Location: w.Position.CoordsToList()})
	}

	payload, err := json.Marshal(optimizationRequest{
		Jobs: jobs,
		Vehicles: []optimizationVehicle{{
			ID:      1,
			Profile: profile,
			Start:   req.Origin.CoordsToList(),
			End:     req.Destination.CoordsToList(),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal optimization request: %w", err)
	}

	endpoint := o.baseURL + "/optimization"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("optimization request failed: %w", err)
	}
	defer resp.Body.Close()

	var res optimizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode optimization response: %w", err)
	}

	if res.Code != 0 {
		return nil, fmt.Errorf("optimization returned code %d", res.Code)
	}
	if len(res.Routes) == 0 {
		return nil, errors.New("optimization returned no route")
	}

	if len(res.Unassigned) > 0 {
		zap.L().Warn("optimizer left stops unassigned",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int("unassigned", len(res.Unassigned)),
		)
	}

	out := make([]ports.Waypoint, 0, len(req.Waypoints))
	for _, step := range res.Routes[0].Steps {
		if step.Type != "job" {
			continue
		}
		pos, err := domain.CoordinatesFromList(step.Location)
		if err != nil {
			return nil, fmt.Errorf("optimization step for job %d: %w", step.ID, err)
		}
		out = append(out, ports.Waypoint{Position: pos, ID: step.ID})
	}

	return out, nil
}
