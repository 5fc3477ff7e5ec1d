package handlers

import (
	"context"
	"delivery-route-optimizer/internal/api/dto"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/services"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Optimizer is the service the route handler drives.
type Optimizer interface {
	OptimizeRoute(ctx context.Context, req services.OptimizeRequest) (*domain.AssembledRoute, error)
}

type RouteHandler struct {
	Planner            Optimizer
	Validator          *Validator
	DefaultMode        domain.TravelMode
	DefaultServiceTime time.Duration
}

// Optimize orders the submitted stops and returns the assembled route.
// Routing failures only degrade segments; invalid input, optimizer failures
// and unresolvable optimizer orders are reported as errors.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Validator.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode := h.DefaultMode
	if req.TravelMode != "" {
		m, err := domain.ParseTravelMode(req.TravelMode)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = services.StrategyNearestNeighbor
	}

	service := h.DefaultServiceTime
	if req.ServiceTimeMinutes != nil {
		service = time.Duration(*req.ServiceTimeMinutes * float64(time.Minute))
	}

	stops, err := req.StopsToDomain()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	depot := domain.NewDepot(req.Depot.ToDomain())
	route, err := h.Planner.OptimizeRoute(r.Context(), services.OptimizeRequest{
		Depot:       &depot,
		Stops:       stops,
		Strategy:    strategy,
		Mode:        mode,
		Traffic:     req.Traffic.ToDomain(),
		ServiceTime: services.ClampServiceTime(service),
	})
	if err != nil {
		status, msg := optimizeErrorStatus(err)
		if status >= http.StatusInternalServerError {
			zap.L().Error("optimize route failed",
				zap.String("req_id", obs.RequestID(r.Context())),
				zap.Error(err),
			)
		}
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}

func optimizeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNoDepot),
		errors.Is(err, services.ErrTooFewStops),
		errors.Is(err, services.ErrUnknownStrategy):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUnresolvedWaypoint),
		errors.Is(err, services.ErrIncompleteOrder):
		return http.StatusUnprocessableEntity, "optimizer returned an order that does not match the submitted stops"
	case errors.Is(err, services.ErrOptimizerUnavailable):
		return http.StatusNotImplemented, "external optimization is not configured"
	case errors.Is(err, services.ErrOptimizerFailed):
		return http.StatusBadGateway, "waypoint optimizer failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	}
	return http.StatusInternalServerError, "internal server error"
}
