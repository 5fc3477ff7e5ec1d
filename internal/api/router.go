package api

import (
	"delivery-route-optimizer/internal/api/handlers"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitRPS       float64
	RateLimitBurst     int
	DefaultMode        domain.TravelMode
	DefaultServiceTime time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	cfg RouterConfig,
	planner handlers.Optimizer,
	metrics *obs.Collector,
	log *zap.Logger,
) (http.Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	validator, err := handlers.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	routeHandler := &handlers.RouteHandler{
		Planner:            planner,
		Validator:          validator,
		DefaultMode:        cfg.DefaultMode,
		DefaultServiceTime: cfg.DefaultServiceTime,
	}
	stopHandler := &handlers.StopHandler{Validator: validator}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/health", handlers.Health)
	router.HandlerFunc(http.MethodPost, "/routes/optimize", routeHandler.Optimize)
	router.HandlerFunc(http.MethodPost, "/stops/parse", stopHandler.Parse)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})

	chain := []alice.Constructor{
		corsHandler.Handler,
		requestID,
		loggingMiddleware(log, metrics),
		recoverPanic(log),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		chain = append(chain, limit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)))
	}

	return alice.New(chain...).Then(router), nil
}
