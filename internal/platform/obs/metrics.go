package obs

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes route planning metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Optimizations    *prometheus.CounterVec
	Segments         *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	LegCacheLookups  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// NewCollector registers route planning metrics against the provided registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	optimizations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_optimizations_total",
		Help: "Route optimization requests by strategy and result.",
	}, []string{"strategy", "result"}), "route_optimizations_total")
	if err != nil {
		return nil, err
	}

	segments, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_segments_total",
		Help: "Assembled route segments by source (provider or straight-line fallback).",
	}, []string{"source"}), "route_segments_total")
	if err != nil {
		return nil, err
	}

	providerDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routing_provider_request_duration_seconds",
		Help:    "Latency of routing provider calls.",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation", "result"}), "routing_provider_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	cacheLookups, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leg_cache_lookups_total",
		Help: "Leg cache lookups by result (hit, miss, error).",
	}, []string{"result"}), "leg_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	httpRequests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		Optimizations:    optimizations,
		Segments:         segments,
		ProviderDuration: providerDuration,
		LegCacheLookups:  cacheLookups,
		HTTPRequests:     httpRequests,
	}, nil
}

// Handler serves the gathered metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveOptimization(strategy string, err error) {
	if c == nil || c.Optimizations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Optimizations.WithLabelValues(strategy, result).Inc()
}

func (c *Collector) ObserveSegment(degraded bool) {
	if c == nil || c.Segments == nil {
		return
	}
	source := "provider"
	if degraded {
		source = "fallback"
	}
	c.Segments.WithLabelValues(source).Inc()
}

func (c *Collector) ObserveProviderCall(operation string, d time.Duration, err error) {
	if c == nil || c.ProviderDuration == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ProviderDuration.WithLabelValues(operation, result).Observe(d.Seconds())
}

// ObserveCacheLookup records one lookup; result is "hit", "miss" or "error".
func (c *Collector) ObserveCacheLookup(result string) {
	if c == nil || c.LegCacheLookups == nil {
		return
	}
	c.LegCacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveHTTPRequest(method string, status int) {
	if c == nil || c.HTTPRequests == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
