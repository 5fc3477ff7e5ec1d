package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsSegmentsAndOptimizations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveSegment(false)
	c.ObserveSegment(true)
	c.ObserveSegment(true)
	c.ObserveOptimization("nearest_neighbor", nil)
	c.ObserveOptimization("external", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Segments.WithLabelValues("provider")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Segments.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Optimizations.WithLabelValues("nearest_neighbor", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Optimizations.WithLabelValues("external", "error")))
}

func TestCollectorReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	first.ObserveCacheLookup("hit")
	second.ObserveCacheLookup("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.LegCacheLookups.WithLabelValues("hit")))
}

func TestCollectorHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveProviderCall("directions", 120*time.Millisecond, nil)
	c.ObserveHTTPRequest(http.MethodPost, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "routing_provider_request_duration_seconds_count"))
	assert.True(t, strings.Contains(body, `http_requests_total{code="200",method="POST"} 1`))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveSegment(true)
	c.ObserveOptimization("x", nil)
	c.ObserveProviderCall("x", time.Second, nil)
	c.ObserveCacheLookup("miss")
	c.ObserveHTTPRequest(http.MethodGet, http.StatusOK)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("development", "")
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = NewLogger("production", "loud")
	assert.Error(t, err)
}
