package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, c MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_RuntimeCollectors(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:            "rt",
		EnableGoMetrics:      true,
		EnableProcessMetrics: true,
	}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestRegisterCounter_Idempotent(t *testing.T) {
	c := newTestCollector(t)
	a := c.RegisterCounter("calls_total", "calls", "kind")
	b := c.RegisterCounter("calls_total", "calls", "kind")
	a.WithLabelValues("x").Inc()
	b.WithLabelValues("x").Add(2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_calls_total{kind="x"} 3`)
}

func TestRegister_TypeMismatchFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dual", "counter first")
	g := c.RegisterGauge("dual", "then gauge")
	assert.IsType(t, noopGaugeVec{}, g)
	g.WithLabelValues().Set(4) // must not panic
}

func TestRegisterHistogramAndGauge(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "latency", nil, "op")
	h.WithLabelValues("read").Observe(0.2)
	g := c.RegisterGauge("inflight", "inflight")
	g.WithLabelValues().Inc()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="read"} 1`)
	assert.Contains(t, out, `test_unit_inflight 1`)
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("timed_seconds", "timed", nil)
	d := NewTimer(h.WithLabelValues()).ObserveDuration()
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_timed_seconds_count 1")

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}
