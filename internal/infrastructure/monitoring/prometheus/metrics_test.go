package prometheus

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
)

func TestFingerprintMetrics_TransformLifecycle(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "molprint"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := NewFingerprintMetrics(c)

	m.TransformStarted("morgan")
	m.TransformFinished("morgan", "parallel", 100, 4, 2, 50*time.Millisecond, nil)
	m.TransformStarted("morgan")
	m.TransformFinished("morgan", "sequential", 10, 1, 0, time.Millisecond, errors.New("boom"))
	m.CacheHit("morgan")
	m.CacheMiss("morgan")
	m.ObserveHTTP(http.MethodPost, "/api/v1/fingerprints", 200, time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `molprint_transform_total{status="ok",type="morgan"} 1`)
	assert.Contains(t, out, `molprint_transform_total{status="error",type="morgan"} 1`)
	assert.Contains(t, out, `molprint_transform_items_total{type="morgan"} 100`)
	assert.Contains(t, out, `molprint_transform_skipped_rows_total{type="morgan"} 2`)
	assert.Contains(t, out, `molprint_transform_active{type="morgan"} 0`)
	assert.Contains(t, out, `molprint_cache_hits_total{type="morgan"} 1`)
	assert.Contains(t, out, `molprint_http_requests_total{code="200",method="POST",route="/api/v1/fingerprints"} 1`)
}
