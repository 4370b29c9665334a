package prometheus

import (
	"strconv"
	"time"
)

// Bucket layouts.
var (
	DefaultHTTPDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultTransformDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
	DefaultChunkBuckets             = []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 1024}
)

// FingerprintMetrics is the metric set of the transform core, the row cache
// and the HTTP API.
type FingerprintMetrics struct {
	TransformTotal    CounterVec
	TransformDuration HistogramVec
	TransformItems    CounterVec
	TransformChunks   HistogramVec
	SkippedRows       CounterVec
	ActiveTransforms  GaugeVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
}

// NewFingerprintMetrics registers every metric on c.
func NewFingerprintMetrics(c MetricsCollector) *FingerprintMetrics {
	return &FingerprintMetrics{
		TransformTotal: c.RegisterCounter("transform_total",
			"Fingerprint transform calls by type and outcome.", "type", "status"),
		TransformDuration: c.RegisterHistogram("transform_duration_seconds",
			"Wall time of fingerprint transform calls.", DefaultTransformDurationBuckets, "type", "mode"),
		TransformItems: c.RegisterCounter("transform_items_total",
			"Molecules processed by fingerprint transforms.", "type"),
		TransformChunks: c.RegisterHistogram("transform_chunks",
			"Number of chunks dispatched per transform call.", DefaultChunkBuckets, "type"),
		SkippedRows: c.RegisterCounter("transform_skipped_rows_total",
			"Rows replaced by sentinel zero rows under the skip policy.", "type"),
		ActiveTransforms: c.RegisterGauge("transform_active",
			"Transform calls currently running.", "type"),
		CacheHitsTotal: c.RegisterCounter("cache_hits_total",
			"Fingerprint row cache hits.", "type"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total",
			"Fingerprint row cache misses.", "type"),
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"HTTP requests by route and status code.", "method", "route", "code"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", DefaultHTTPDurationBuckets, "method", "route"),
	}
}

// TransformStarted marks a transform of fpType as running.
func (m *FingerprintMetrics) TransformStarted(fpType string) {
	m.ActiveTransforms.WithLabelValues(fpType).Inc()
}

// TransformFinished records the outcome of one transform call. mode is
// "sequential" or "parallel"; err decides the status label.
func (m *FingerprintMetrics) TransformFinished(fpType, mode string, items, chunks, skipped int, elapsed time.Duration, err error) {
	m.ActiveTransforms.WithLabelValues(fpType).Dec()
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TransformTotal.WithLabelValues(fpType, status).Inc()
	m.TransformDuration.WithLabelValues(fpType, mode).Observe(elapsed.Seconds())
	if err == nil {
		m.TransformItems.WithLabelValues(fpType).Add(float64(items))
		m.TransformChunks.WithLabelValues(fpType).Observe(float64(chunks))
		if skipped > 0 {
			m.SkippedRows.WithLabelValues(fpType).Add(float64(skipped))
		}
	}
}

// CacheHit records a row cache hit.
func (m *FingerprintMetrics) CacheHit(fpType string) { m.CacheHitsTotal.WithLabelValues(fpType).Inc() }

// CacheMiss records a row cache miss.
func (m *FingerprintMetrics) CacheMiss(fpType string) { m.CacheMissesTotal.WithLabelValues(fpType).Inc() }

// ObserveHTTP records one served request.
func (m *FingerprintMetrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
