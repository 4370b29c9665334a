package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/pkg/types/common"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                    { return s.name }
func (s stubChecker) Check(ctx context.Context) error { return s.err }

type blockingChecker struct{}

func (blockingChecker) Name() string { return "slow" }
func (blockingChecker) Check(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func serveHealth(t *testing.T, h *HealthHandler, path string) (int, common.HealthReport) {
	t.Helper()
	r := newTestEngine()
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)

	w := doJSON(t, r, http.MethodGet, path, nil)
	var report common.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return w.Code, report
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("v1.2.3", stubChecker{name: "cache", err: errors.New("down")})
	code, report := serveHealth(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, common.HealthUp, report.Status)
	assert.Equal(t, "v1.2.3", report.Version)
	assert.Empty(t, report.Components, "liveness never probes dependencies")
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		code     int
		status   common.HealthStatus
	}{
		{"no dependencies", nil, http.StatusOK, common.HealthUp},
		{"all up", []HealthChecker{stubChecker{name: "redis"}, stubChecker{name: "minio"}}, http.StatusOK, common.HealthUp},
		{"one down", []HealthChecker{stubChecker{name: "redis"}, stubChecker{name: "minio", err: errors.New("no route")}},
			http.StatusServiceUnavailable, common.HealthDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, report := serveHealth(t, NewHealthHandler("dev", tt.checkers...), "/readyz")
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, report.Status)
			assert.Len(t, report.Components, len(tt.checkers))
		})
	}
}

func TestHealthHandler_ReadinessReportsFailure(t *testing.T) {
	h := NewHealthHandler("dev", stubChecker{name: "minio", err: errors.New("no route")})
	_, report := serveHealth(t, h, "/readyz")
	require.Contains(t, report.Components, "minio")
	assert.Equal(t, common.HealthDown, report.Components["minio"].Status)
	assert.Equal(t, "no route", report.Components["minio"].Message)
}

func TestHealthHandler_ReadinessTimeout(t *testing.T) {
	h := NewHealthHandler("dev", blockingChecker{})
	h.timeout = 20 * time.Millisecond

	code, report := serveHealth(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Components["slow"].Message)
}
