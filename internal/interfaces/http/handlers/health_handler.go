package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molprint/pkg/types/common"
)

// HealthChecker is implemented by dependencies that can report their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler. Readiness probes every checker.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// Liveness handles GET /healthz. It never touches dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, common.HealthReport{
		Status:  common.HealthUp,
		Version: h.version,
		Uptime:  h.uptime(),
	})
}

// Readiness handles GET /readyz: 200 when every dependency answers, 503
// otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := common.HealthReport{
		Status:  common.HealthUp,
		Version: h.version,
		Uptime:  h.uptime(),
	}
	if len(h.checkers) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		report.Components = h.checkAll(ctx)
		for _, comp := range report.Components {
			if comp.Status != common.HealthUp {
				report.Status = common.HealthDown
				break
			}
		}
	}

	code := http.StatusOK
	if report.Status != common.HealthUp {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startAt).Truncate(time.Second).String()
}

// checkAll runs all health checkers concurrently.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]common.ComponentHealth {
	results := make(map[string]common.ComponentHealth, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := hc.Check(ctx)
			comp := common.ComponentHealth{
				Status:  common.HealthUp,
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				comp.Status = common.HealthDown
				comp.Message = err.Error()
			}

			mu.Lock()
			results[hc.Name()] = comp
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}
