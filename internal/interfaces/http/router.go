// Package http assembles the molprint HTTP API: the gin route tree and the
// server that serves it.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molprint/internal/interfaces/http/handlers"
	"github.com/turtacn/molprint/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	FingerprintHandler *handlers.FingerprintHandler
	HealthHandler      *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	HTTPMetrics middleware.HTTPObserver
	MaxBodySize int64

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete HTTP route tree: probes and metrics at
// the root, the fingerprint API under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.Metrics(cfg.HTTPMetrics))
	}

	// --- Probes and metrics ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	// --- API v1 ---
	api := r.Group("/api/v1", middleware.BodyLimit(cfg.MaxBodySize))
	registerFingerprintRoutes(api, cfg.FingerprintHandler)

	return r
}

// registerFingerprintRoutes mounts the fingerprint endpoints under /fingerprints.
func registerFingerprintRoutes(r *gin.RouterGroup, h *handlers.FingerprintHandler) {
	if h == nil {
		return
	}
	fr := r.Group("/fingerprints")
	fr.POST("", h.Compute)
	fr.GET("/types", h.Types)
}
