// Command apiserver serves the molprint HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"

	"github.com/turtacn/molprint/internal/config"
	"github.com/turtacn/molprint/internal/infrastructure"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/molprint/internal/interfaces/http"
	"github.com/turtacn/molprint/internal/interfaces/http/handlers"
	"github.com/turtacn/molprint/internal/interfaces/http/middleware"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) (err error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := infrastructure.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(infra))

	var (
		collector   prometheus.MetricsCollector
		httpMetrics middleware.HTTPObserver
		fpOptions   = []handlers.FingerprintOption{handlers.WithRowCache(infra.Cache())}
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableRuntimeMetrics,
		}, logger)
		if err != nil {
			return err
		}
		fpMetrics := prometheus.NewFingerprintMetrics(collector)
		httpMetrics = fpMetrics
		fpOptions = append(fpOptions, handlers.WithTransformMetrics(fpMetrics))
	}
	if infra.Artifacts != nil {
		fpOptions = append(fpOptions, handlers.WithArtifacts(infra.Artifacts))
	}

	fpHandler := handlers.NewFingerprintHandler(cfg.Transform, logger.Named("api"), fpOptions...)
	healthHandler := handlers.NewHealthHandler(version, healthCheckers(infra)...)

	if configPath != "" {
		config.Watch(configPath, func(c *config.Config) {
			fpHandler.SetDefaults(c.Transform)
		}, func(err error) {
			logger.Warn("ignoring invalid configuration revision", logging.Err(err))
		})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		FingerprintHandler: fpHandler,
		HealthHandler:      healthHandler,
		Logging:            middleware.DefaultLoggingConfig(),
		HTTPMetrics:        httpMetrics,
		MaxBodySize:        cfg.Server.MaxBodySize,
		Logger:             logger,
		MetricsCollector:   collector,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	logger.Info("starting molprint API server",
		logging.String("version", version),
		logging.String("addr", server.Addr()),
		logging.Bool("cache", infra.Redis != nil),
		logging.Bool("storage", infra.MinIO != nil),
		logging.Bool("metrics", collector != nil))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	// The signal context is done; shutdown gets a fresh one bounded by the
	// configured timeout.
	return server.Stop(context.Background())
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
