package main

import (
	"context"

	"github.com/turtacn/molprint/internal/infrastructure"
	"github.com/turtacn/molprint/internal/infrastructure/database/redis"
	"github.com/turtacn/molprint/internal/infrastructure/storage/minio"
	"github.com/turtacn/molprint/internal/interfaces/http/handlers"
)

// Adapters for HealthHandler
type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string {
	return "redis"
}

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type minioHealthAdapter struct {
	client *minio.Client
}

func (a *minioHealthAdapter) Name() string {
	return "minio"
}

func (a *minioHealthAdapter) Check(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}

// healthCheckers probes every enabled backing service.
func healthCheckers(infra *infrastructure.Infrastructure) []handlers.HealthChecker {
	var checkers []handlers.HealthChecker
	if infra.Redis != nil {
		checkers = append(checkers, &redisHealthAdapter{client: infra.Redis})
	}
	if infra.MinIO != nil {
		checkers = append(checkers, &minioHealthAdapter{client: infra.MinIO})
	}
	return checkers
}
