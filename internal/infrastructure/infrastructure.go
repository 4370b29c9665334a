// Package infrastructure opens the optional backing services named in the
// configuration (the Redis row cache and MinIO artifact storage) and closes
// them as one unit.
package infrastructure

import (
	"context"

	"go.uber.org/multierr"

	"github.com/turtacn/molprint/internal/config"
	"github.com/turtacn/molprint/internal/infrastructure/database/redis"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/infrastructure/storage/minio"
	"github.com/turtacn/molprint/internal/transform"
)

// Infrastructure holds the clients of the enabled services. Disabled
// services leave their fields nil.
type Infrastructure struct {
	Redis     *redis.Client
	RowCache  *redis.RowCache
	MinIO     *minio.Client
	Artifacts *minio.ArtifactStore
}

// Open connects every service enabled in cfg. On failure the services opened
// so far are closed again.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*Infrastructure, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	infra := &Infrastructure{}

	if cfg.Cache.Enabled {
		cli, err := redis.NewClient(ctx, redis.Config{
			Addr:         cfg.Cache.Addr,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			PoolSize:     cfg.Cache.PoolSize,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		infra.Redis = cli
		infra.RowCache = redis.NewRowCache(cli, log,
			redis.WithPrefix(cfg.Cache.KeyPrefix),
			redis.WithTTL(cfg.Cache.TTL),
		)
	}

	if cfg.Storage.Enabled {
		cli, err := minio.NewClient(ctx, minio.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			Prefix:    cfg.Storage.Prefix,
		}, log)
		if err != nil {
			return nil, multierr.Append(err, infra.Close())
		}
		infra.MinIO = cli
		infra.Artifacts = minio.NewArtifactStore(cli, log)
	}

	log.Debug("infrastructure opened",
		logging.Bool("cache", infra.Redis != nil),
		logging.Bool("storage", infra.MinIO != nil))
	return infra, nil
}

// Cache returns the row cache as a transform.RowCache, or nil when caching
// is disabled. The explicit nil keeps a nil *RowCache out of the interface.
func (i *Infrastructure) Cache() transform.RowCache {
	if i == nil || i.RowCache == nil {
		return nil
	}
	return i.RowCache
}

// Close releases every open client and returns the combined error.
func (i *Infrastructure) Close() error {
	if i == nil {
		return nil
	}
	var err error
	if i.MinIO != nil {
		err = multierr.Append(err, i.MinIO.Close())
	}
	if i.Redis != nil {
		err = multierr.Append(err, i.Redis.Close())
	}
	return err
}
