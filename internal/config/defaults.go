package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultOnParseError      = "raise"
	DefaultMaxItems          = 100000
	DefaultBenchmarkSplits   = 5
	DefaultBenchmarkRepeats  = 5
	DefaultServerPort        = 8080
	DefaultServerMode        = "release"
	DefaultMaxBodySize       = 32 << 20
	DefaultMetricsNamespace  = "molprint"
	DefaultRedisAddr         = "localhost:6379"
	DefaultCacheTTL          = 24 * time.Hour
	DefaultCacheKeyPrefix    = "molprint:fp:"
	DefaultMinIOEndpoint     = "localhost:9000"
	DefaultMinIOBucket       = "molprint-artifacts"
	DefaultServerTimeout     = 30 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
)

// setViperDefaults registers every key with viper so that MOLPRINT_* variables
// are picked up by Unmarshal even when no config file mentions the key.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})

	v.SetDefault("transform.n_jobs", 0)
	v.SetDefault("transform.batch_size", 0)
	v.SetDefault("transform.sparse", false)
	v.SetDefault("transform.verbose", 0)
	v.SetDefault("transform.progress_every", 0)
	v.SetDefault("transform.suppress_warnings", false)
	v.SetDefault("transform.on_parse_error", DefaultOnParseError)
	v.SetDefault("transform.max_items", DefaultMaxItems)

	v.SetDefault("benchmark.splits", DefaultBenchmarkSplits)
	v.SetDefault("benchmark.repeats", DefaultBenchmarkRepeats)
	v.SetDefault("benchmark.cores", []int{})
	v.SetDefault("benchmark.sparse", false)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.read_timeout", DefaultServerTimeout)
	v.SetDefault("server.write_timeout", DefaultServerTimeout)
	v.SetDefault("server.max_body_size", DefaultMaxBodySize)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.subsystem", "")
	v.SetDefault("metrics.enable_process_metrics", true)
	v.SetDefault("metrics.enable_runtime_metrics", true)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", DefaultRedisAddr)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.pool_size", 0)
	v.SetDefault("cache.dial_timeout", DefaultRedisDialTimeout)
	v.SetDefault("cache.read_timeout", DefaultRedisReadTimeout)
	v.SetDefault("cache.write_timeout", DefaultRedisWriteTimeout)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.key_prefix", DefaultCacheKeyPrefix)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", DefaultMinIOBucket)
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.prefix", "")
}

// ApplyDefaults fills zero-value fields in cfg. Explicit values win. It covers
// configs built in code; configs loaded through viper already carry the
// defaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Transform ─────────────────────────────────────────────────────────────
	if cfg.Transform.OnParseError == "" {
		cfg.Transform.OnParseError = DefaultOnParseError
	}
	if cfg.Transform.MaxItems == 0 {
		cfg.Transform.MaxItems = DefaultMaxItems
	}

	// ── Benchmark ─────────────────────────────────────────────────────────────
	if cfg.Benchmark.Splits == 0 {
		cfg.Benchmark.Splits = DefaultBenchmarkSplits
	}
	if cfg.Benchmark.Repeats == 0 {
		cfg.Benchmark.Repeats = DefaultBenchmarkRepeats
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultRedisAddr
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Cache.ReadTimeout == 0 {
		cfg.Cache.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Cache.WriteTimeout == 0 {
		cfg.Cache.WriteTimeout = DefaultRedisWriteTimeout
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultMinIOBucket
	}
}

// Default returns a Config populated entirely from defaults.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
