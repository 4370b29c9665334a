// Package config defines the configuration structures for molprint. Loading
// lives in loader.go and defaults in defaults.go.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/molprint/internal/benchmark"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/transform"
	apperrors "github.com/turtacn/molprint/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// TransformConfig holds the default per-call options used by the CLI and the
// HTTP API when a request does not override them.
type TransformConfig struct {
	// NJobs of 0 means unset (one worker). Negative values count back from
	// the number of CPUs.
	NJobs            int    `mapstructure:"n_jobs"`
	BatchSize        int    `mapstructure:"batch_size" validate:"gte=0"`
	Sparse           bool   `mapstructure:"sparse"`
	Verbose          int    `mapstructure:"verbose" validate:"gte=0"`
	ProgressEvery    int    `mapstructure:"progress_every" validate:"gte=0"`
	SuppressWarnings bool   `mapstructure:"suppress_warnings"`
	OnParseError     string `mapstructure:"on_parse_error" validate:"oneof=raise skip"`
	// MaxItems caps the number of molecules accepted by one API request.
	MaxItems int `mapstructure:"max_items" validate:"gte=1"`
}

// Options converts the section into transform options.
func (t TransformConfig) Options() transform.Options {
	o := transform.Options{
		BatchSize:        t.BatchSize,
		Sparse:           t.Sparse,
		Verbose:          t.Verbose,
		ProgressEvery:    t.ProgressEvery,
		SuppressWarnings: t.SuppressWarnings,
		OnParseError:     t.OnParseError,
	}
	if t.NJobs != 0 {
		o.NJobs = transform.Jobs(t.NJobs)
	}
	return o
}

// BenchmarkConfig holds harness defaults. Empty Cores means powers of two up
// to the CPU count.
type BenchmarkConfig struct {
	Splits  int   `mapstructure:"splits" validate:"gte=1"`
	Repeats int   `mapstructure:"repeats" validate:"gte=1"`
	Cores   []int `mapstructure:"cores" validate:"dive,gte=1"`
	Sparse  bool  `mapstructure:"sparse"`
}

// Harness converts the section into a benchmark config for a machine with
// cpu cores.
func (b BenchmarkConfig) Harness(cpu int) benchmark.Config {
	cfg := benchmark.DefaultConfig(cpu)
	cfg.Splits, cfg.Repeats, cfg.Sparse = b.Splits, b.Repeats, b.Sparse
	if len(b.Cores) > 0 {
		cfg.Cores = b.Cores
	}
	return cfg
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus parameters.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace" validate:"required_if=Enabled true"`
	Subsystem            string `mapstructure:"subsystem"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableRuntimeMetrics bool   `mapstructure:"enable_runtime_metrics"`
}

// CacheConfig holds the Redis row cache parameters.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"gte=0"`
	PoolSize     int           `mapstructure:"pool_size" validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// StorageConfig holds MinIO / S3-compatible artifact storage parameters.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket" validate:"required_if=Enabled true"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log       logging.LogConfig `mapstructure:"log"`
	Transform TransformConfig   `mapstructure:"transform"`
	Benchmark BenchmarkConfig   `mapstructure:"benchmark"`
	Server    ServerConfig      `mapstructure:"server"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Storage   StorageConfig     `mapstructure:"storage"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the fully populated Config and reports the first violation
// as a CFG_001 error whose detail names the dotted key, e.g.
// "server.port failed gte=1".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return c.Transform.Options().Validate()
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "invalid configuration")
	}
	fe := verrs[0]
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return apperrors.New(apperrors.ErrCodeConfiguration, "invalid configuration").
		WithDetail(fmt.Sprintf("%s failed %s (got %v)", key, rule, fe.Value()))
}
