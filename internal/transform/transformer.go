// Package transform is the parallel batch-transform core: it validates
// options, partitions the input into contiguous chunks, computes each chunk
// on a bounded worker pool and reassembles the rows in input order as a
// dense or CSR matrix.
package transform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/pkg/matrix"
)

// Metrics receives transform outcomes. *prometheus.FingerprintMetrics
// implements it.
type Metrics interface {
	TransformStarted(fpType string)
	TransformFinished(fpType, mode string, items, chunks, skipped int, elapsed time.Duration, err error)
	CacheHit(fpType string)
	CacheMiss(fpType string)
}

type noopMetrics struct{}

func (noopMetrics) TransformStarted(string)                                                {}
func (noopMetrics) TransformFinished(string, string, int, int, int, time.Duration, error) {}
func (noopMetrics) CacheHit(string)                                                        {}
func (noopMetrics) CacheMiss(string)                                                       {}

// Result is the outcome of one Transform call.
type Result struct {
	// Matrix has one row per input item, in input order.
	Matrix matrix.Matrix
	// Skipped holds the indices of sentinel zero rows written under the
	// skip policy. Empty otherwise.
	Skipped *roaring.Bitmap
	RunID   string
	Elapsed time.Duration
	Workers int
	Chunks  int
}

// Transformer runs one fingerprint variant over batches of molecules. It is
// safe for concurrent use; each Transform call owns its worker pool.
type Transformer struct {
	variant *fingerprint.Variant

	mu   sync.RWMutex
	opts Options

	logger     logging.Logger
	metrics    Metrics
	cache      RowCache
	progressFn ProgressFunc
	cpuCount   func() int

	// compute replaces the variant routine in tests.
	compute fingerprint.ComputeFunc
	// workerStarted observes pool goroutines in tests.
	workerStarted func()
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(t *Transformer) {
		if m != nil {
			t.metrics = m
		}
	}
}

// WithCache enables the read-through row cache.
func WithCache(c RowCache) Option {
	return func(t *Transformer) { t.cache = c }
}

// WithProgress receives progress ticks when Options.Verbose > 0.
func WithProgress(fn ProgressFunc) Option {
	return func(t *Transformer) { t.progressFn = fn }
}

// WithCPUCount overrides runtime.NumCPU for negative n_jobs resolution.
func WithCPUCount(fn func() int) Option {
	return func(t *Transformer) {
		if fn != nil {
			t.cpuCount = fn
		}
	}
}

// New builds the variant for fpType and validates both parameter sets.
// Invalid parameters or options yield a *errors.ConfigurationError.
func New(fpType fingerprint.Type, p fingerprint.Params, opts Options, options ...Option) (*Transformer, error) {
	v, err := fingerprint.Build(fpType, p)
	if err != nil {
		return nil, err
	}
	return NewFromVariant(v, opts, options...)
}

// NewFromVariant wraps an already built variant.
func NewFromVariant(v *fingerprint.Variant, opts Options, options ...Option) (*Transformer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	t := &Transformer{
		variant:  v,
		opts:     opts,
		logger:   logging.NewNopLogger(),
		metrics:  noopMetrics{},
		cpuCount: runtime.NumCPU,
	}
	for _, o := range options {
		o(t)
	}
	t.logger = t.logger.Named("transform").With(logging.String("type", string(v.Type())))
	return t, nil
}

// Variant returns the fingerprint variant.
func (t *Transformer) Variant() *fingerprint.Variant { return t.variant }

// Options returns a copy of the current options.
func (t *Transformer) Options() Options {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.opts
}

// SetOptions replaces the options for subsequent calls. Validation happens
// at the next Transform.
func (t *Transformer) SetOptions(o Options) {
	t.mu.Lock()
	t.opts = o
	t.mu.Unlock()
}

// Fit exists for API symmetry with estimator pipelines: the transformer is
// stateless, so Fit only validates the options and returns the receiver.
func (t *Transformer) Fit(_ []any) (*Transformer, error) {
	if err := t.Options().Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FitTransform is Fit followed by Transform.
func (t *Transformer) FitTransform(ctx context.Context, items []any) (*Result, error) {
	if _, err := t.Fit(items); err != nil {
		return nil, err
	}
	return t.Transform(ctx, items)
}

// TransformSMILES is Transform over SMILES strings returning only the matrix.
func (t *Transformer) TransformSMILES(ctx context.Context, smiles []string) (matrix.Matrix, error) {
	res, err := t.Transform(ctx, molecule.FromStrings(smiles))
	if err != nil {
		return nil, err
	}
	return res.Matrix, nil
}

// Transform computes one row per item. Items are SMILES strings or
// *molecule.Mol handles. Options are validated before any work starts; on
// any failure no partial matrix is returned.
func (t *Transformer) Transform(ctx context.Context, items []any) (*Result, error) {
	opts := t.Options()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	workers := EffectiveWorkers(opts.NJobs, t.cpuCount())
	chunks := Split(items, Partition(len(items), workers, opts.BatchSize))
	workers = max(min(workers, len(chunks)), 1)
	mode := "parallel"
	if workers == 1 {
		mode = "sequential"
	}

	fpType := string(t.variant.Type())
	log := t.logger.With(logging.RunID(runID))
	log.Debug("transform started",
		logging.Int("items", len(items)),
		logging.Int("workers", workers),
		logging.Int("chunks", len(chunks)),
		logging.Bool("sparse", opts.Sparse))
	t.metrics.TransformStarted(fpType)

	k := &call{t: t, opts: opts, runID: runID}
	if opts.Verbose > 0 {
		k.progress = newProgress(runID, len(items), opts.ProgressEvery, log, t.progressFn)
	}

	var (
		m       matrix.Matrix
		skipped *roaring.Bitmap
		err     error
	)
	switch dt := t.variant.DType(); dt {
	case matrix.Uint8:
		m, skipped, err = assemble[uint8](ctx, k, chunks, workers)
	case matrix.Uint16:
		m, skipped, err = assemble[uint16](ctx, k, chunks, workers)
	case matrix.Uint32:
		m, skipped, err = assemble[uint32](ctx, k, chunks, workers)
	default:
		err = fmt.Errorf("transform: unsupported dtype %s", dt)
	}

	elapsed := time.Since(start)
	nSkipped := 0
	if skipped != nil {
		nSkipped = int(skipped.GetCardinality())
	}
	t.metrics.TransformFinished(fpType, mode, len(items), len(chunks), nSkipped, elapsed, err)
	if err != nil {
		return nil, err
	}
	log.Debug("transform finished",
		logging.Duration("elapsed", elapsed),
		logging.Int("skipped", nSkipped),
		logging.Int("nnz", m.NNZ()))

	return &Result{
		Matrix:  m,
		Skipped: skipped,
		RunID:   runID,
		Elapsed: elapsed,
		Workers: workers,
		Chunks:  len(chunks),
	}, nil
}

// computeRow runs the routine, converting a panic into an error so that one
// bad molecule cannot take down the process.
func (t *Transformer) computeRow(m *molecule.Mol) (row []uint32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("routine panicked: %v", r)
		}
	}()
	if t.compute != nil {
		return t.compute(m)
	}
	return t.variant.Compute(m)
}
