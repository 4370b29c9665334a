package benchmark

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/transform"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

// Timing summarises the repeated runs at one dataset size.
type Timing struct {
	Size   int           `json:"size"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stddev"`
	Runs   int           `json:"runs"`
}

// CaseReport holds the timings of one case in one count mode.
type CaseReport struct {
	Name  string           `json:"name"`
	Type  fingerprint.Type `json:"type"`
	Count bool             `json:"count"`
	Sizes []int            `json:"sizes"`
	// Parallel maps n_jobs to one timing per size.
	Parallel map[int][]Timing `json:"parallel"`
	// Sequential is the naive parse-and-compute loop, one timing per size.
	Sequential []Timing `json:"sequential"`
}

// Speedup returns the sequential mean divided by the parallel mean at each
// size for the given core count, or nil if that core count was not run.
func (c CaseReport) Speedup(cores int) []float64 {
	par, ok := c.Parallel[cores]
	if !ok {
		return nil
	}
	out := make([]float64, len(par))
	for i, p := range par {
		if p.Mean > 0 {
			out[i] = float64(c.Sequential[i].Mean) / float64(p.Mean)
		}
	}
	return out
}

// Report is the outcome of Runner.Run.
type Report struct {
	Molecules int           `json:"molecules"`
	Cores     []int         `json:"cores"`
	Cases     []CaseReport  `json:"cases"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Runner executes benchmarks.
type Runner struct {
	cfg      Config
	logger   logging.Logger
	cpuCount func() int
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-case progress lines.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCPUCount overrides the CPU count handed to the transformers.
func WithCPUCount(fn func() int) Option {
	return func(r *Runner) {
		if fn != nil {
			r.cpuCount = fn
		}
	}
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:      cfg.normalized(),
		logger:   logging.NewNopLogger(),
		cpuCount: runtime.NumCPU,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.Named("benchmark")
	return r, nil
}

// Sizes returns the prefix lengths benchmarked for a dataset of n molecules.
func Sizes(n, splits int) []int {
	return lo.Map(lo.RangeFrom(1, splits), func(k, _ int) int { return n * k / splits })
}

// Run times every case over growing prefixes of smiles. It stops between
// runs when ctx is done.
func (r *Runner) Run(ctx context.Context, smiles []string, cases []Case) (*Report, error) {
	if len(smiles) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "no molecules to benchmark")
	}
	if len(cases) == 0 {
		cases = DefaultCases()
	}
	start := r.now()
	items := molecule.FromStrings(smiles)
	sizes := Sizes(len(items), r.cfg.Splits)

	report := &Report{Molecules: len(items), Cores: r.cfg.Cores}
	for _, c := range cases {
		modes := []bool{false}
		if c.hasCount() {
			modes = r.cfg.CountModes
		}
		for _, count := range modes {
			cr, err := r.runCase(ctx, c, count, items, sizes)
			if err != nil {
				return nil, err
			}
			report.Cases = append(report.Cases, *cr)
		}
	}
	report.Elapsed = r.now().Sub(start)
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, c Case, count bool, items []any, sizes []int) (*CaseReport, error) {
	p := fingerprint.Params{}
	for k, v := range c.Params {
		p[k] = v
	}
	if c.hasCount() {
		p["count"] = count
	}
	variant, err := fingerprint.Build(c.Type, p)
	if err != nil {
		return nil, err
	}

	cr := &CaseReport{
		Name:     c.Name,
		Type:     c.Type,
		Count:    count,
		Sizes:    sizes,
		Parallel: make(map[int][]Timing, len(r.cfg.Cores)),
	}
	log := r.logger.With(logging.String("case", c.Name), logging.Bool("count", count))

	for _, cores := range r.cfg.Cores {
		tr, err := transform.NewFromVariant(variant, transform.Options{
			NJobs:            transform.Jobs(cores),
			Sparse:           r.cfg.Sparse,
			SuppressWarnings: true,
		}, transform.WithCPUCount(r.cpuCount))
		if err != nil {
			return nil, err
		}
		log.Info("benchmarking batched transform", logging.Int("n_jobs", cores))
		timings, err := r.timeSizes(ctx, sizes, func(n int) error {
			_, err := tr.Transform(ctx, items[:n])
			return err
		})
		if err != nil {
			return nil, err
		}
		cr.Parallel[cores] = timings
	}

	log.Info("benchmarking sequential baseline")
	timings, err := r.timeSizes(ctx, sizes, func(n int) error {
		_, err := Sequential(variant, items[:n])
		return err
	})
	if err != nil {
		return nil, err
	}
	cr.Sequential = timings
	return cr, nil
}

func (r *Runner) timeSizes(ctx context.Context, sizes []int, run func(n int) error) ([]Timing, error) {
	out := make([]Timing, len(sizes))
	secs := make([]float64, r.cfg.Repeats)
	for i, n := range sizes {
		for rep := range secs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t0 := r.now()
			if err := run(n); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeBenchmarkFailed, "benchmark run failed")
			}
			secs[rep] = r.now().Sub(t0).Seconds()
		}
		mean, std := stat.MeanStdDev(secs, nil)
		if math.IsNaN(std) {
			std = 0
		}
		out[i] = Timing{Size: n, Mean: seconds(mean), StdDev: seconds(std), Runs: len(secs)}
	}
	return out, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Sequential is the naive baseline: parse and compute each item in turn and
// stack the rows into a dense uint32 matrix.
func Sequential(v *fingerprint.Variant, items []any) (*matrix.Dense[uint32], error) {
	out := matrix.NewDense[uint32](len(items), v.Size())
	for i, it := range items {
		m, err := molecule.EnsureMol(i, it)
		if err != nil {
			return nil, err
		}
		row, err := v.Compute(m)
		if err != nil {
			return nil, &errors.FingerprintComputationError{Index: i, Fingerprint: string(v.Type()), Cause: err}
		}
		copy(out.Row(i), row)
	}
	return out, nil
}
