package transform

import (
	"github.com/turtacn/molprint/internal/params"
)

// Parse error policies.
const (
	OnParseErrorRaise = "raise"
	OnParseErrorSkip  = "skip"
)

// Options are the per-call knobs shared by every fingerprint type. The zero
// value is valid: one worker, no batch size, dense output, silent.
type Options struct {
	// NJobs is the worker count. nil means 1; a negative n means
	// cpu_count - |n| + 1, floored at 1. Zero is rejected.
	NJobs *int

	// BatchSize, when positive, caps the number of items per chunk.
	// Zero leaves chunking to the worker count.
	BatchSize int

	// Sparse selects CSR output instead of a dense matrix.
	Sparse bool

	// Verbose > 0 emits progress ticks.
	Verbose int

	// ProgressEvery is the tick granularity in items; zero means about a
	// tenth of the input.
	ProgressEvery int

	// SuppressWarnings drops non-fatal parser warnings instead of logging them.
	SuppressWarnings bool

	// OnParseError is OnParseErrorRaise (default when empty) or
	// OnParseErrorSkip.
	OnParseError string
}

// Jobs is a convenience for building Options.NJobs inline.
func Jobs(n int) *int { return &n }

var optionSchema = params.Schema{
	Owner: "transform",
	Fields: map[string][]params.Constraint{
		"n_jobs":            {params.IntAtMost(-1), params.IntAtLeast(1), params.Nullable{}},
		"batch_size":        {params.IntAtLeast(1), params.Nullable{}},
		"verbose":           {params.IntAtLeast(0)},
		"progress_every":    {params.IntAtLeast(1), params.Nullable{}},
		"on_parse_error":    {params.OneOf{Values: []string{OnParseErrorRaise, OnParseErrorSkip}}},
		"sparse":            {params.Boolean{}},
		"suppress_warnings": {params.Boolean{}},
	},
}

// OptionSchema exposes the option constraints for help output.
func OptionSchema() params.Schema { return optionSchema }

func (o Options) values() params.Values {
	v := params.Values{
		"n_jobs":            nil,
		"batch_size":        nil,
		"verbose":           o.Verbose,
		"progress_every":    nil,
		"on_parse_error":    o.parsePolicy(),
		"sparse":            o.Sparse,
		"suppress_warnings": o.SuppressWarnings,
	}
	if o.NJobs != nil {
		v["n_jobs"] = *o.NJobs
	}
	if o.BatchSize != 0 {
		v["batch_size"] = o.BatchSize
	}
	if o.ProgressEvery != 0 {
		v["progress_every"] = o.ProgressEvery
	}
	return v
}

// Validate checks the options, returning a *errors.ConfigurationError.
func (o Options) Validate() error {
	return optionSchema.Validate(o.values())
}

func (o Options) parsePolicy() string {
	if o.OnParseError == "" {
		return OnParseErrorRaise
	}
	return o.OnParseError
}

// EffectiveWorkers resolves an n_jobs value against the CPU count.
func EffectiveWorkers(nJobs *int, cpus int) int {
	if nJobs == nil {
		return 1
	}
	n := *nJobs
	if n < 0 {
		n = cpus + n + 1
	}
	if n < 1 {
		return 1
	}
	return n
}
