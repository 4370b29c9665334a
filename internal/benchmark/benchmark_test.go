package benchmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/transform"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

var dataset = []string{
	"CCO", "c1ccccc1", "CC(=O)O", "C1CCCCC1", "CCN(CC)CC",
	"c1ccncc1", "CC(C)Cc1ccc(cc1)C(C)C(=O)O", "ClC(Cl)Cl", "CC(=O)Nc1ccc(O)cc1", "O=C=O",
}

func TestDefaultCores(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1}, DefaultCores(1))
	assert.Equal(t, []int{1, 2}, DefaultCores(2))
	assert.Equal(t, []int{1, 2, 4, 6}, DefaultCores(6))
	assert.Equal(t, []int{1, 2, 4, 8}, DefaultCores(8))
	assert.Equal(t, []int{1}, DefaultCores(0))
}

func TestSizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{2, 4, 6, 8, 10}, Sizes(10, 5))
	assert.Equal(t, []int{3, 7, 10}, Sizes(10, 3))
	assert.Equal(t, []int{7}, Sizes(7, 1))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig(4).Validate())

	tests := map[string]struct {
		mutate func(*Config)
		param  string
	}{
		"zero splits":  {func(c *Config) { c.Splits = 0 }, "splits"},
		"zero repeats": {func(c *Config) { c.Repeats = 0 }, "repeats"},
		"no cores":     {func(c *Config) { c.Cores = nil }, "cores"},
		"bad core":     {func(c *Config) { c.Cores = []int{1, 0} }, "cores[1]"},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig(4)
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *errors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, []string{tt.param}, cfgErr.Params)
			assert.Equal(t, "benchmark", cfgErr.Owner)
		})
	}
}

func TestSequential_MatchesTransformer(t *testing.T) {
	t.Parallel()

	v, err := fingerprint.Build(fingerprint.AtomPair, fingerprint.Params{"count": true})
	require.NoError(t, err)
	items := molecule.FromStrings(dataset)

	seq, err := Sequential(v, items)
	require.NoError(t, err)

	tr, err := transform.NewFromVariant(v, transform.Options{NJobs: transform.Jobs(3)})
	require.NoError(t, err)
	res, err := tr.Transform(context.Background(), items)
	require.NoError(t, err)
	assert.True(t, matrix.Equal(seq, res.Matrix))
}

func TestSequential_ParseError(t *testing.T) {
	t.Parallel()

	v, err := fingerprint.Build(fingerprint.MACCS, nil)
	require.NoError(t, err)
	_, err = Sequential(v, []any{"CCO", "C1CC"})
	var perr *errors.MoleculeParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Index)
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	cfg := Config{Splits: 2, Repeats: 2, Cores: []int{2, 1, 2}, CountModes: []bool{false, true}}
	r, err := NewRunner(cfg, WithCPUCount(func() int { return 2 }))
	require.NoError(t, err)

	rep, err := r.Run(context.Background(), dataset, []Case{
		{Name: "maccs", Type: fingerprint.MACCS},
		{Name: "layered-short", Type: fingerprint.Layered, Params: fingerprint.Params{"max_path": 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, len(dataset), rep.Molecules)
	assert.Equal(t, []int{1, 2}, rep.Cores)
	// maccs runs in both count modes, layered has no count parameter.
	require.Len(t, rep.Cases, 3)
	assert.False(t, rep.Cases[0].Count)
	assert.True(t, rep.Cases[1].Count)
	assert.Equal(t, "layered-short", rep.Cases[2].Name)

	for _, c := range rep.Cases {
		assert.Equal(t, []int{5, 10}, c.Sizes)
		require.Len(t, c.Sequential, 2)
		for _, cores := range []int{1, 2} {
			timings := c.Parallel[cores]
			require.Len(t, timings, 2)
			for i, tm := range timings {
				assert.Equal(t, c.Sizes[i], tm.Size)
				assert.Equal(t, 2, tm.Runs)
				assert.GreaterOrEqual(t, tm.StdDev.Nanoseconds(), int64(0))
			}
			assert.Len(t, c.Speedup(cores), 2)
		}
		assert.Nil(t, c.Speedup(64))
	}
}

func TestRunner_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(Config{})
	var cfgErr *errors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	r, err := NewRunner(Config{Splits: 1, Repeats: 1, Cores: []int{1}, CountModes: []bool{false}})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetEmpty))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, dataset, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.Run(context.Background(), []string{"CCO", "C1CC"}, []Case{{Name: "morgan", Type: fingerprint.Morgan}})
	var perr *errors.MoleculeParseError
	require.ErrorAs(t, err, &perr)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBenchmarkFailed))
}
