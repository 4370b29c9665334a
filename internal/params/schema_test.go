package params_test

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/params"
	"github.com/turtacn/molprint/pkg/errors"
)

func pathSchema() params.Schema {
	return params.Schema{
		Owner: "layered",
		Fields: map[string][]params.Constraint{
			"fp_size":        {params.IntAtLeast(1)},
			"min_path":       {params.IntAtLeast(1)},
			"max_path":       {params.IntAtLeast(1)},
			"branched_paths": {params.Boolean{}},
		},
		Relations: []params.Relation{{Left: "max_path", Op: params.GE, Right: "min_path"}},
		Defaults:  params.Values{"fp_size": 2048, "min_path": 1, "max_path": 7, "branched_paths": true},
	}
}

func TestInterval_Check(t *testing.T) {
	t.Parallel()

	pos := params.IntAtLeast(1)
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"int", 3, true},
		{"lower bound", 1, true},
		{"zero", 0, false},
		{"negative", -4, false},
		{"integral float", 2.0, true},
		{"fractional float", 2.5, false},
		{"numeric string", "12", true},
		{"bool", true, false},
		{"nil", nil, false},
		{"garbage", "abc", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pos.Check(tt.v))
		})
	}
}

func TestInterval_OpenBounds(t *testing.T) {
	t.Parallel()

	c := params.Interval{Min: params.Bound(0), Max: params.Bound(1), Closed: params.ClosedNeither}
	assert.False(t, c.Check(0))
	assert.True(t, c.Check(0.5))
	assert.False(t, c.Check(1))
	assert.Equal(t, "a float in the range (0, 1)", c.String())
	assert.Equal(t, "an int in the range [1, inf)", params.IntAtLeast(1).String())
	assert.Equal(t, "an int in the range (-inf, -1]", params.IntAtMost(-1).String())
}

func TestInterval_IntegralRange(t *testing.T) {
	t.Parallel()

	c := params.IntAtLeast(1)
	assert.True(t, c.Check(1<<40))
	assert.False(t, c.Check(1e20), "beyond the int range")
	assert.False(t, c.Check("1e20"))
	assert.False(t, c.Check(math.MaxFloat64))
	assert.False(t, params.IntAtMost(0).Check(-1e19))

	b := params.IntBetween(1, 1<<24)
	assert.True(t, b.Check(1<<24))
	assert.False(t, b.Check(1<<24+1))
	assert.False(t, b.Check(1<<50))
	assert.Equal(t, "an int in the range [1, 16777216]", b.String())
}

func TestOneOfAndBoolean(t *testing.T) {
	t.Parallel()

	o := params.OneOf{Values: []string{"raise", "skip"}}
	assert.True(t, o.Check("skip"))
	assert.False(t, o.Check("ignore"))
	assert.False(t, o.Check(1))
	assert.Equal(t, `a str among {"raise", "skip"}`, o.String())

	b := params.Boolean{}
	assert.True(t, b.Check(false))
	assert.True(t, b.Check("true"))
	assert.False(t, b.Check(1))
	assert.False(t, b.Check("maybe"))
}

func TestValidate_AnyConstraintPasses(t *testing.T) {
	t.Parallel()

	s := params.Schema{
		Owner: "transform",
		Fields: map[string][]params.Constraint{
			"n_jobs": {params.IntAtMost(-1), params.IntAtLeast(1), params.Nullable{}},
		},
	}
	for _, v := range []any{nil, -1, -8, 1, 16} {
		assert.NoError(t, s.Validate(params.Values{"n_jobs": v}), "%v", v)
	}

	err := s.Validate(params.Values{"n_jobs": 0})
	var ce *errors.ConfigurationError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, []string{"n_jobs"}, ce.Params)
	assert.Equal(t, []any{0}, ce.Values)
	assert.Contains(t, ce.Constraint, " or None")
}

func TestValidate_UnknownParameter(t *testing.T) {
	t.Parallel()

	err := pathSchema().Validate(params.Values{"radius": 2})
	var ce *errors.ConfigurationError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, []string{"radius"}, ce.Params)
	assert.Contains(t, ce.Constraint, "fp_size")
}

func TestValidate_Relation(t *testing.T) {
	t.Parallel()

	_, err := pathSchema().Resolve(params.Values{"min_path": 5, "max_path": 2})
	var ce *errors.ConfigurationError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, []string{"max_path", "min_path"}, ce.Params)
	assert.Equal(t, []any{2, 5}, ce.Values)
	assert.Equal(t, "max_path >= min_path", ce.Constraint)
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
}

func TestResolve_MergesDefaults(t *testing.T) {
	t.Parallel()

	in := params.Values{"fp_size": "1024"}
	got, err := pathSchema().Resolve(in)
	require.NoError(t, err)

	assert.Equal(t, 1024, got.Int("fp_size"))
	assert.Equal(t, 7, got.Int("max_path"))
	assert.True(t, got.Bool("branched_paths"))
	assert.Len(t, in, 1, "input must not be mutated")
}

func TestResolve_FieldErrorBeforeRelation(t *testing.T) {
	t.Parallel()

	_, err := pathSchema().Resolve(params.Values{"min_path": 0, "max_path": 0})
	var ce *errors.ConfigurationError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, []string{"max_path"}, ce.Params)
}

func TestCanonical_IgnoresSpelling(t *testing.T) {
	t.Parallel()

	a := params.Values{"fp_size": 1024, "branched_paths": true}
	b := params.Values{"branched_paths": "true", "fp_size": "1024"}
	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, "branched_paths=true,fp_size=1024", a.Canonical())
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	lines := pathSchema().Describe()
	require.Len(t, lines, 4)
	assert.Equal(t, "branched_paths: an instance of 'bool' (default true)", lines[0])
}
