// Package fingerprint implements the closed set of fingerprint variants a
// transformer can run. A Variant couples a validated parameter set with a
// pure compute function mapping one molecule to a vector of fixed length.
package fingerprint

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/turtacn/molprint/internal/params"
	"github.com/turtacn/molprint/pkg/errors"
)

// Type tags a fingerprint variant.
type Type string

const (
	Morgan   Type = "morgan"
	MACCS    Type = "maccs"
	Layered  Type = "layered"
	AtomPair Type = "atom_pair"
)

// Params carries caller-supplied fingerprint parameters.
type Params = params.Values

// MACCSSize is the fixed width of the MACCS keys vector; key 0 is unused.
const MACCSSize = 167

// Types lists every supported variant.
func Types() []Type {
	return []Type{Morgan, MACCS, Layered, AtomPair}
}

// ParseType maps a user-facing name to a Type. Matching ignores case and
// treats '-' as '_'.
func ParseType(s string) (Type, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "ecfp":
		norm = string(Morgan)
	case "atompair":
		norm = string(AtomPair)
	}
	if lo.Contains(Types(), Type(norm)) {
		return Type(norm), nil
	}
	return "", errors.Newf(errors.CodeFingerprintTypeUnsupported, "unknown fingerprint type %q", s).
		WithDetail("supported: " + strings.Join(lo.Map(Types(), func(t Type, _ int) string { return string(t) }), ", "))
}

// Upper bounds of the integer parameters. MaxSize keeps an N x fp_size
// matrix allocatable; MaxDepth bounds radii and path or pair distances.
const (
	MaxSize  = 1 << 24
	MaxDepth = 1024
)

var (
	width    = params.IntBetween(1, MaxSize)
	depth    = params.IntBetween(1, MaxDepth)
	depthMin = params.IntBetween(0, MaxDepth)
	boolean  = params.Boolean{}
)

// SchemaFor returns the parameter schema of t.
func SchemaFor(t Type) (params.Schema, error) {
	switch t {
	case Morgan:
		return params.Schema{
			Owner: string(t),
			Fields: map[string][]params.Constraint{
				"fp_size":       {width},
				"radius":        {depthMin},
				"count":         {boolean},
				"use_chirality": {boolean},
			},
			Defaults: Params{"fp_size": 2048, "radius": 2, "count": false, "use_chirality": false},
		}, nil
	case MACCS:
		return params.Schema{
			Owner:    string(t),
			Fields:   map[string][]params.Constraint{"count": {boolean}},
			Defaults: Params{"count": false},
		}, nil
	case Layered:
		return params.Schema{
			Owner: string(t),
			Fields: map[string][]params.Constraint{
				"fp_size":        {width},
				"min_path":       {depth},
				"max_path":       {depth},
				"branched_paths": {boolean},
			},
			Relations: []params.Relation{{Left: "max_path", Op: params.GE, Right: "min_path"}},
			Defaults:  Params{"fp_size": 2048, "min_path": 1, "max_path": 7, "branched_paths": true},
		}, nil
	case AtomPair:
		return params.Schema{
			Owner: string(t),
			Fields: map[string][]params.Constraint{
				"fp_size":      {width},
				"min_distance": {depthMin},
				"max_distance": {depth},
				"count":        {boolean},
			},
			Relations: []params.Relation{{Left: "max_distance", Op: params.GE, Right: "min_distance"}},
			Defaults:  Params{"fp_size": 2048, "min_distance": 1, "max_distance": 30, "count": false},
		}, nil
	}
	return params.Schema{}, errors.Newf(errors.CodeFingerprintTypeUnsupported, "unknown fingerprint type %q", string(t))
}

// maxValue is the largest element a variant emits: 1 for bit vectors and the
// full uint32 range for count vectors.
func maxValue(count bool) uint64 {
	if count {
		return math.MaxUint32
	}
	return 1
}
