package fingerprint

import (
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

// ComputeFunc maps one molecule to a vector of exactly Size elements.
type ComputeFunc func(m *molecule.Mol) ([]uint32, error)

// Variant is a built fingerprint: tag, resolved parameters, output width,
// element range and compute function. It is read-only after Build.
type Variant struct {
	typ      Type
	params   Params
	size     int
	maxValue uint64
	count    bool
	compute  ComputeFunc
}

// Build validates p against the schema of t and returns the variant.
// Parameter errors are *errors.ConfigurationError.
func Build(t Type, p Params) (*Variant, error) {
	schema, err := SchemaFor(t)
	if err != nil {
		return nil, err
	}
	resolved, err := schema.Resolve(p)
	if err != nil {
		return nil, err
	}

	v := &Variant{typ: t, params: resolved}
	switch t {
	case Morgan:
		mp := MorganParams{
			FPSize:       resolved.Int("fp_size"),
			Radius:       resolved.Int("radius"),
			Count:        resolved.Bool("count"),
			UseChirality: resolved.Bool("use_chirality"),
		}
		v.size, v.count, v.compute = mp.FPSize, mp.Count, mp.Compute
	case MACCS:
		kp := MACCSParams{Count: resolved.Bool("count")}
		v.size, v.count, v.compute = MACCSSize, kp.Count, kp.Compute
	case Layered:
		lp := LayeredParams{
			FPSize:        resolved.Int("fp_size"),
			MinPath:       resolved.Int("min_path"),
			MaxPath:       resolved.Int("max_path"),
			BranchedPaths: resolved.Bool("branched_paths"),
		}
		v.size, v.compute = lp.FPSize, lp.Compute
	case AtomPair:
		ap := AtomPairParams{
			FPSize:      resolved.Int("fp_size"),
			MinDistance: resolved.Int("min_distance"),
			MaxDistance: resolved.Int("max_distance"),
			Count:       resolved.Bool("count"),
		}
		v.size, v.count, v.compute = ap.FPSize, ap.Count, ap.Compute
	}
	v.maxValue = maxValue(v.count)
	return v, nil
}

func (v *Variant) Type() Type { return v.typ }

// Params returns the resolved parameters including defaults.
func (v *Variant) Params() Params { return v.params }

// Size is the output width F.
func (v *Variant) Size() int { return v.size }

// Count reports whether the variant emits counts rather than bits.
func (v *Variant) Count() bool { return v.count }

// MaxValue is the largest value Compute may return in any element.
func (v *Variant) MaxValue() uint64 { return v.maxValue }

// DType is the smallest element type that holds MaxValue.
func (v *Variant) DType() matrix.DType { return matrix.DTypeFor(v.maxValue) }

// Compute runs the routine on m.
func (v *Variant) Compute(m *molecule.Mol) ([]uint32, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidInput, "nil molecule")
	}
	return v.compute(m)
}

// CacheKey identifies the variant's output space: equal keys imply equal
// vectors for equal molecules.
func (v *Variant) CacheKey() string {
	return string(v.typ) + "|" + v.params.Canonical()
}
