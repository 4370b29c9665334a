package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/turtacn/molprint/pkg/errors"
)

// Values is a parameter map as supplied by callers or produced by Resolve.
type Values map[string]any

// Schema declares the parameters a component accepts.
type Schema struct {
	// Owner names the component in error messages.
	Owner     string
	Fields    map[string][]Constraint
	Relations []Relation
	Defaults  Values
}

// Names returns the declared parameter names in sorted order.
func (s Schema) Names() []string {
	names := lo.Keys(s.Fields)
	sort.Strings(names)
	return names
}

// Validate checks values against the schema. It never mutates values and
// returns the first violation as a *errors.ConfigurationError. Fields are
// checked in name order so the reported violation is deterministic.
func (s Schema) Validate(values Values) error {
	keys := lo.Keys(values)
	sort.Strings(keys)

	for _, k := range keys {
		cs, known := s.Fields[k]
		if !known {
			return errors.NewConfigurationError(s.Owner, k,
				"one of the known parameters {"+strings.Join(s.Names(), ", ")+"}", values[k])
		}
		v := values[k]
		if lo.SomeBy(cs, func(c Constraint) bool { return c.Check(v) }) {
			continue
		}
		return errors.NewConfigurationError(s.Owner, k, describe(cs), v)
	}

	for _, r := range s.Relations {
		if !r.Holds(values) {
			return &errors.ConfigurationError{
				Params:     []string{r.Left, r.Right},
				Constraint: r.String(),
				Values:     []any{values[r.Left], values[r.Right]},
				Owner:      s.Owner,
			}
		}
	}
	return nil
}

// Resolve overlays values on the schema defaults and validates the result.
func (s Schema) Resolve(values Values) (Values, error) {
	merged := make(Values, len(s.Defaults)+len(values))
	for k, v := range s.Defaults {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	if err := s.Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Describe renders the schema as "name: constraint" lines for help output.
func (s Schema) Describe() []string {
	return lo.Map(s.Names(), func(n string, _ int) string {
		line := fmt.Sprintf("%s: %s", n, describe(s.Fields[n]))
		if d, ok := s.Defaults[n]; ok {
			line += fmt.Sprintf(" (default %v)", d)
		}
		return line
	})
}

func describe(cs []Constraint) string {
	return strings.Join(lo.Map(cs, func(c Constraint, _ int) string { return c.String() }), " or ")
}

// ─────────────────────────────────────────────────────────────────────────────
// Typed accessors (use only on validated values)
// ─────────────────────────────────────────────────────────────────────────────

// Int returns values[key] as int. Numeric strings are read in base 10.
func (v Values) Int(key string) int {
	return int(cast.ToFloat64(v[key]))
}

// Bool returns values[key] as bool.
func (v Values) Bool(key string) bool {
	return cast.ToBool(v[key])
}

// String returns values[key] as string.
func (v Values) String(key string) string {
	return cast.ToString(v[key])
}

// Canonical renders values as "k=v" pairs in key order. Equal parameter sets
// always produce the same string regardless of how numbers were spelled.
func (v Values) Canonical() string {
	keys := lo.Keys(v)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		val := v[k]
		if f, ok := toNumber(val); ok {
			val = formatNumber(f)
		} else if _, isStr := val.(string); isStr {
			if b, err := cast.ToBoolE(val); err == nil {
				val = b
			}
		}
		parts[i] = fmt.Sprintf("%s=%v", k, val)
	}
	return strings.Join(parts, ",")
}
