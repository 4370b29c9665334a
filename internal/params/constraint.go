// Package params validates parameter maps against declarative constraint
// schemas. A parameter passes when it satisfies any one of its constraints;
// cross-parameter relations are checked after every field passed.
package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Constraint is a single admissible shape for a parameter value.
type Constraint interface {
	Check(v any) bool
	String() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Interval
// ─────────────────────────────────────────────────────────────────────────────

// Closed selects which interval bounds are inclusive.
type Closed int

const (
	ClosedBoth Closed = iota
	ClosedLeft
	ClosedRight
	ClosedNeither
)

// Integral values must convert to int without overflow.
const (
	minInt          = -(1 << 63)
	maxIntExclusive = 1 << 63
)

// Interval admits numbers between Min and Max. A nil bound is unbounded.
// Integral intervals reject non-integral values.
type Interval struct {
	Min, Max *float64
	Closed   Closed
	Integral bool
}

// Bound is a convenience for building interval bounds inline.
func Bound(v float64) *float64 { return &v }

// IntAtLeast admits integers >= min.
func IntAtLeast(min float64) Interval {
	return Interval{Min: Bound(min), Closed: ClosedBoth, Integral: true}
}

// IntBetween admits integers in [min, max].
func IntBetween(min, max float64) Interval {
	return Interval{Min: Bound(min), Max: Bound(max), Closed: ClosedBoth, Integral: true}
}

// IntAtMost admits integers <= max.
func IntAtMost(max float64) Interval {
	return Interval{Max: Bound(max), Closed: ClosedBoth, Integral: true}
}

func (c Interval) Check(v any) bool {
	f, ok := toNumber(v)
	if !ok {
		return false
	}
	if c.Integral && (f != math.Trunc(f) || f < minInt || f >= maxIntExclusive) {
		return false
	}
	leftIn := c.Closed == ClosedBoth || c.Closed == ClosedLeft
	rightIn := c.Closed == ClosedBoth || c.Closed == ClosedRight
	if c.Min != nil && (f < *c.Min || (!leftIn && f == *c.Min)) {
		return false
	}
	if c.Max != nil && (f > *c.Max || (!rightIn && f == *c.Max)) {
		return false
	}
	return true
}

func (c Interval) String() string {
	kind := "a float"
	if c.Integral {
		kind = "an int"
	}
	lb, rb := "(", ")"
	lo, hi := "-inf", "inf"
	if c.Min != nil {
		lo = formatNumber(*c.Min)
		if c.Closed == ClosedBoth || c.Closed == ClosedLeft {
			lb = "["
		}
	}
	if c.Max != nil {
		hi = formatNumber(*c.Max)
		if c.Closed == ClosedBoth || c.Closed == ClosedRight {
			rb = "]"
		}
	}
	return fmt.Sprintf("%s in the range %s%s, %s%s", kind, lb, lo, hi, rb)
}

// ─────────────────────────────────────────────────────────────────────────────
// OneOf / Boolean / Nullable
// ─────────────────────────────────────────────────────────────────────────────

// OneOf admits exactly the listed string values.
type OneOf struct {
	Values []string
}

func (c OneOf) Check(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, want := range c.Values {
		if s == want {
			return true
		}
	}
	return false
}

func (c OneOf) String() string {
	quoted := make([]string, len(c.Values))
	for i, v := range c.Values {
		quoted[i] = strconv.Quote(v)
	}
	return "a str among {" + strings.Join(quoted, ", ") + "}"
}

// Boolean admits bool values and strings strconv.ParseBool accepts.
type Boolean struct{}

func (Boolean) Check(v any) bool {
	switch b := v.(type) {
	case bool:
		return true
	case string:
		_, err := cast.ToBoolE(b)
		return err == nil
	default:
		return false
	}
}

func (Boolean) String() string { return "an instance of 'bool'" }

// Nullable admits nil.
type Nullable struct{}

func (Nullable) Check(v any) bool { return v == nil }
func (Nullable) String() string   { return "None" }

// ─────────────────────────────────────────────────────────────────────────────
// Relation
// ─────────────────────────────────────────────────────────────────────────────

// Op is a comparison used by Relation.
type Op string

const (
	GE Op = ">="
	GT Op = ">"
	LE Op = "<="
	LT Op = "<"
)

// Relation constrains two parameters against each other, e.g.
// max_path >= min_path. It is skipped when either side is nil.
type Relation struct {
	Left  string
	Op    Op
	Right string
}

// Holds reports whether the relation is satisfied by values.
func (r Relation) Holds(values map[string]any) bool {
	lv, rv := values[r.Left], values[r.Right]
	if lv == nil || rv == nil {
		return true
	}
	l, lok := toNumber(lv)
	rr, rok := toNumber(rv)
	if !lok || !rok {
		return false
	}
	switch r.Op {
	case GE:
		return l >= rr
	case GT:
		return l > rr
	case LE:
		return l <= rr
	case LT:
		return l < rr
	}
	return false
}

func (r Relation) String() string {
	return fmt.Sprintf("%s %s %s", r.Left, r.Op, r.Right)
}

// toNumber coerces ints, floats and numeric strings. Booleans are rejected
// even though cast would map them to 0/1.
func toNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
