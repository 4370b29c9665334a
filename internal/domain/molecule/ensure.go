package molecule

import (
	"fmt"

	"github.com/turtacn/molprint/pkg/errors"
)

// EnsureMol converts one input item into a molecule handle. Strings are
// parsed as SMILES and *Mol values pass through unchanged. index is the
// item's position in the caller's collection and is carried by the error.
func EnsureMol(index int, item any) (*Mol, error) {
	switch v := item.(type) {
	case *Mol:
		if v == nil {
			return nil, &errors.MoleculeParseError{
				Index: index,
				Raw:   "<nil>",
				Cause: errors.New(errors.ErrCodeMoleculeInvalidInput, "nil molecule"),
			}
		}
		return v, nil
	case string:
		m, err := ParseSMILES(v)
		if err != nil {
			return nil, &errors.MoleculeParseError{Index: index, Raw: v, Cause: err}
		}
		return m, nil
	default:
		return nil, &errors.MoleculeParseError{
			Index: index,
			Raw:   fmt.Sprintf("%v", item),
			Cause: errors.Newf(errors.ErrCodeMoleculeInvalidInput, "unsupported input type %T", item),
		}
	}
}

// EnsureMols converts a whole collection, stopping at the first failure.
func EnsureMols(items []any) ([]*Mol, error) {
	out := make([]*Mol, len(items))
	for i, it := range items {
		m, err := EnsureMol(i, it)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// FromStrings adapts a string slice to the []any input collection.
func FromStrings(smiles []string) []any {
	out := make([]any, len(smiles))
	for i, s := range smiles {
		out[i] = s
	}
	return out
}

// MustParse parses s and panics on error. Intended for tests and fixtures.
func MustParse(s string) *Mol {
	m, err := ParseSMILES(s)
	if err != nil {
		panic(err)
	}
	return m
}
