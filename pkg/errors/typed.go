package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ─────────────────────────────────────────────────────────────────────────────
// Batch error taxonomy
//
// The three types below abort a transform call.  Each carries enough context
// (parameter names, item index) to diagnose the failure without re-running
// the batch.
// ─────────────────────────────────────────────────────────────────────────────

// ConfigurationError reports an illegal parameter combination.  It is always
// raised before any work is dispatched.
type ConfigurationError struct {
	// Params names the offending parameter(s).  Relational constraints name
	// both sides.
	Params []string

	// Constraint is a readable rendering of the violated rule, e.g.
	// "an int in the range [1, inf)" or "max_path >= min_path".
	Constraint string

	// Values holds the actual value(s), aligned with Params.
	Values []any

	// Owner is the component that declared the constraint (a fingerprint
	// type or "transform").
	Owner string
}

func (e *ConfigurationError) Error() string {
	pairs := make([]string, len(e.Params))
	for i, p := range e.Params {
		var v any
		if i < len(e.Values) {
			v = e.Values[i]
		}
		pairs[i] = fmt.Sprintf("%s=%v", p, v)
	}
	owner := ""
	if e.Owner != "" {
		owner = " of " + e.Owner
	}
	if len(e.Params) == 1 {
		return fmt.Sprintf("[%s] the %s parameter%s must be %s, got %v",
			ErrCodeConfiguration, e.Params[0], owner, e.Constraint, e.Values[0])
	}
	return fmt.Sprintf("[%s] parameters%s violate %s, got: %s",
		ErrCodeConfiguration, owner, e.Constraint, strings.Join(pairs, ", "))
}

// ErrorCode implements Coder.
func (e *ConfigurationError) ErrorCode() ErrorCode { return ErrCodeConfiguration }

// NewConfigurationError builds a single-parameter ConfigurationError.
func NewConfigurationError(owner, param, constraint string, value any) *ConfigurationError {
	return &ConfigurationError{
		Params:     []string{param},
		Constraint: constraint,
		Values:     []any{value},
		Owner:      owner,
	}
}

// MoleculeParseError reports an input item that could not be turned into a
// molecule handle.
type MoleculeParseError struct {
	Index int
	Raw   string
	Cause error
}

func (e *MoleculeParseError) Error() string {
	return fmt.Sprintf("[%s] cannot parse molecule at index %d (%q): %v",
		ErrCodeMoleculeParsingFailed, e.Index, truncate(e.Raw, 80), e.Cause)
}

// Unwrap returns the parser error.
func (e *MoleculeParseError) Unwrap() error { return e.Cause }

// ErrorCode implements Coder.
func (e *MoleculeParseError) ErrorCode() ErrorCode { return ErrCodeMoleculeParsingFailed }

// FingerprintComputationError reports a compute routine failure on an item
// that parsed successfully.  Such failures are deterministic and never retried.
type FingerprintComputationError struct {
	Index       int
	Fingerprint string
	Cause       error
}

func (e *FingerprintComputationError) Error() string {
	return fmt.Sprintf("[%s] %s fingerprint failed at index %d: %v",
		ErrCodeFingerprintGenerationFailed, e.Fingerprint, e.Index, e.Cause)
}

// Unwrap returns the routine error.
func (e *FingerprintComputationError) Unwrap() error { return e.Cause }

// ErrorCode implements Coder.
func (e *FingerprintComputationError) ErrorCode() ErrorCode {
	return ErrCodeFingerprintGenerationFailed
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
