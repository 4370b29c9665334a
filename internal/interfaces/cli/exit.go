package cli

import (
	"context"

	"github.com/turtacn/molprint/pkg/errors"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitParse    = 3
	ExitCompute  = 4
	ExitCanceled = 130
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitCanceled
	}
	// Typed batch errors win over the codes of layers that wrapped them.
	var (
		cfgErr     *errors.ConfigurationError
		parseErr   *errors.MoleculeParseError
		computeErr *errors.FingerprintComputationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitUsage
	case errors.As(err, &parseErr):
		return ExitParse
	case errors.As(err, &computeErr):
		return ExitCompute
	}
	switch errors.GetCode(err) {
	case errors.CodeCanceled, errors.ErrCodeTimeout:
		return ExitCanceled
	case errors.CodeConfiguration, errors.ErrCodeConfigLoad, errors.CodeInvalidParam,
		errors.CodeFingerprintTypeUnsupported, errors.ErrCodeDatasetEmpty:
		return ExitUsage
	case errors.CodeMoleculeParse, errors.ErrCodeMoleculeInvalidInput, errors.ErrCodeMoleculeInvalidSMILES:
		return ExitParse
	case errors.CodeFingerprintComputation:
		return ExitCompute
	}
	return ExitFailure
}
