// Package errors_test covers AppError, the factory functions and the
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/molprint/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"unsupported type", errors.CodeFingerprintTypeUnsupported, "unknown fingerprint type ecfp"},
		{"invalid param", errors.CodeInvalidParam, "input file is empty"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeStorageError, "upload failed")
	assert.Equal(t, "[COMMON_014] upload failed", ae.Error())

	withDetail := ae.WithDetail("bucket=fps")
	assert.Equal(t, "[COMMON_014] upload failed: bucket=fps", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestNewf(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.CodeInvalidParam, "bad line %d", 7)
	assert.Equal(t, "bad line 7", ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "x"))
}

func TestWrap_PreservesCause(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	ae := errors.Wrap(root, errors.CodeCacheError, "redis get")

	require.NotNil(t, ae)
	assert.Same(t, root, ae.Cause)
	assert.True(t, stderrors.Is(ae, root))
}

func TestWrap_UnknownCodeInheritsInner(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeStorageError, "put object")
	outer := errors.Wrap(inner, errors.CodeUnknown, "export")
	assert.Equal(t, errors.CodeStorageError, outer.Code)
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithCause(stderrors.New("x")))
	assert.Nil(t, nilErr.WithDetail("x"))

	cause := stderrors.New("disk full")
	ae := errors.Internal("write npy").WithCause(cause)
	assert.ErrorIs(t, ae, cause)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestIsCode / TestGetCode
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_WalksChain(t *testing.T) {
	t.Parallel()

	inner := errors.NotFound("bucket missing")
	wrapped := fmt.Errorf("upload: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.CodeNotFound))
	assert.False(t, errors.IsCode(wrapped, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeNotFound))
}

func TestIsCode_TypedErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"configuration", errors.NewConfigurationError("layered", "fp_size", "an int in the range [1, inf)", 0), errors.CodeConfiguration},
		{"parse", &errors.MoleculeParseError{Index: 3, Raw: "C1CC", Cause: stderrors.New("unclosed ring")}, errors.CodeMoleculeParse},
		{"compute", &errors.FingerprintComputationError{Index: 5, Fingerprint: "morgan", Cause: stderrors.New("boom")}, errors.CodeFingerprintComputation},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("transform: %w", tc.err)
			assert.True(t, errors.IsCode(wrapped, tc.code))
			assert.Equal(t, tc.code, errors.GetCode(wrapped))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeInternal, errors.GetCode(errors.Internal("x")))
}
