package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.  Codes
// follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodePayloadTooLarge    ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
	ErrCodeCanceled           ErrorCode = "COMMON_017"
)

// Configuration Error Codes
const (
	ErrCodeConfiguration ErrorCode = "CFG_001"
	ErrCodeConfigLoad    ErrorCode = "CFG_002"
)

// Molecule / Fingerprint Error Codes
const (
	ErrCodeMoleculeInvalidSMILES       ErrorCode = "MOL_001"
	ErrCodeMoleculeInvalidInput        ErrorCode = "MOL_003"
	ErrCodeMoleculeParsingFailed       ErrorCode = "MOL_006"
	ErrCodeFingerprintGenerationFailed ErrorCode = "MOL_007"
	ErrCodeFingerprintTypeUnsupported  ErrorCode = "MOL_008"
)

// Benchmark Error Codes
const (
	ErrCodeBenchmarkFailed ErrorCode = "BEN_001"
	ErrCodeDatasetEmpty    ErrorCode = "BEN_002"
)

// Short aliases used at call sites.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeCacheError   = ErrCodeCacheError
	CodeStorageError = ErrCodeStorageError
	CodeCanceled     = ErrCodeCanceled

	CodeConfiguration              = ErrCodeConfiguration
	CodeMoleculeParse              = ErrCodeMoleculeParsingFailed
	CodeFingerprintComputation     = ErrCodeFingerprintGenerationFailed
	CodeFingerprintTypeUnsupported = ErrCodeFingerprintTypeUnsupported
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeCanceled:           499,

	ErrCodeConfiguration: http.StatusBadRequest,
	ErrCodeConfigLoad:    http.StatusInternalServerError,

	ErrCodeMoleculeInvalidSMILES:       http.StatusBadRequest,
	ErrCodeMoleculeInvalidInput:        http.StatusBadRequest,
	ErrCodeMoleculeParsingFailed:       http.StatusBadRequest,
	ErrCodeFingerprintGenerationFailed: http.StatusUnprocessableEntity,
	ErrCodeFingerprintTypeUnsupported:  http.StatusBadRequest,

	ErrCodeBenchmarkFailed: http.StatusInternalServerError,
	ErrCodeDatasetEmpty:    http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodePayloadTooLarge:    "request body too large",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeCanceled:           "operation canceled",

	ErrCodeConfiguration: "invalid configuration",
	ErrCodeConfigLoad:    "failed to load configuration",

	ErrCodeMoleculeInvalidSMILES:       "invalid SMILES format",
	ErrCodeMoleculeInvalidInput:        "unsupported molecule input",
	ErrCodeMoleculeParsingFailed:       "failed to parse molecule",
	ErrCodeFingerprintGenerationFailed: "failed to generate fingerprint",
	ErrCodeFingerprintTypeUnsupported:  "unsupported fingerprint type",

	ErrCodeBenchmarkFailed: "benchmark failed",
	ErrCodeDatasetEmpty:    "dataset is empty",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
