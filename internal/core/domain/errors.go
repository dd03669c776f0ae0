// Package domain defines the core domain models for TokStore.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes have the form TS-{AREA}-{NNNN}; the numeric part mirrors the HTTP
// status family the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "TS-TOKN-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenInvalid is returned by confirmation when the token is absent or
	// the supplied secret does not verify. Both causes share this one value.
	ErrTokenInvalid = NewDomainError("TS-TOKN-4010", "invalid token")

	// ErrTokenNotFound is returned by a read-only fetch of an absent key.
	ErrTokenNotFound = NewDomainError("TS-TOKN-4040", "token not found")

	// ErrTokenValidation indicates the token failed structural validation.
	ErrTokenValidation = NewDomainError("TS-TOKN-4001", "token validation failed")
)

// ============================================================================
// Storage Errors (STOR)
// ============================================================================

var (
	// ErrSerialization indicates a stored value could not be encoded or parsed.
	ErrSerialization = NewDomainError("TS-STOR-5001", "token serialization failed")

	// ErrBackendClosed indicates an operation on a backend after quit.
	ErrBackendClosed = NewDomainError("TS-STOR-5030", "backend closed")
)

// ============================================================================
// Hasher Errors (HASH)
// ============================================================================

var (
	// ErrHashFailed indicates the secret hasher could not derive a key.
	ErrHashFailed = NewDomainError("TS-HASH-5000", "secret hashing failed")
)

// ============================================================================
// Configuration and Argument Errors
// ============================================================================

var (
	// ErrInvalidConfig indicates the configuration is not usable.
	ErrInvalidConfig = NewDomainError("TS-CONF-4000", "invalid configuration")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("TS-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("TS-SYS-4290", "too many requests")

	// ErrUnavailable indicates a dependency is not reachable.
	ErrUnavailable = NewDomainError("TS-SYS-5030", "service unavailable")

	// ErrInternal indicates an internal error.
	ErrInternal = NewDomainError("TS-SYS-5000", "internal server error")
)
