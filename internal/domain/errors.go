package domain

import (
	"errors"
	"fmt"
)

// ValidationCode classifies a client-detected input problem.
type ValidationCode string

const (
	CodeInvalidDateRange ValidationCode = "INVALID_DATE_RANGE"
	CodeUnknownTicker    ValidationCode = "UNKNOWN_TICKER"
	CodeUnknownTemplate  ValidationCode = "UNKNOWN_TEMPLATE"
	CodeIndexOutOfRange  ValidationCode = "INDEX_OUT_OF_RANGE"
	CodeFutureDate       ValidationCode = "FUTURE_DATE"
	CodeInvalidDate      ValidationCode = "INVALID_DATE"
)

var (
	// ErrStaleResponse reports a response that was superseded by a newer request
	// and therefore discarded. It is not shown to users as a failure.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrNoAllocation is returned when a projection is requested before any
	// allocation exists.
	ErrNoAllocation = errors.New("no allocation available for projection")

	// ErrMalformedResponse matches every *MalformedResponseError via errors.Is.
	ErrMalformedResponse = errors.New("malformed response")
)

// ValidationError blocks the action that produced it. No network call is made.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

// NewValidationError creates a validation error.
func NewValidationError(code ValidationCode, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Code, e.Message)
}

// IsValidation reports whether err is a validation error with the given code.
// An empty code matches any validation error.
func IsValidation(err error, code ValidationCode) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return code == "" || ve.Code == code
}

// ServiceError is a non-2xx answer from the engine.
type ServiceError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.Status, e.Detail)
}

// NetworkError is a transport-level failure: connection refused, timeout,
// open circuit breaker or cancelled context.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response that violates its shape
// invariants. State must not be updated from it.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

// Malformed creates a MalformedResponseError.
func Malformed(endpoint, format string, args ...any) *MalformedResponseError {
	return &MalformedResponseError{Endpoint: endpoint, Reason: fmt.Sprintf(format, args...)}
}

func (e *MalformedResponseError) Error() string {
	if e.Endpoint == "" {
		return "malformed response: " + e.Reason
	}
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedResponse) match.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
