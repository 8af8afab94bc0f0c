// Package errors defines the service error taxonomy shared by all layers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Codes are stable and safe to expose
// to API clients.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeDecodeFailed      Code = "DECODE_FAILED"
	CodeStoreUnavailable  Code = "STORE_UNAVAILABLE"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeTimeout           Code = "TIMEOUT"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeInternal          Code = "INTERNAL"
)

// ServiceError is the canonical error type crossing package boundaries.
type ServiceError struct {
	Code    Code
	Message string
	Status  int
	Details map[string]any
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is reports whether target is a ServiceError with the same code, so that
// errors.Is(err, &ServiceError{Code: CodeNotFound}) and the typed helpers
// below both work across wrapping.
func (e *ServiceError) Is(target error) bool {
	var se *ServiceError
	if !errors.As(target, &se) {
		return false
	}
	return e.Code == se.Code
}

// WithDetails attaches a key/value pair for diagnostics and returns the
// receiver for chaining.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(code Code, status int, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Status: status, Err: cause}
}

// NotFound indicates the requested record does not exist.
func NotFound(what, id string) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound,
		fmt.Sprintf("%s %s not found", what, id), nil)
}

// DecodeFailed indicates stored bytes did not match the expected schema.
func DecodeFailed(schema string, cause error) *ServiceError {
	return newError(CodeDecodeFailed, http.StatusInternalServerError,
		fmt.Sprintf("decode %s record", schema), cause)
}

// StoreUnavailable indicates the underlying store command failed.
func StoreUnavailable(op string, cause error) *ServiceError {
	return newError(CodeStoreUnavailable, http.StatusInternalServerError,
		fmt.Sprintf("store %s failed", op), cause)
}

// InvalidArgument indicates a caller-supplied value violates a precondition.
func InvalidArgument(message string) *ServiceError {
	return newError(CodeInvalidArgument, http.StatusBadRequest, message, nil)
}

// InsufficientFunds indicates a balance cannot cover the requested amount.
// Callers must not retry with the same amount.
func InsufficientFunds(available, requested int64) *ServiceError {
	return newError(CodeInsufficientFunds, http.StatusBadRequest,
		fmt.Sprintf("insufficient coins: available %d, requested %d", available, requested), nil)
}

// Timeout indicates the retry budget was exhausted or the deadline passed
// before the operation could commit.
func Timeout(op string, cause error) *ServiceError {
	return newError(CodeTimeout, http.StatusServiceUnavailable,
		fmt.Sprintf("%s timed out", op), cause)
}

// RateLimitExceeded indicates the caller exceeded the request rate.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return newError(CodeRateLimited, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window), nil)
}

// Internal indicates an unexpected failure that should not leak details.
func Internal(message string, cause error) *ServiceError {
	return newError(CodeInternal, http.StatusInternalServerError, message, cause)
}

// GetServiceError extracts a ServiceError from err, or nil if none is in
// the chain.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	se := GetServiceError(err)
	return se != nil && se.Code == code
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsDecodeFailed reports whether err is a schema decode failure.
func IsDecodeFailed(err error) bool { return HasCode(err, CodeDecodeFailed) }

// IsTimeout reports whether err is a timeout failure.
func IsTimeout(err error) bool { return HasCode(err, CodeTimeout) }
