// Package errors provides standardized error handling for the rating engine.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller-side input errors. Never retried.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Model gateway errors. Only the rate-limit and transient-network
	// classifications are eligible for retry.
	ErrCodeGatewayTimeout          ErrorCode = "GATEWAY_TIMEOUT"
	ErrCodeGatewayRateLimited      ErrorCode = "GATEWAY_RATE_LIMITED"
	ErrCodeGatewayAuthError        ErrorCode = "GATEWAY_AUTH_ERROR"
	ErrCodeGatewayUnavailable      ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrCodeGatewayTransientNetwork ErrorCode = "GATEWAY_TRANSIENT_NETWORK"
	ErrCodeResponsePayloadInvalid  ErrorCode = "RESPONSE_PAYLOAD_INVALID"

	// Cache layer errors. Callers treat these as a miss; they are kept
	// as typed errors for logging only.
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Code extraction for callers that only hold an error value.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayTimeoutError creates a non-retryable model call timeout error.
// Timeouts already consumed the full call budget, retrying would double it.
func NewGatewayTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayTimeout,
		Message:   "Model API call timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayRateLimitedError creates a retryable rate limit error.
func NewGatewayRateLimitedError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayRateLimited,
		Message:   "Model API rate limit exceeded",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayAuthError creates a non-retryable authentication error.
func NewGatewayAuthError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayAuthError,
		Message:   "Model API authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayUnavailableError creates a retryable service unavailable error.
func NewGatewayUnavailableError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayUnavailable,
		Message:   "Model API temporarily unavailable",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayTransientNetworkError creates a retryable network error.
func NewGatewayTransientNetworkError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayTransientNetwork,
		Message:   "Model API network error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponsePayloadError creates a non-retryable payload parse error.
// A malformed payload is a contract violation, not a network condition,
// so it must not be retried as one.
func NewResponsePayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponsePayloadInvalid,
		Message:   "Model response payload does not conform to schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a cache-layer error. Callers must treat
// it as a cache miss rather than propagate it.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache store unreachable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the bounded retry budget for an error code.
// The policy is a single table so call sites cannot drift apart.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeGatewayRateLimited,
		ErrCodeGatewayUnavailable,
		ErrCodeGatewayTransientNetwork:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "PAYLOAD"):
		return "PAYLOAD"
	case strings.Contains(codeStr, "GATEWAY"):
		return "GATEWAY"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
