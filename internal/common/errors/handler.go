package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler writes standardized error responses for the HTTP surface.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// errorResponse is the wire shape for failed requests.
type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	Timestamp string `json:"timestamp"`
}

// WriteError normalizes err to a StandardError, logs it and writes the
// JSON error response with the mapped status code.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(r, stdErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Timestamp: stdErr.Timestamp.Format(time.RFC3339),
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an internal error code to an HTTP status code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeGatewayAuthError:
		return http.StatusBadGateway
	case ErrCodeGatewayRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeGatewayTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeGatewayUnavailable, ErrCodeGatewayTransientNetwork:
		return http.StatusServiceUnavailable
	case ErrCodeResponsePayloadInvalid:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	h.logger.Error("Request failed", map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
	})
}
