package apperror

import (
	"net/http"
)

// APIError structured error response
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"error"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// New API error without details
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// WithDetails copy of e carrying details
func (e *APIError) WithDetails(details any) *APIError {
	c := *e
	c.Details = details
	return &c
}

// WithMessage copy of e with a different message
func (e *APIError) WithMessage(msg string) *APIError {
	c := *e
	c.Message = msg
	return &c
}

var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict       = New(http.StatusConflict, "CONFLICT", "Operation already in progress")
	ErrRateLimited    = New(http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded. Try again later.")
	ErrModelNotReady  = New(http.StatusServiceUnavailable, "MODEL_NOT_READY", "Price model is not ready")
	ErrInternal       = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
)
