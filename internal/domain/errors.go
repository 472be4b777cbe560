package domain

import "fmt"

// ValidationError reports an incomplete or invalid intake step. It is
// recovered locally: the step does not advance and the message is shown
// inline next to the offending field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// APIError is a typed error carrying the backend-provided message for a
// non-OK response. Retryable failures (transport errors, 503 while the model
// warms up) are retried before one of these ever reaches a caller.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is worth another attempt under the
// fixed retry budget. Only 503 qualifies: the backend answers 503 while the
// model is still loading.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 503
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}
