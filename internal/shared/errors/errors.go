package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
//
// The payment lifecycle distinguishes exactly one retryable class:
// ErrTransientStore. Everything else is either rejected at the edge
// (ErrUnauthenticated), absorbed as a benign no-op (ErrNotFound,
// ErrAlreadySettled at the webhook edge) or surfaced to the operator for a
// new user-initiated attempt (ErrGatewayRejected).
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrBadRequest      = errors.New("bad request")
	ErrConflict        = errors.New("resource conflict")
	ErrAlreadySettled  = errors.New("already settled")
	ErrGatewayRejected = errors.New("gateway rejected")
	ErrTransientStore  = errors.New("transient store error")
	ErrInternal        = errors.New("internal error")
)

// AppError represents an application error with HTTP status and error code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrorResponse represents the JSON error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// Unauthenticated creates an unauthenticated error. Used by the webhook edge
// when a signature or callback token cannot be verified.
func Unauthenticated(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Err:        ErrUnauthenticated,
	}
}

// BadRequest creates a bad request error.
func BadRequest(message string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        ErrBadRequest,
	}
}

// Conflict creates a conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
		Err:        ErrConflict,
	}
}

// GatewayRejected creates an error for a payment provider that refused an
// intent-creation call. Not auto-retried; a new user action is required.
func GatewayRejected(message string, err error) *AppError {
	if message == "" {
		message = "payment could not be started"
	}
	return &AppError{
		Code:       "GATEWAY_REJECTED",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        errors.Join(ErrGatewayRejected, err),
	}
}

// TransientStore creates the only retryable error class: the store was
// unavailable, callers should answer 5xx so the provider redelivers.
func TransientStore(err error) *AppError {
	return &AppError{
		Code:       "TRANSIENT_STORE_ERROR",
		Message:    "storage temporarily unavailable",
		StatusCode: http.StatusServiceUnavailable,
		Err:        errors.Join(ErrTransientStore, err),
	}
}

// Internal creates an internal error.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToResponse converts an AppError to ErrorResponse.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    e.Code,
			Message: e.Message,
		},
	}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadySettled):
		return http.StatusConflict
	case errors.Is(err, ErrGatewayRejected):
		return http.StatusBadGateway
	case errors.Is(err, ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
