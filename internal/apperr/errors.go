package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("resource already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)

// AppError carries a client-safe message alongside the underlying cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Validation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Err: ErrValidation}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

// StoreUnavailable wraps a connectivity failure so it still matches
// ErrStoreUnavailable while keeping the driver error in the chain.
func StoreUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func Internal(msg string, err error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Err: fmt.Errorf("%w: %w", ErrInternal, err)}
}

// HTTPStatus maps an error to the status code returned to clients. A store
// outage is a plain 500 on data endpoints; only /health reports 503.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return for err. Server errors never
// expose their cause.
func PublicMessage(err error) string {
	if errors.Is(err, ErrStoreUnavailable) {
		return "database unavailable"
	}
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "resource already exists"
	default:
		return "invalid input"
	}
}
