package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// statuses is checked in order; the first sentinel found in the chain wins.
var statuses = []struct {
	sentinel error
	code     int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrBadRequest, http.StatusBadRequest},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrRateLimitExceeded, http.StatusTooManyRequests},
}

// AppError carries an explicit HTTP status alongside the wrapped sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(e.Code)
	}
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// MapErrorToStatus resolves err to an HTTP status. An AppError with a non-zero
// Code overrides the sentinel mapping; anything unrecognised is a 500.
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	for _, s := range statuses {
		if errors.Is(err, s.sentinel) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}
