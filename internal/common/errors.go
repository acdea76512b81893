package common

import (
	"errors"
	"net/http"
)

// Error codes shared across handler packages. They mirror the failure
// taxonomy the storefront surfaces to its frontend: missing service
// configuration, unreachable upstreams, upstream error statuses, and plain
// not-found/bad-request outcomes.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeConfigMissing = "CONFIG_MISSING"
	CodeUnreachable   = "UPSTREAM_UNREACHABLE"
	CodeUpstream      = "UPSTREAM_STATUS"
	CodeInternal      = "INTERNAL"
)

// AppError carries an error code and HTTP status alongside the message.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// WriteError renders err using the canonical envelope. AppErrors keep their
// code and status; anything else degrades to a 500 INTERNAL response.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = CodeBadRequest
		}
		JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	JSONError(w, http.StatusInternalServerError, CodeInternal, msg, nil)
}
