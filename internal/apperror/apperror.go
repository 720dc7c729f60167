// Package apperror provides the typed error taxonomy shared by every gateway
// component, so the dispatcher and transport adapter can shape one error
// currency into both MCP tool-result envelopes and HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of failure.
type Code string

// Error codes matching the gateway's error taxonomy.
const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeBadRequest           Code = "BAD_REQUEST"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeConflict             Code = "CONFLICT"
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// Error is the gateway's single error currency between the Service Client
// Facade, the Tool Registry & Dispatcher, and the Transport Adapter.
type Error struct {
	Code       Code
	Message    string
	HTTPStatus int
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to reach the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// NotFound builds a not-found error for a named resource.
func NotFound(resource, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, id), HTTPStatus: http.StatusNotFound}
}

// BadRequest builds a bad-request error.
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Unauthorized builds an authentication-failure error.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden builds an authorization-failure error (identity mismatch,
// missing permission).
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// Conflict builds a conflict error.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// Validation builds a schema/input-validation error for a named field.
func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf("%s: %s", field, message), HTTPStatus: http.StatusBadRequest}
}

// ServiceUnavailable builds an error for a backing service that was not
// wired into the Service Client Facade.
func ServiceUnavailable(service string) *Error {
	return &Error{
		Code:       CodeServiceUnavailable,
		Message:    fmt.Sprintf("%s service is not available", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Internal wraps an unexpected underlying error.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Cause: cause}
}

// Wrap adds context to err, preserving its code/status if it is already an
// *Error, or classifying it as internal otherwise.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:       appErr.Code,
			Message:    fmt.Sprintf("%s: %s", message, appErr.Message),
			HTTPStatus: appErr.HTTPStatus,
			Cause:      err,
		}
	}
	return &Error{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Cause: err}
}

// HTTPStatus returns the HTTP status code associated with err, defaulting to
// 500 for errors that are not *Error.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == CodeNotFound
}

// IsServiceUnavailable reports whether err is (or wraps) a
// service-unavailable error.
func IsServiceUnavailable(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == CodeServiceUnavailable
}
