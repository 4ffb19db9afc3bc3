// Package apperr defines the stable error taxonomy shared by the service,
// HTTP, and scheduler layers. Every failure surfaced to a caller carries one
// of the codes below so clients can branch on a machine-readable kind.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code categorizes an application error.
type Code string

const (
	// CodeInvalidArgument marks a missing or non-numeric coordinate,
	// detected before any I/O. Never retried.
	CodeInvalidArgument Code = "invalid_argument"

	// CodeUpstreamFieldUnsupported marks a provider rejection of the
	// soil-moisture field. Handled internally via one fallback retry and
	// invisible to callers on success.
	CodeUpstreamFieldUnsupported Code = "upstream_field_unsupported"

	// CodeUpstreamUnavailable marks any other provider failure: network
	// errors, non-2xx responses, or malformed payloads.
	CodeUpstreamUnavailable Code = "upstream_unavailable"

	// CodeMalformedSeries marks an internal contract violation, such as
	// classifying a series without the mandatory rain field.
	CodeMalformedSeries Code = "malformed_series"

	// CodeInternal is the fallback for unexpected errors.
	CodeInternal Code = "internal_error"
)

// HTTPStatus maps a code to the status returned by the API layer.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUpstreamUnavailable, CodeUpstreamFieldUnsupported:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the application error type. It wraps an optional cause for
// errors.Is/errors.As support.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// New creates an Error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the Code from an error chain, or CodeInternal if the
// chain contains no *Error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
