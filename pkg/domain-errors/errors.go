// Package dErrors defines the domain error taxonomy shared by services and
// the HTTP layer. Services wrap causes with a Code; handlers translate the
// Code to a status without inspecting the cause.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and callers.
type Code string

const (
	// CodeNotFound means the requested business key is unknown.
	CodeNotFound Code = "not_found"
	// CodeBadRequest means the caller supplied an invalid request.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidReference means a mandatory cross-record join found no
	// match. This is a data-integrity fault, not a retryable condition.
	CodeInvalidReference Code = "invalid_reference"
	// CodeUnavailable means the ledger store could not be reached.
	CodeUnavailable Code = "unavailable"
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-safe message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the status the HTTP layer should emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusBadGateway
	case CodeInvalidReference, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
