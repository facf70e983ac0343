package action

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindUnsupportedRoute
	KindBackend
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnsupportedRoute:
		return "UNSUPPORTED_ROUTE"
	case KindBackend:
		return "BACKEND_ERROR"
	default:
		return "UNEXPECTED_ERROR"
	}
}

// Error is the failure type carried from the router and strategies to the
// envelope formatter. Details holds an upstream failure's message.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Details    string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError returns a 400 error for a missing or empty parameter.
func NewValidationError(msg string) *Error {
	return &Error{
		Kind:       KindValidation,
		StatusCode: http.StatusBadRequest,
		Message:    msg,
	}
}

// NewUnsupportedRouteError returns the error for an apiPath with no strategy.
func NewUnsupportedRouteError(apiPath string) *Error {
	return &Error{
		Kind:       KindUnsupportedRoute,
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Unsupported API path: %s", apiPath),
	}
}

// NewBackendError wraps a collaborator failure. The cause's message becomes
// the details.
func NewBackendError(msg string, cause error) *Error {
	e := &Error{
		Kind:       KindBackend,
		StatusCode: http.StatusInternalServerError,
		Message:    msg,
		Cause:      cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewUnexpectedError wraps any failure that is not already an *Error.
func NewUnexpectedError(cause error) *Error {
	msg := "Internal error"
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	return &Error{
		Kind:       KindUnexpected,
		StatusCode: http.StatusInternalServerError,
		Message:    msg,
		Cause:      cause,
	}
}

// AsError returns err as an *Error, wrapping it as unexpected when it is not
// one. A nil err yields nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return NewUnexpectedError(err)
}
