// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer middleware
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindValidation indicates missing or invalid caller input.
	KindValidation
	// KindUnauthorized indicates authentication is required or failed on the
	// inbound surface.
	KindUnauthorized
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindAuth indicates the registry credential lookup or token exchange failed.
	KindAuth
	// KindReferenceResolution indicates mandatory reference data (responsible
	// attorney, practice area) could not be resolved.
	KindReferenceResolution
	// KindReconciliation indicates the registry rejected a contact create or update.
	KindReconciliation
	// KindRegistry indicates the registry rejected the matter creation call.
	KindRegistry
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
// Anything past input validation is reported as a generic failure: no
// fine-grained recovery is attempted once a registry call has failed.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth, KindReferenceResolution, KindReconciliation, KindRegistry, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Convenience constructors for common error types.

// Validation creates a validation error (caller mistake, never retried).
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Auth creates a credential/token-exchange failure error.
func Auth(message string) *Error {
	return New(KindAuth, message)
}

// ReferenceResolution creates an error for unresolvable mandatory reference data.
func ReferenceResolution(message string) *Error {
	return New(KindReferenceResolution, message)
}

// Reconciliation creates an error for a rejected contact create/update.
func Reconciliation(message string) *Error {
	return New(KindReconciliation, message)
}

// Registry creates an error for a rejected matter-creation call.
func Registry(message string) *Error {
	return New(KindRegistry, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
