// Governing: SPEC-0004 REQ "Guard Error Surface", ADR-0013
package authz

import "net/http"

// Code is the machine-readable kind of a guard failure.
type Code string

const (
	// CodeForbidden: the principal is known to the workspace but lacks
	// the specific permission, role, or ownership required.
	CodeForbidden Code = "FORBIDDEN"

	// CodeNotFound covers both "does not exist" and "you can't see it",
	// deliberately conflated so denials never leak resource existence.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is a typed guard failure. Message is stable and safe to show to
// end users verbatim; it carries no internal identifiers.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus maps the code for the transport layer.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// Forbidden constructs a FORBIDDEN error.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NotFound constructs a NOT_FOUND error.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}
