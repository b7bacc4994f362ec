// Package domainerrors defines the typed errors services return so transport
// layers can translate them to HTTP statuses without string matching.
package domainerrors

import "errors"

// Code classifies a domain failure.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"
)

// Error carries a machine-readable code plus a human description. The
// description is safe to return to clients except for internal errors.
type Error struct {
	Code        Code
	Description string
}

// New constructs a domain error with the given code and description.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Description
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// errors that did not originate in a domain service.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DescriptionOf returns the client-safe description for err. Internal errors
// yield an empty string so details never leak past the service boundary.
func DescriptionOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Description
	}
	return ""
}
