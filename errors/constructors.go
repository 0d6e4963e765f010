package errors

import (
	"fmt"
)

// NotFound creates an error for an identifier that does not resolve.
// kind is "item", "document" or "project".
func NotFound(kind, id string) *Error {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found: %s", kind, id)).
		WithDetail("kind", kind).
		WithDetail("id", id)
}

// ParseFailed creates an error for a file that is not a valid project file
func ParseFailed(path string, err error) *Error {
	return Wrap(err, ErrCodeParse, fmt.Sprintf("invalid project file: %s", path)).
		WithDetail("path", path)
}

// IOFailure creates an error for a failed read, write or delete
func IOFailure(op, path string, err error) *Error {
	return Wrap(err, ErrCodeIOFailure, fmt.Sprintf("%s failed: %s", op, path)).
		WithDetail("op", op).
		WithDetail("path", path)
}

// Invalid creates a validation error for malformed input
func Invalid(field, reason string) *Error {
	return New(ErrCodeValidation, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetail("field", field)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// Busy creates the error returned when a dispatch overlaps another one
func Busy(action string) *Error {
	return New(ErrCodeDispatchBusy, fmt.Sprintf("dispatch already in progress, rejected %s", action)).
		WithDetail("action", action)
}
