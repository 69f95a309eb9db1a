package errors

import "fmt"

// Detail keys attached by the constructors below.
const (
	DetailKey      = "key"
	DetailExpected = "expected"
	DetailPath     = "path"
)

// NewParseError reports a definitions document whose overall shape is wrong,
// or that is not valid YAML at all.
func NewParseError(message string, cause error) *Error {
	if cause == nil {
		return &Error{Type: ErrorTypeParse, Message: message, Stack: captureStack(2)}
	}
	return &Error{Type: ErrorTypeParse, Message: message, Cause: cause, Stack: captureStack(2)}
}

// NewShapeMismatch reports that key was expected to hold a value of shape
// expected (map, list or scalar) and held something else.
func NewShapeMismatch(key, expected string) *Error {
	e := &Error{
		Type:    ErrorTypeShapeMismatch,
		Message: fmt.Sprintf("field %q must be a %s", key, expected),
		Stack:   captureStack(2),
	}
	return e.WithDetail(DetailKey, key).WithDetail(DetailExpected, expected)
}

// NewExpectedKeyNotFound reports a missing required wrapper key.
func NewExpectedKeyNotFound(key string) *Error {
	e := &Error{
		Type:    ErrorTypeKeyNotFound,
		Message: fmt.Sprintf("expected key %q not found", key),
		Stack:   captureStack(2),
	}
	return e.WithDetail(DetailKey, key)
}

// NewFileNotFound reports a definitions file that does not exist.
func NewFileNotFound(path string, cause error) *Error {
	e := &Error{
		Type:    ErrorTypeFileNotFound,
		Message: fmt.Sprintf("definitions file %s not found", path),
		Cause:   cause,
		Stack:   captureStack(2),
	}
	return e.WithDetail(DetailPath, path)
}
