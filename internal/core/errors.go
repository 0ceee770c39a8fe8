// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors. Missing data and unresolvable identities are absorbed by
	// the analytics layer; invariant violations are returned to the loader's caller.
	ErrMissingData          = &Error{Code: "MISSING_DATA", Message: "investor has no snapshots"}
	ErrUnresolvableIdentity = &Error{Code: "UNRESOLVABLE_IDENTITY", Message: "position identity could not be resolved"}
	ErrInvariantViolation   = &Error{Code: "INVARIANT_VIOLATION", Message: "snapshot data violates an invariant"}
	ErrLoadFailed           = &Error{Code: "LOAD_FAILED", Message: "loading snapshot data failed"}

	// Window errors
	ErrInvalidQuarter = &Error{Code: "INVALID_QUARTER", Message: "invalid quarter label"}
	ErrInvalidWindow  = &Error{Code: "INVALID_WINDOW", Message: "quarter window has no valid quarters"}

	// Request errors
	ErrInvalidParameter = &Error{Code: "INVALID_PARAMETER", Message: "invalid request parameter"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
