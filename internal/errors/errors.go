package errors

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeValidation    = "VALIDATION"
	CodeNotFound      = "NOT_FOUND"
	CodeUnavailable   = "UNAVAILABLE"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeStore         = "STORE_ERROR"
	CodeUnexpected    = "UNEXPECTED"
)

// RecallError is a structured error with a code and actionable suggestion.
type RecallError struct {
	Code       string // machine-readable code (e.g. VALIDATION)
	Message    string // human-readable description
	Suggestion string // actionable fix
	Err        error  // wrapped underlying error
}

// Error implements the error interface.
func (e *RecallError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *RecallError) Unwrap() error {
	return e.Err
}

// New creates a RecallError with the given code and message.
func New(code, message string) *RecallError {
	return &RecallError{Code: code, Message: message}
}

// Wrap creates a RecallError wrapping an existing error.
func Wrap(code, message string, err error) *RecallError {
	return &RecallError{Code: code, Message: message, Err: err}
}

// WithSuggestion returns a copy with the suggestion set.
func (e *RecallError) WithSuggestion(suggestion string) *RecallError {
	e.Suggestion = suggestion
	return e
}

// Is checks whether target matches this error's code.
func (e *RecallError) Is(target error) bool {
	var re *RecallError
	if errors.As(target, &re) {
		return e.Code == re.Code
	}
	return false
}

// AsCode extracts the RecallError code from an error, or "" if not a RecallError.
func AsCode(err error) string {
	var re *RecallError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Suggestion extracts the suggestion from an error, or "" if not a RecallError.
func Suggestion(err error) string {
	var re *RecallError
	if errors.As(err, &re) {
		return re.Suggestion
	}
	return ""
}

// IsValidation reports whether err carries the VALIDATION code.
func IsValidation(err error) bool { return AsCode(err) == CodeValidation }

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool { return AsCode(err) == CodeNotFound }

// IsUnavailable reports whether err carries the UNAVAILABLE code.
func IsUnavailable(err error) bool { return AsCode(err) == CodeUnavailable }
