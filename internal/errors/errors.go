package errors

import (
	"errors"
	"fmt"
)

// RmkError is the structured error type for rmkgen.
// It provides rich context for error handling, logging, and user presentation.
type RmkError struct {
	// Code is the unique error code (e.g., "ERR_408_UNKNOWN_KEYCODE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs
	// (file, field, layer, position, token, address).
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *RmkError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RmkError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with RmkError.
func (e *RmkError) Is(target error) bool {
	if t, ok := target.(*RmkError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *RmkError) WithDetail(key, value string) *RmkError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *RmkError) WithSuggestion(suggestion string) *RmkError {
	e.Suggestion = suggestion
	return e
}

// Detail returns the detail value for key, or "".
func (e *RmkError) Detail(key string) string {
	return e.Details[key]
}

// IsDefect reports whether the error indicates a generator defect.
func (e *RmkError) IsDefect() bool {
	return IsDefectCode(e.Code)
}

// New creates a new RmkError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *RmkError {
	return &RmkError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Newf creates a new RmkError with a formatted message and no cause.
func Newf(code string, format string, args ...any) *RmkError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates an RmkError from an existing error.
// The error's message becomes the RmkError message.
func Wrap(code string, err error) *RmkError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// MalformedConfig creates an input-document structure error.
func MalformedConfig(file, field, message string) *RmkError {
	e := New(ErrCodeMalformedConfig, message, nil).WithDetail("file", file)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// ConfigError creates a generator configuration error.
func ConfigError(message string, cause error) *RmkError {
	return New(ErrCodeGeneratorConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *RmkError {
	return New(ErrCodeFileNotFound, message, cause)
}

// NetworkError creates a network-related error.
// Network errors are retryable.
func NetworkError(message string, cause error) *RmkError {
	return New(ErrCodeTemplateDownload, message, cause)
}

// EmissionError creates an error for an internal invariant violation
// detected while rendering output.
func EmissionError(message string) *RmkError {
	return New(ErrCodeEmission, message, nil).
		WithSuggestion("This is a bug in rmkgen, not in your configuration. Please report it with both input files.")
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *RmkError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is an RmkError with Retryable flag set.
func IsRetryable(err error) bool {
	var re *RmkError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var re *RmkError
	if errors.As(err, &re) {
		return re.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an RmkError.
// Returns empty string if not an RmkError.
func GetCode(err error) string {
	var re *RmkError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// GetCategory extracts the category from an RmkError.
// Returns empty string if not an RmkError.
func GetCategory(err error) Category {
	var re *RmkError
	if errors.As(err, &re) {
		return re.Category
	}
	return ""
}
