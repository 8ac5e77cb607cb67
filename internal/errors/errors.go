// Package errors provides a lightweight structured error type (GuideError)
// for category-based classification and exit-code mapping in the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a guide pipeline error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig ErrorCategory = "config"
	CategoryScan   ErrorCategory = "scan"

	// Build and processing errors
	CategoryIO        ErrorCategory = "io"
	CategorySynthesis ErrorCategory = "synthesis"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// GuideError is a structured error with category, severity, and context
type GuideError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for GuideError
type ContextFields map[string]any

// Error implements the error interface
func (e *GuideError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *GuideError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *GuideError) WithContext(key string, value any) *GuideError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new GuideError
func New(category ErrorCategory, severity ErrorSeverity, message string) *GuideError {
	return &GuideError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new GuideError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *GuideError {
	return &GuideError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category.
// The chain is traversed, so wrapped GuideErrors are found.
func IsCategory(err error, category ErrorCategory) bool {
	var ge *GuideError
	if stderrors.As(err, &ge) {
		return ge.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a GuideError
func GetCategory(err error) ErrorCategory {
	var ge *GuideError
	if stderrors.As(err, &ge) {
		return ge.Category
	}
	return CategoryInternal
}
