// Package errors provides a lightweight structured error type (DocWebError)
// for category-based classification of build failures and exit-code mapping in the CLI.
package errors

import (
	stdErrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of a docweb error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryJob        ErrorCategory = "job"
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// DocWebError is a structured error with category, retryability, and context
type DocWebError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for DocWebError
type ContextFields map[string]any

// Error implements the error interface. Context fields are appended in key
// order so user-visible messages always name the offending path or command.
func (e *DocWebError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s", e.Category, e.Severity, e.Message)
	if ctx := e.contextString(); ctx != "" {
		b.WriteString(" [")
		b.WriteString(ctx)
		b.WriteString("]")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *DocWebError) contextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	return strings.Join(parts, " ")
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DocWebError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DocWebError) WithContext(key string, value any) *DocWebError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DocWebError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DocWebError {
	return &DocWebError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new DocWebError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocWebError {
	return &DocWebError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable DocWebError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocWebError {
	return &DocWebError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// As returns the first DocWebError in err's chain.
func As(err error) (*DocWebError, bool) {
	var dwe *DocWebError
	if stdErrors.As(err, &dwe) {
		return dwe, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if dwe, ok := As(err); ok {
		return dwe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if dwe, ok := As(err); ok {
		return dwe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a DocWebError
func GetCategory(err error) ErrorCategory {
	if dwe, ok := As(err); ok {
		return dwe.Category
	}
	return CategoryInternal
}
