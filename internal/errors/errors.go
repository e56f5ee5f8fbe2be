// Package errors provides error types with actionable suggestions for the
// gridwatch application. Errors include contextual information to help users
// resolve issues quickly.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrWorkspace indicates a workspace detection or setup error.
	ErrWorkspace = errors.New("workspace error")
	// ErrSource indicates a data source load failure.
	ErrSource = errors.New("source error")
	// ErrFrame indicates a frame-level error.
	ErrFrame = errors.New("frame error")
	// ErrQuery indicates an invalid or failed query.
	ErrQuery = errors.New("query error")
	// ErrView indicates a saved-view error.
	ErrView = errors.New("view error")
	// ErrExport indicates an export failure.
	ErrExport = errors.New("export error")
	// ErrHistory indicates a snapshot history failure.
	ErrHistory = errors.New("history error")
	// ErrServer indicates an HTTP sharing server failure.
	ErrServer = errors.New("server error")
	// ErrNetwork indicates a network-related error.
	ErrNetwork = errors.New("network error")
	// ErrTimeout indicates a timeout occurred.
	ErrTimeout = errors.New("timeout error")
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")
)

// GridError is the base error type for gridwatch errors.
// It wraps an underlying error and provides additional context.
type GridError struct {
	// Kind is the category of error (e.g., ErrSource, ErrQuery).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// DocLink is a URL to relevant documentation.
	DocLink string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g., file path, column name).
	Details map[string]string
}

// Error implements the error interface.
func (e *GridError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *GridError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether any error in err's chain matches the target.
func (e *GridError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with suggestions and doc links.
func (e *GridError) Format() string {
	var sb strings.Builder

	// Main error message
	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	// Details
	if len(e.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		for k, v := range e.Details {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	// Suggestion
	if e.Suggestion != "" {
		sb.WriteString("\n💡 Suggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	// Documentation link
	if e.DocLink != "" {
		sb.WriteString("\n📚 Documentation: ")
		sb.WriteString(e.DocLink)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *GridError) WithDetails(key, value string) *GridError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause of the error.
func (e *GridError) WithCause(cause error) *GridError {
	e.Cause = cause
	return e
}

// New creates a new GridError with the given kind and message.
func New(kind error, message string) *GridError {
	return &GridError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind error, message string) *GridError {
	return &GridError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// WithSuggestion creates a new error with a suggestion.
func WithSuggestion(kind error, message, suggestion string) *GridError {
	return &GridError{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WithDoc creates a new error with documentation link.
func WithDoc(kind error, message, docLink string) *GridError {
	return &GridError{
		Kind:    kind,
		Message: message,
		DocLink: docLink,
	}
}
