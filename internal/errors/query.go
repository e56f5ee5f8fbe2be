// Package errors provides error types for gridwatch.
// This file contains query, view, export, and history errors.
package errors

import (
	"fmt"
	"strings"
)

// Query-related error constructors.

// UnknownColumn creates an error for a column name the frame does not have.
func UnknownColumn(frame, column string, available []string) *GridError {
	suggestion := "Check the column name against the frame header."
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available columns: %s", strings.Join(available, ", "))
	}
	return &GridError{
		Kind:    ErrQuery,
		Message: fmt.Sprintf("unknown column %q in frame %s", column, frame),
		Details: map[string]string{
			"frame":  frame,
			"column": column,
		},
		Suggestion: suggestion,
	}
}

// BadRange creates an error for an unparseable date range bound.
func BadRange(value string, cause error) *GridError {
	return &GridError{
		Kind:    ErrQuery,
		Message: fmt.Sprintf("invalid date bound: %q", value),
		Cause:   cause,
		Suggestion: `Accepted formats:
  2006-01-02
  2006-01-02T15:04:05Z
  2006-01-02 15:04:05
  01/02/2006
  unix seconds`,
	}
}

// View-related error constructors.

// ViewNotFound creates an error when a saved view does not exist.
func ViewNotFound(id string) *GridError {
	return &GridError{
		Kind:    ErrView,
		Message: fmt.Sprintf("view not found: %s", id),
		Details: map[string]string{
			"view_id": id,
		},
		Suggestion: "List saved views with V inside the dashboard, or inspect .gridwatch/views.json.",
	}
}

// Export-related error constructors.

// ExportWriteError creates an error for a failed export write.
func ExportWriteError(path string, cause error) *GridError {
	return &GridError{
		Kind:    ErrExport,
		Message: fmt.Sprintf("failed to write export: %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: "Check that the destination directory exists and is writable.",
	}
}

// History-related error constructors.

// HistoryOpenError creates an error for a snapshot database that will not open.
func HistoryOpenError(path string, cause error) *GridError {
	return &GridError{
		Kind:    ErrHistory,
		Message: fmt.Sprintf("failed to open snapshot history: %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `The history database may be locked or corrupt.

  Check for another gridwatch process:
    pgrep gridwatch

  Start fresh (snapshots are lost):
    rm ` + path,
	}
}
