// Package errors provides error types for gridwatch.
// This file contains data source and frame errors.
package errors

import (
	"fmt"
)

// Source-related error constructors.

// SourceReadError creates an error for an unreadable data file.
func SourceReadError(path string, cause error) *GridError {
	return &GridError{
		Kind:    ErrSource,
		Message: fmt.Sprintf("failed to read source: %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `Check that the file exists and is readable:
  ls -l ` + path,
	}
}

// SourceParseError creates an error for a file that fails to decode.
// Line is 1-based; pass 0 when the failing line is unknown.
func SourceParseError(path string, line int, cause error) *GridError {
	err := &GridError{
		Kind:    ErrSource,
		Message: fmt.Sprintf("failed to parse source: %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `The previous version of this frame is still loaded.
Fix the file and gridwatch will pick it up on the next change.`,
	}
	if line > 0 {
		err.Details["line"] = fmt.Sprintf("%d", line)
	}
	return err
}

// UnknownFormat creates an error for a file extension no decoder claims.
func UnknownFormat(path, ext string, known []string) *GridError {
	err := &GridError{
		Kind:    ErrSource,
		Message: fmt.Sprintf("no decoder for %q files", ext),
		Details: map[string]string{
			"path": path,
		},
		Suggestion: "Rename the file to a supported extension or remove it from the data directory.",
	}
	if len(known) > 0 {
		err.Details["supported"] = fmt.Sprintf("%v", known)
	}
	return err
}

// Frame-related error constructors.

// FrameNotFound creates an error when a named frame is not loaded.
func FrameNotFound(name string) *GridError {
	return &GridError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("frame not found: %s", name),
		Details: map[string]string{
			"frame": name,
		},
		Suggestion: `Frame names are the source file names without extension,
lowercased: orders.csv loads as "orders". Check the workspace data
directory for the file.`,
	}
}

// DuplicateKey creates an error for a repeated primary key within a source.
func DuplicateKey(frame, key string) *GridError {
	return &GridError{
		Kind:    ErrFrame,
		Message: fmt.Sprintf("duplicate key %q in frame %s", key, frame),
		Details: map[string]string{
			"frame": frame,
			"key":   key,
		},
		Suggestion: "Each row needs a unique value in the key column. Deduplicate the source file.",
	}
}
