// Package errors provides error types for gridwatch.
// This file contains configuration and workspace errors.
package errors

import (
	"fmt"
	"strings"
)

// Configuration-related error constructors.

// ConfigNotFound creates an error for missing configuration.
func ConfigNotFound(configPath string) *GridError {
	return &GridError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("configuration file not found: %s", configPath),
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Initialize gridwatch in your workspace:

  Option 1: Scaffold config and demo data
    gridwatch init --demo

  Option 2: Scaffold config only
    gridwatch init

  Option 3: Create config manually
    mkdir -p .gridwatch
    touch .gridwatch/config.yaml`,
		DocLink: "https://github.com/gridwatch/gridwatch#configuration",
	}
}

// ConfigParseError creates an error for YAML parsing failures.
func ConfigParseError(configPath string, parseErr error) *GridError {
	return &GridError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("failed to parse configuration: %s", configPath),
		Cause:   parseErr,
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Check your config.yaml for syntax errors:
  1. Ensure proper YAML indentation (use spaces, not tabs)
  2. Check for missing colons or quotes
  3. Validate with: yamllint .gridwatch/config.yaml`,
	}
}

// ConfigValidationError creates an error for invalid configuration values.
func ConfigValidationError(field, message string, validOptions []string) *GridError {
	suggestion := fmt.Sprintf("Fix the %q field in .gridwatch/config.yaml", field)
	if len(validOptions) > 0 {
		suggestion += fmt.Sprintf("\n  Valid options: %s", strings.Join(validOptions, ", "))
	}

	return &GridError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("invalid configuration: %s", message),
		Details: map[string]string{
			"field": field,
		},
		Suggestion: suggestion,
	}
}

// Workspace-related error constructors.

// WorkspaceNotFound creates an error when a directory is not a gridwatch
// workspace.
func WorkspaceNotFound(dir string) *GridError {
	return &GridError{
		Kind:    ErrWorkspace,
		Message: fmt.Sprintf("no gridwatch workspace at %s", dir),
		Details: map[string]string{
			"directory": dir,
		},
		Suggestion: `A workspace needs a .gridwatch/ directory or at least one
data file (.csv, .tsv, .jsonl).

  Scaffold one here:
    gridwatch init --demo

  Or point gridwatch at an existing workspace:
    gridwatch --workspace /path/to/data`,
	}
}

// NoDataFiles creates an error when the data directory holds nothing loadable.
func NoDataFiles(dataDir string) *GridError {
	return &GridError{
		Kind:    ErrWorkspace,
		Message: "no loadable data files found",
		Details: map[string]string{
			"directory": dataDir,
		},
		Suggestion: `Add .csv, .tsv, or .jsonl files to the data directory, or
generate sample data:

  gridwatch demo`,
	}
}

// WorkspaceAlreadyInitialized creates an error when init finds an existing
// config file.
func WorkspaceAlreadyInitialized(dir string) *GridError {
	return &GridError{
		Kind:    ErrWorkspace,
		Message: fmt.Sprintf("workspace already initialized at %s", dir),
		Details: map[string]string{
			"directory": dir,
		},
		Suggestion: `A .gridwatch/config.yaml already exists here.

  Overwrite it with fresh defaults:
    gridwatch init --force`,
	}
}
