// Package errors provides error types for gridwatch.
// This file contains network, server, and timeout-related errors.
package errors

import (
	"fmt"
	"time"
)

// Network-related error constructors.

// NetworkUnavailable creates an error for network connectivity issues.
func NetworkUnavailable(host string, cause error) *GridError {
	err := &GridError{
		Kind:    ErrNetwork,
		Message: "network unavailable",
		Cause:   cause,
		Suggestion: `Check your network connection:

  1. Verify internet connectivity
  2. Check if VPN or firewall is blocking access

If you're behind a proxy:
  export HTTP_PROXY=http://proxy:port
  export HTTPS_PROXY=http://proxy:port`,
	}
	if host != "" {
		err.Details = map[string]string{"host": host}
	}
	return err
}

// Server-related error constructors.

// AddrInUse creates an error for a listen address that is already taken.
func AddrInUse(addr string, cause error) *GridError {
	return &GridError{
		Kind:    ErrServer,
		Message: fmt.Sprintf("cannot listen on %s", addr),
		Cause:   cause,
		Details: map[string]string{
			"addr": addr,
		},
		Suggestion: `Another process is using this address.

  Find it:
    lsof -i :<port>

  Or pick a different port:
    gridwatch serve --addr :8091`,
	}
}

// Timeout-related error constructors.

// OperationTimeout creates a generic timeout error.
func OperationTimeout(operation string, elapsed time.Duration) *GridError {
	return &GridError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s timed out after %v", operation, elapsed.Round(time.Second)),
		Details: map[string]string{
			"operation": operation,
			"elapsed":   elapsed.Round(time.Second).String(),
		},
		Suggestion: "The operation took too long. Check if the system is overloaded or try again later.",
	}
}

// ContextCancelled creates an error for cancelled operations.
func ContextCancelled(operation string) *GridError {
	return &GridError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s was cancelled", operation),
		Details: map[string]string{
			"operation": operation,
		},
		Suggestion: `The operation was interrupted.

If you pressed Ctrl+C:
  • Loaded frames are in memory only; snapshots already taken are safe
  • Restart with: gridwatch

If this was unexpected:
  • Check system resources
  • Review logs for errors`,
	}
}

// Helper functions for error detection.

// IsRetryable returns true if the error is likely transient and retrying may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if ge, ok := err.(*GridError); ok {
		switch ge.Kind {
		case ErrNetwork, ErrTimeout:
			return true
		default:
			return false
		}
	}

	return false
}

// IsUserError returns true if the error is due to user misconfiguration.
func IsUserError(err error) bool {
	if ge, ok := err.(*GridError); ok {
		switch ge.Kind {
		case ErrConfig, ErrWorkspace, ErrQuery:
			return true
		default:
			return false
		}
	}
	return false
}
