// Package errors defines common error types and utilities used throughout the application
package errors

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Sync errors
	ErrNoRepositories = errors.New("no repositories configured")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrSyncFailed     = errors.New("sync operation failed")
	ErrSourceNotFound = errors.New("source file not found")

	// Test errors (only used in tests)
	ErrTest = errors.New("test error")
)

// Error template for static error definitions (satisfies err113 linter)
var errInvalidFormatTemplate = errors.New("invalid format")

// WrapWithContext wraps an error with operation context using consistent formatting.
// This replaces manual fmt.Errorf("failed to %s: %w", operation, err) patterns.
func WrapWithContext(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// FormatError creates a standardized format validation error.
func FormatError(field, value, expectedFormat string) error {
	return fmt.Errorf("%w: %s '%s': expected %s", errInvalidFormatTemplate, field, value, expectedFormat)
}
