// Package testutil provides shared helpers for testify-based mocks.
package testutil

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

// ExtractStringResult extracts a string result from mock arguments for
// methods returning (string, error).
func ExtractStringResult(args mock.Arguments) (string, error) {
	if len(args) < 2 {
		if len(args) == 1 {
			if err, ok := args.Get(0).(error); ok {
				return "", err
			}
		}
		return "", fmt.Errorf("mock not properly configured: expected 2 return values, got %d", len(args)) //nolint:err113 // defensive error for test mock
	}

	return args.String(0), args.Error(1)
}

// HandleTwoValueReturn handles the common pattern for methods returning
// (result, error), with fallback handling for incorrectly configured mocks.
func HandleTwoValueReturn[T any](args mock.Arguments) (T, error) {
	var zero T

	if len(args) < 2 {
		if len(args) == 1 {
			if err, ok := args.Get(0).(error); ok {
				return zero, err
			}
		}
		return zero, fmt.Errorf("mock not properly configured: expected 2 return values, got %d", len(args)) //nolint:err113 // defensive error for test mock
	}

	if args.Get(0) == nil {
		return zero, args.Error(1)
	}

	result, ok := args.Get(0).(T)
	if !ok {
		return zero, fmt.Errorf("mock result is not of expected type") //nolint:err113 // defensive error for test mock
	}

	return result, args.Error(1)
}
