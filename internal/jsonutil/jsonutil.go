// Package jsonutil provides type-safe JSON utilities with standardized error handling.
// This package consolidates JSON processing patterns used by the GitHub API client
// so callers get consistent error messages for marshal and unmarshal failures.
package jsonutil

import (
	"encoding/json"

	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
)

// MarshalJSON marshals any type to JSON with standardized error handling.
func MarshalJSON[T any](v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "marshal to JSON")
	}
	return data, nil
}

// UnmarshalJSON unmarshals JSON data to any type with standardized error handling.
func UnmarshalJSON[T any](data []byte) (T, error) {
	var result T
	err := json.Unmarshal(data, &result)
	if err != nil {
		return result, appErrors.WrapWithContext(err, "unmarshal JSON")
	}
	return result, nil
}

// PrettyPrint formats JSON for human-readable output with proper indentation.
func PrettyPrint(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", appErrors.WrapWithContext(err, "pretty print JSON")
	}
	return string(data), nil
}
