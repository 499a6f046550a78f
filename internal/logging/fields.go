// Package logging provides logging configuration types and utilities.
package logging

// StandardFields defines the standardized field names for structured logging
// across all components to ensure consistency and enable better log analysis.
//
//nolint:gochecknoglobals // Intentional global constants for standardized field names
var StandardFields = struct {
	// Repository Identifiers
	SourceRepo string
	TargetRepo string
	RepoName   string

	// Timing and Performance
	DurationMs string
	Timestamp  string

	// Operation Context
	Component string
	Operation string

	// Resource Identifiers
	CommitSHA  string
	BranchName string
	PRNumber   string
	FilePath   string

	// Content and Size Metrics
	ContentSize string
	FileCount   string

	// Error Information
	Error string

	// Status and Progress
	Status string
}{
	SourceRepo: "source_repo",
	TargetRepo: "target_repo",
	RepoName:   "repo_name",

	DurationMs: "duration_ms",
	Timestamp:  "@timestamp",

	Component: "component",
	Operation: "operation",

	CommitSHA:  "commit_sha",
	BranchName: "branch_name",
	PRNumber:   "pr_number",
	FilePath:   "file_path",

	ContentSize: "content_size",
	FileCount:   "file_count",

	Error: "error",

	Status: "status",
}

// ComponentNames defines standardized component identifiers used with the
// component field across the codebase.
//
//nolint:gochecknoglobals // Intentional global constants for component names
var ComponentNames = struct {
	API         string
	Git         string
	Sync        string
	Transform   string
	Config      string
	Publisher   string
	PullRequest string
	CLI         string
}{
	API:         "github-api",
	Git:         "git",
	Sync:        "sync",
	Transform:   "transform",
	Config:      "config",
	Publisher:   "verified-commits",
	PullRequest: "pull-request",
	CLI:         "cli",
}

// OperationTypes defines standardized operation identifiers for the
// operation field.
//
//nolint:gochecknoglobals // Intentional global constants for operation names
var OperationTypes = struct {
	APIRequest string
	GitCommand string
	Render     string
}{
	APIRequest: "api_request",
	GitCommand: "git_command",
	Render:     "render",
}
