// Package config provides the sync configuration model: the source
// repository, target repositories, and the per-file sync rules applied to
// each target.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete sync configuration
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Defaults DefaultConfig  `yaml:"defaults,omitempty"`
	Targets  []TargetConfig `yaml:"targets"`
}

// SourceConfig defines the source repository settings
type SourceConfig struct {
	Repo   string `yaml:"repo"`             // Format: owner/repo
	Branch string `yaml:"branch,omitempty"` // Default: repository default branch
}

// DefaultConfig contains default settings applied to all targets
type DefaultConfig struct {
	// BranchPrefix is the sync branch prefix template. The literal token
	// SOURCE_REPO_NAME is substituted with the source repository's name.
	BranchPrefix string `yaml:"branch_prefix,omitempty"`

	// CommitPrefix starts every generated commit message.
	CommitPrefix string `yaml:"commit_prefix,omitempty"`

	// CommitBody is appended to commit messages after a blank line.
	CommitBody string `yaml:"commit_body,omitempty"`

	// OriginalMessage reuses the commit message as the PR title when set.
	OriginalMessage bool `yaml:"original_message,omitempty"`

	// CommitEachFile creates one commit per changed file instead of a
	// single combined commit.
	CommitEachFile *bool `yaml:"commit_each_file,omitempty"`

	// OverwriteExistingPR reuses the sync branch and updates the open PR
	// instead of creating a timestamped branch per run.
	OverwriteExistingPR *bool `yaml:"overwrite_existing_pr,omitempty"`

	// SkipPR pushes directly to the target branch without opening a PR.
	SkipPR bool `yaml:"skip_pr,omitempty"`

	// ForkOwner pushes the sync branch to a fork under this owner.
	ForkOwner string `yaml:"fork,omitempty"`

	PRTitle       string   `yaml:"pr_title,omitempty"`
	PRBody        string   `yaml:"pr_body,omitempty"`
	PRLabels      []string `yaml:"pr_labels,omitempty"`
	Assignees     []string `yaml:"assignees,omitempty"`
	Reviewers     []string `yaml:"reviewers,omitempty"`
	TeamReviewers []string `yaml:"team_reviewers,omitempty"`

	// GitEmail and GitUsername override the committer identity.
	GitEmail    string `yaml:"git_email,omitempty"`
	GitUsername string `yaml:"git_username,omitempty"`
}

// TargetConfig defines a target repository and its file sync rules
type TargetConfig struct {
	Repo   string     `yaml:"repo"`             // Format: owner/repo
	Branch string     `yaml:"branch,omitempty"` // Default: target default branch
	Files  []FileRule `yaml:"files"`
}

// FileRule governs exactly one materialization of source content into the
// target working tree. All recognized options are enumerated here and
// defaulted at load time; nothing is read ad hoc.
type FileRule struct {
	// Source path, relative to the source repository root. A trailing
	// separator or existing directory makes this a directory rule.
	Source string `yaml:"src"`

	// Dest path, relative to the target repository root. Defaults to Source.
	Dest string `yaml:"dest,omitempty"`

	// Template, when non-nil, renders every matched file through the
	// template engine with this context instead of copying bytes.
	Template map[string]string `yaml:"template,omitempty"`

	// Replace controls whether existing destination files are overwritten.
	// Defaults to true; false means "never clobber".
	Replace *bool `yaml:"replace,omitempty"`

	// Exclude lists source-relative paths to skip. A trailing slash form
	// excludes the whole directory.
	Exclude []string `yaml:"exclude,omitempty"`

	// ExcludeFilePatterns skips any path matching one of these glob patterns.
	ExcludeFilePatterns []string `yaml:"exclude_patterns,omitempty"`

	// IncludeFilePatterns, when non-empty, keeps only matching paths.
	// Exclusion patterns are evaluated first and win.
	IncludeFilePatterns []string `yaml:"include_patterns,omitempty"`

	// DeleteOrphaned removes destination files with no source counterpart
	// after a directory copy.
	DeleteOrphaned bool `yaml:"delete_orphaned,omitempty"`
}

// ShouldReplace reports whether existing destination files may be overwritten.
func (r *FileRule) ShouldReplace() bool {
	return r.Replace == nil || *r.Replace
}

// Repository identifies one resolved sync target.
//
// UniqueName disambiguates multiple rule groups that address the same
// repository and branch pair, so each gets its own working directory.
type Repository struct {
	User       string
	Name       string
	FullName   string
	UniqueName string
	Branch     string
}

// ParseRepository resolves an "owner/repo" string (optionally suffixed with
// "@branch") into a Repository descriptor.
func ParseRepository(spec string) (Repository, error) {
	branch := ""
	if at := strings.IndexByte(spec, '@'); at >= 0 {
		branch = spec[at+1:]
		spec = spec[:at]
	}

	parts := strings.Split(spec, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/repo", spec)
	}

	repo := Repository{
		User:     parts[0],
		Name:     parts[1],
		FullName: spec,
		Branch:   branch,
	}
	repo.UniqueName = repo.uniqueName()
	return repo, nil
}

func (r Repository) uniqueName() string {
	name := strings.ReplaceAll(r.FullName, "/", "-")
	if r.Branch != "" {
		name += "@" + r.Branch
	}
	return name
}
