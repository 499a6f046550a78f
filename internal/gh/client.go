package gh

import "context"

// Client defines the interface for GitHub REST and Git Data operations
type Client interface {
	// GetCurrentUser returns the authenticated user
	GetCurrentUser(ctx context.Context) (*User, error)

	// CreateFork forks a repository under the given owner (empty owner means
	// the authenticated user). A pre-existing fork is not an error.
	CreateFork(ctx context.Context, repo, owner string) error

	// CompareCommits returns the raw unified diff between two commits
	CompareCommits(ctx context.Context, repo, base, head string) (string, error)

	// CreateBlob uploads base64-encoded blob content and returns its SHA
	CreateBlob(ctx context.Context, repo, contentBase64 string) (string, error)

	// CreateTree creates a tree object from entries, optionally against a base tree
	CreateTree(ctx context.Context, repo, baseTree string, entries []TreeEntry) (string, error)

	// CreateCommit creates a commit object pointing at a tree
	CreateCommit(ctx context.Context, repo, message, tree string, parents []string) (string, error)

	// CreateRef creates a branch ref at the given SHA.
	// Returns ErrRefAlreadyExists when the ref is already present.
	CreateRef(ctx context.Context, repo, ref, sha string) error

	// UpdateRef moves a branch ref to the given SHA
	UpdateRef(ctx context.Context, repo, ref, sha string, force bool) error

	// ListPRs lists pull requests, optionally filtered by state and head
	// (head format: owner:branch)
	ListPRs(ctx context.Context, repo, state, head string) ([]PR, error)

	// CreatePR creates a new pull request
	CreatePR(ctx context.Context, repo string, req PRRequest) (*PR, error)

	// UpdatePR updates a pull request's mutable fields
	UpdatePR(ctx context.Context, repo string, number int, updates PRUpdate) (*PR, error)

	// AddLabels adds labels to a pull request (issue endpoint)
	AddLabels(ctx context.Context, repo string, number int, labels []string) error

	// AddAssignees adds assignees to a pull request (issue endpoint)
	AddAssignees(ctx context.Context, repo string, number int, assignees []string) error

	// RequestReviewers requests user and team reviews on a pull request
	RequestReviewers(ctx context.Context, repo string, number int, reviewers, teamReviewers []string) error
}
