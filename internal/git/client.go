// Package git provides Git repository operations via the git CLI
package git

import "context"

// Client defines the interface for Git operations. All operations take the
// repository working directory as their first path argument.
type Client interface {
	// Clone clones a repository at the given depth. A non-empty branch
	// clones that branch only; depth 0 means a full clone.
	Clone(ctx context.Context, url, path, branch string, depth int) error

	// ConfigureIdentity sets the committer name and email for the repository
	ConfigureIdentity(ctx context.Context, repoPath, name, email string) error

	// CurrentBranch returns the name of the checked-out branch
	CurrentBranch(ctx context.Context, repoPath string) (string, error)

	// RevParse resolves a revision expression to an object id
	RevParse(ctx context.Context, repoPath, rev string) (string, error)

	// CreateBranch creates a new branch from the current HEAD and switches to it
	CreateBranch(ctx context.Context, repoPath, branch string) error

	// Switch checks out an existing branch
	Switch(ctx context.Context, repoPath, branch string) error

	// SetRemoteBranches widens the remote's tracked branch set (needed
	// before fetching branches excluded by a single-branch clone)
	SetRemoteBranches(ctx context.Context, repoPath, remote, pattern string) error

	// Fetch fetches from the remote at the given depth (0 = unlimited)
	Fetch(ctx context.Context, repoPath, remote string, depth int) error

	// HasRemoteBranch reports whether the remote has the named branch
	HasRemoteBranch(ctx context.Context, repoPath, remote, branch string) (bool, error)

	// AddRemote registers an additional remote
	AddRemote(ctx context.Context, repoPath, name, url string) error

	// Add force-stages a single path
	Add(ctx context.Context, repoPath, path string) error

	// Remove force-unstages and deletes a single path
	Remove(ctx context.Context, repoPath, path string) error

	// Status returns porcelain status output
	Status(ctx context.Context, repoPath string) (string, error)

	// Commit creates a commit with the given message
	Commit(ctx context.Context, repoPath, message string) error

	// Diff returns the diff of the working tree against HEAD, restricted to
	// pathspec when non-empty
	Diff(ctx context.Context, repoPath, pathspec string) (string, error)

	// DiffTree returns the recursive tree diff between two tree objects
	DiffTree(ctx context.Context, repoPath, fromTree, toTree string) (string, error)

	// CatFile returns an object's raw content (blob bytes, not trimmed)
	CatFile(ctx context.Context, repoPath, object string) ([]byte, error)

	// ListCommits returns commit ids after sinceSHA up to HEAD, oldest first
	ListCommits(ctx context.Context, repoPath, sinceSHA string) ([]string, error)

	// CommitMessage returns the full message of a commit
	CommitMessage(ctx context.Context, repoPath, sha string) (string, error)

	// Push pushes a branch to the remote, optionally with --force-with-lease
	Push(ctx context.Context, repoPath, remote, branch string, forceWithLease bool) error
}
