package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// Common errors
var (
	ErrGitNotFound      = errors.New("git command not found in PATH")
	ErrGitTooOld        = errors.New("git version too old")
	ErrNotARepository   = errors.New("not a git repository")
	ErrRepositoryExists = errors.New("repository already exists")
	ErrNoChanges        = errors.New("no changes to commit")
	ErrGitCommand       = errors.New("git command failed")
)

// minGitVersion is the oldest git this client supports; git switch and
// --force-with-lease semantics require it.
var minGitVersion = semver.MustParse("2.23.0") //nolint:gochecknoglobals // Version constant

// gitClient implements the Client interface using git commands
type gitClient struct {
	logger    *logrus.Logger
	logConfig *logging.LogConfig
}

// NewClient creates a new Git client, verifying that a recent enough git
// binary is available. logConfig may be nil; --debug-git then has no effect.
func NewClient(ctx context.Context, logger *logrus.Logger, logConfig *logging.LogConfig) (Client, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrGitNotFound
	}

	if err := checkGitVersion(ctx); err != nil {
		return nil, err
	}

	return &gitClient{logger: logger, logConfig: logConfig}, nil
}

// debugGit reports whether --debug-git command tracing is enabled.
func (g *gitClient) debugGit() bool {
	return g.logConfig != nil && g.logConfig.Debug.Git
}

// checkGitVersion parses `git version` output and compares against the
// supported minimum.
func checkGitVersion(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "git", "version").Output()
	if err != nil {
		return fmt.Errorf("failed to get git version: %w", err)
	}

	// Output: "git version 2.43.0" (possibly with platform suffixes)
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 3 {
		return nil // unparseable, assume usable
	}

	raw := fields[2]
	if idx := strings.Index(raw, ".windows"); idx > 0 {
		raw = raw[:idx]
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil // unparseable, assume usable
	}

	if version.LessThan(minGitVersion) {
		return fmt.Errorf("%w: found %s, need at least %s", ErrGitTooOld, version, minGitVersion)
	}

	return nil
}

// Clone clones a repository to the specified path
func (g *gitClient) Clone(ctx context.Context, url, path, branch string, depth int) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrRepositoryExists, path)
	}

	args := []string{"clone"}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	if branch != "" {
		args = append(args, "--branch", branch, "--single-branch")
	}
	args = append(args, url, path)

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // Arguments are safely constructed
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	return nil
}

// ConfigureIdentity sets the committer name and email for the repository
func (g *gitClient) ConfigureIdentity(ctx context.Context, repoPath, name, email string) error {
	for key, value := range map[string]string{
		"user.name":  name,
		"user.email": email,
	} {
		cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "config", key, value) //nolint:gosec // Arguments are safely constructed
		if err := g.runCommand(cmd); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// CurrentBranch returns the name of the checked-out branch
func (g *gitClient) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	out, err := g.output(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return out, nil
}

// RevParse resolves a revision expression to an object id
func (g *gitClient) RevParse(ctx context.Context, repoPath, rev string) (string, error) {
	out, err := g.output(ctx, repoPath, "rev-parse", rev)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return out, nil
}

// CreateBranch creates a new branch from the current HEAD and switches to it
func (g *gitClient) CreateBranch(ctx context.Context, repoPath, branch string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "switch", "-c", branch) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// Switch checks out an existing branch
func (g *gitClient) Switch(ctx context.Context, repoPath, branch string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "switch", branch) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to switch to branch %s: %w", branch, err)
	}
	return nil
}

// SetRemoteBranches widens the remote's tracked branch set
func (g *gitClient) SetRemoteBranches(ctx context.Context, repoPath, remote, pattern string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "remote", "set-branches", remote, pattern) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to set remote branches: %w", err)
	}
	return nil
}

// Fetch fetches from the remote at the given depth
func (g *gitClient) Fetch(ctx context.Context, repoPath, remote string, depth int) error {
	args := []string{"-C", repoPath, "fetch", remote}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // Arguments are safely constructed
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	return nil
}

// HasRemoteBranch reports whether the remote has the named branch
func (g *gitClient) HasRemoteBranch(ctx context.Context, repoPath, remote, branch string) (bool, error) {
	out, err := g.output(ctx, repoPath, "branch", "-r", "--list", remote+"/"+branch)
	if err != nil {
		return false, fmt.Errorf("failed to list remote branches: %w", err)
	}
	return out != "", nil
}

// AddRemote registers an additional remote
func (g *gitClient) AddRemote(ctx context.Context, repoPath, name, url string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "remote", "add", name, url) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// Add force-stages a single path
func (g *gitClient) Add(ctx context.Context, repoPath, path string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "add", "-f", path) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to add %s: %w", path, err)
	}
	return nil
}

// Remove force-unstages and deletes a single path
func (g *gitClient) Remove(ctx context.Context, repoPath, path string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "rm", "-f", path) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Status returns porcelain status output
func (g *gitClient) Status(ctx context.Context, repoPath string) (string, error) {
	out, err := g.output(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	return out, nil
}

// Commit creates a commit with the given message
func (g *gitClient) Commit(ctx context.Context, repoPath, message string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "commit", "-m", message) //nolint:gosec // Arguments are safely constructed
	if err := g.runCommand(cmd); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "nothing to commit") ||
			strings.Contains(errStr, "no changes") ||
			strings.Contains(errStr, "working tree clean") ||
			strings.Contains(errStr, "nothing added to commit") {
			return ErrNoChanges
		}
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Diff returns the diff of the working tree against HEAD
func (g *gitClient) Diff(ctx context.Context, repoPath, pathspec string) (string, error) {
	args := []string{"-C", repoPath, "diff", "HEAD"}
	if pathspec != "" {
		args = append(args, "--", pathspec)
	}

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // Arguments are safely constructed
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get diff: %w", err)
	}
	return string(output), nil
}

// DiffTree returns the recursive tree diff between two tree objects
func (g *gitClient) DiffTree(ctx context.Context, repoPath, fromTree, toTree string) (string, error) {
	out, err := g.output(ctx, repoPath, "diff-tree", "-r", fromTree, toTree)
	if err != nil {
		return "", fmt.Errorf("failed to diff trees %s..%s: %w", fromTree, toTree, err)
	}
	return out, nil
}

// CatFile returns an object's raw content. Output is not trimmed: blob
// bytes are returned exactly as stored.
func (g *gitClient) CatFile(ctx context.Context, repoPath, object string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "cat-file", "-p", object) //nolint:gosec // Arguments are safely constructed
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", object, err)
	}
	return output, nil
}

// ListCommits returns commit ids after sinceSHA up to HEAD, oldest first
func (g *gitClient) ListCommits(ctx context.Context, repoPath, sinceSHA string) ([]string, error) {
	out, err := g.output(ctx, repoPath, "log", "--reverse", "--format=%H", sinceSHA+"..HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// CommitMessage returns the full message of a commit
func (g *gitClient) CommitMessage(ctx context.Context, repoPath, sha string) (string, error) {
	out, err := g.output(ctx, repoPath, "log", "-1", "--format=%B", sha)
	if err != nil {
		return "", fmt.Errorf("failed to get commit message for %s: %w", sha, err)
	}
	return out, nil
}

// Push pushes a branch to the remote
func (g *gitClient) Push(ctx context.Context, repoPath, remote, branch string, forceWithLease bool) error {
	args := []string{"-C", repoPath, "push", remote, branch}
	if forceWithLease {
		args = append(args, "--force-with-lease")
	}

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // Arguments are safely constructed
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := g.runCommand(cmd); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// output runs a git subcommand in the repository and returns trimmed stdout
func (g *gitClient) output(ctx context.Context, repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...) //nolint:gosec // Arguments are safely constructed

	if g.logger != nil && g.debugGit() {
		g.logger.WithField("command", strings.Join(cmd.Args, " ")).Debug("Executing git command")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", g.commandError(cmd, stderr.String(), stdout.String(), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// runCommand executes a command and logs the output
func (g *gitClient) runCommand(cmd *exec.Cmd) error {
	if g.logger != nil && (g.debugGit() || g.logger.IsLevelEnabled(logrus.DebugLevel)) {
		g.logger.WithField("command", strings.Join(cmd.Args, " ")).Debug("Executing git command")
	}

	var stderr, stdout bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err == nil {
		return nil
	}

	return g.commandError(cmd, stderr.String(), stdout.String(), err)
}

func (g *gitClient) commandError(cmd *exec.Cmd, errMsg, outMsg string, err error) error {
	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"command": strings.Join(cmd.Args, " "),
			"error":   errMsg,
			"output":  outMsg,
		}).Error("Git command failed")
	}

	if strings.Contains(errMsg, "not a git repository") {
		return ErrNotARepository
	}

	if errMsg != "" {
		return fmt.Errorf("%w: %s", ErrGitCommand, strings.TrimSpace(errMsg))
	}
	if outMsg != "" {
		return fmt.Errorf("%w: %s", ErrGitCommand, strings.TrimSpace(outMsg))
	}
	return err
}
