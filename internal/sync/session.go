package sync

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/repo-file-sync/internal/config"
	"github.com/mrz1836/repo-file-sync/internal/diff"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/gh"
	"github.com/mrz1836/repo-file-sync/internal/git"
	"github.com/mrz1836/repo-file-sync/internal/logging"
)

const (
	originRemote = "origin"
	forkRemote   = "fork"

	cloneDepth = 1

	// Committer identity used with installation tokens when the config
	// provides no explicit override.
	botUsername = "github-actions[bot]"
	botEmail    = "41898282+github-actions[bot]@users.noreply.github.com"
)

// Session owns one target repository's local clone lifecycle: clone,
// identity setup, branch creation or reuse, staging, committing, diff and
// status queries, and push. All operations within a session are strictly
// ordered; each step's postcondition is the next step's precondition.
type Session struct {
	git       git.Client
	gh        gh.Client
	logger    *logrus.Logger
	logConfig *logging.LogConfig

	defaults   *config.DefaultConfig
	sourceRepo config.Repository
	opts       *Options

	repo       config.Repository
	workingDir string
	gitURL     string
	baseBranch string
	prBranch   string

	// lastCommitSHA tracks the newest commit already known to the remote.
	// It is recorded at clone, refreshed when a remote branch is reused,
	// and advanced per replayed commit during verified publishing.
	lastCommitSHA string

	// lastCommitChanges caches the parsed diff of lastCommitSHA against its
	// parent, computed lazily through the compare API.
	lastCommitChanges map[string]string
}

// NewSession creates a session for one resolved target repository.
func NewSession(
	gitClient git.Client,
	ghClient gh.Client,
	cfg *config.Config,
	sourceRepo config.Repository,
	repo config.Repository,
	opts *Options,
	logger *logrus.Logger,
	logConfig *logging.LogConfig,
) *Session {
	return &Session{
		git:        gitClient,
		gh:         ghClient,
		logger:     logger,
		logConfig:  logConfig,
		defaults:   &cfg.Defaults,
		sourceRepo: sourceRepo,
		opts:       opts,
		repo:       repo,
	}
}

// Repo returns the target repository descriptor.
func (s *Session) Repo() config.Repository { return s.repo }

// WorkingDir returns the local clone path. Empty before InitRepo.
func (s *Session) WorkingDir() string { return s.workingDir }

// BaseBranch returns the branch checked out by the clone.
func (s *Session) BaseBranch() string { return s.baseBranch }

// PRBranch returns the sync branch name. Empty until CreatePRBranch runs.
func (s *Session) PRBranch() string { return s.prBranch }

// LastCommitSHA returns the newest commit already present on the remote.
func (s *Session) LastCommitSHA() string { return s.lastCommitSHA }

// InitRepo resets per-repository state, clones the target at depth 1,
// configures the committer identity, and records the base branch and last
// commit. A configured fork is created idempotently and added as a second
// remote.
func (s *Session) InitRepo(ctx context.Context) error {
	s.prBranch = ""
	s.lastCommitSHA = ""
	s.lastCommitChanges = nil

	s.workingDir = filepath.Join(s.opts.WorkDir, s.repo.UniqueName)
	s.gitURL = credentialURL(s.repo.FullName, s.opts.Token)

	if err := os.RemoveAll(s.workingDir); err != nil {
		return appErrors.WrapWithContext(err, "clean working directory")
	}

	s.logEntry().WithField(logging.StandardFields.BranchName, s.repo.Branch).Info("Cloning target repository")

	if err := s.git.Clone(ctx, s.gitURL, s.workingDir, s.repo.Branch, cloneDepth); err != nil {
		return appErrors.WrapWithContext(err, "clone "+s.repo.FullName)
	}

	name, email, err := s.resolveIdentity(ctx)
	if err != nil {
		return err
	}
	if err := s.git.ConfigureIdentity(ctx, s.workingDir, name, email); err != nil {
		return appErrors.WrapWithContext(err, "configure committer identity")
	}

	if s.baseBranch, err = s.git.CurrentBranch(ctx, s.workingDir); err != nil {
		return err
	}
	if s.lastCommitSHA, err = s.git.RevParse(ctx, s.workingDir, "HEAD"); err != nil {
		return err
	}

	if s.defaults.ForkOwner != "" {
		if err := s.setupFork(ctx); err != nil {
			return err
		}
	}

	return nil
}

// resolveIdentity picks the committer name and email: explicit config wins;
// otherwise the authenticated user's profile, unless the credential is an
// installation token, which gets the bot identity.
func (s *Session) resolveIdentity(ctx context.Context) (string, string, error) {
	name := s.defaults.GitUsername
	email := s.defaults.GitEmail
	if name != "" && email != "" {
		return name, email, nil
	}

	if s.opts.IsInstallationToken() {
		if name == "" {
			name = botUsername
		}
		if email == "" {
			email = botEmail
		}
		return name, email, nil
	}

	user, err := s.gh.GetCurrentUser(ctx)
	if err != nil {
		return "", "", appErrors.WrapWithContext(err, "resolve committer identity")
	}
	if name == "" {
		name = user.Login
	}
	if email == "" {
		email = user.Email
		if email == "" {
			email = user.Login + "@users.noreply.github.com"
		}
	}
	return name, email, nil
}

func (s *Session) setupFork(ctx context.Context) error {
	if err := s.gh.CreateFork(ctx, s.repo.FullName, s.defaults.ForkOwner); err != nil {
		return appErrors.WrapWithContext(err, "create fork")
	}

	forkURL := credentialURL(s.defaults.ForkOwner+"/"+s.repo.Name, s.opts.Token)
	if err := s.git.AddRemote(ctx, s.workingDir, forkRemote, forkURL); err != nil {
		return appErrors.WrapWithContext(err, "add fork remote")
	}
	return nil
}

// CreatePRBranch computes the sync branch name and creates or reuses it.
// With overwrite disabled the name gets a unix timestamp suffix and a fresh
// branch is always created. With overwrite enabled (the default) the remote
// is fetched and an existing sync branch is reused, refreshing
// lastCommitSHA since the branch may carry a prior run's commits.
func (s *Session) CreatePRBranch(ctx context.Context) (string, error) {
	name := s.branchName()

	if s.defaults.OverwriteExistingPR != nil && !*s.defaults.OverwriteExistingPR {
		name = fmt.Sprintf("%s-%d", name, time.Now().Unix())
		if err := s.git.CreateBranch(ctx, s.workingDir, name); err != nil {
			return "", err
		}
		s.prBranch = name
		return name, nil
	}

	if err := s.git.SetRemoteBranches(ctx, s.workingDir, originRemote, "*"); err != nil {
		return "", err
	}
	if err := s.git.Fetch(ctx, s.workingDir, originRemote, cloneDepth); err != nil {
		return "", err
	}

	exists, err := s.git.HasRemoteBranch(ctx, s.workingDir, originRemote, name)
	if err != nil {
		return "", err
	}

	if exists {
		if err := s.git.Switch(ctx, s.workingDir, name); err != nil {
			return "", err
		}
		if s.lastCommitSHA, err = s.git.RevParse(ctx, s.workingDir, "HEAD"); err != nil {
			return "", err
		}
	} else if err := s.git.CreateBranch(ctx, s.workingDir, name); err != nil {
		return "", err
	}

	s.prBranch = name
	return name, nil
}

// branchName builds the sync branch name from the prefix template and the
// target branch, normalizing separators.
func (s *Session) branchName() string {
	prefix := strings.ReplaceAll(s.defaults.BranchPrefix, config.SourceRepoNameToken, s.sourceRepo.Name)

	target := s.repo.Branch
	if target == "" {
		target = s.baseBranch
	}

	name := prefix + "/" + target
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ReplaceAll(name, "/.", "/")
	return name
}

// Add force-stages a path.
func (s *Session) Add(ctx context.Context, path string) error {
	return s.git.Add(ctx, s.workingDir, path)
}

// Remove force-removes a path from the index and working tree.
func (s *Session) Remove(ctx context.Context, path string) error {
	return s.git.Remove(ctx, s.workingDir, path)
}

// HasChanges reports whether the working tree differs from HEAD.
func (s *Session) HasChanges(ctx context.Context) (bool, error) {
	status, err := s.git.Status(ctx, s.workingDir)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(status) != "", nil
}

// ChangedFiles lists working tree paths with modifications, one per
// porcelain status line.
func (s *Session) ChangedFiles(ctx context.Context) ([]string, error) {
	status, err := s.git.Status(ctx, s.workingDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(status, "\n") {
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		path = strings.Trim(path, `"`)
		if path != "" {
			files = append(files, path)
		}
	}
	return files, nil
}

// DefaultCommitMessage builds the standard sync commit message with the
// configured prefix and optional body.
func (s *Session) DefaultCommitMessage() string {
	msg := fmt.Sprintf("%s synced file(s) with %s", s.defaults.CommitPrefix, s.sourceRepo.FullName)
	if s.defaults.CommitBody != "" {
		msg += "\n\n" + s.defaults.CommitBody
	}
	return msg
}

// Commit creates a commit with the given message, falling back to the
// default sync message when empty.
func (s *Session) Commit(ctx context.Context, message string) error {
	if message == "" {
		message = s.DefaultCommitMessage()
	}
	return s.git.Commit(ctx, s.workingDir, message)
}

// Changes returns the per-file diffs of the working tree against HEAD,
// restricted to the given pathspec, in diff output order.
func (s *Session) Changes(ctx context.Context, pathspec string) ([]diff.FileDiff, error) {
	raw, err := s.git.Diff(ctx, s.workingDir, pathspec)
	if err != nil {
		return nil, err
	}
	return diff.ParseUnifiedDiff(raw), nil
}

// LastCommitChanges returns the diff map of the remote's last known commit
// against its parent, fetched through the compare API and cached.
func (s *Session) LastCommitChanges(ctx context.Context) (map[string]string, error) {
	if s.lastCommitChanges != nil {
		return s.lastCommitChanges, nil
	}

	raw, err := s.gh.CompareCommits(ctx, s.repo.FullName, s.lastCommitSHA+"^", s.lastCommitSHA)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "compare last commit")
	}

	s.lastCommitChanges = diff.DiffMap(raw)
	return s.lastCommitChanges, nil
}

// pushBranch is the branch the push targets: the sync branch, or the base
// branch when no sync branch was created (skip-PR mode).
func (s *Session) pushBranch() string {
	if s.prBranch != "" {
		return s.prBranch
	}
	return s.baseBranch
}

// Push publishes the local commits using one of three mutually exclusive
// strategies: the fork remote, verified commits via the Git Data API for
// installation tokens, or a force-with-lease push to origin.
func (s *Session) Push(ctx context.Context, publisher *VerifiedCommitPublisher) error {
	branch := s.pushBranch()
	entry := s.logEntry().WithField(logging.StandardFields.BranchName, branch)

	switch {
	case s.defaults.ForkOwner != "":
		entry.Info("Pushing to fork remote")
		return s.git.Push(ctx, s.workingDir, forkRemote, branch, true)
	case s.opts.IsInstallationToken():
		entry.Info("Publishing verified commits")
		return publisher.Publish(ctx, s)
	default:
		entry.Info("Pushing to origin")
		return s.git.Push(ctx, s.workingDir, originRemote, branch, true)
	}
}

// Cleanup removes the working directory unless cleanup is disabled.
func (s *Session) Cleanup() error {
	if s.opts.SkipCleanup || s.workingDir == "" {
		return nil
	}
	err := os.RemoveAll(s.workingDir)
	if err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return appErrors.WrapWithContext(err, "remove working directory")
	}
	return nil
}

func (s *Session) logEntry() *logrus.Entry {
	return logging.WithStandardFields(s.logger, s.logConfig, logging.ComponentNames.Sync).
		WithField(logging.StandardFields.TargetRepo, s.repo.FullName)
}

// credentialURL builds an HTTPS clone URL with the token embedded, or a
// plain URL when no token is configured.
func credentialURL(fullName, token string) string {
	if token == "" {
		return fmt.Sprintf("https://github.com/%s.git", fullName)
	}
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", token, fullName)
}
