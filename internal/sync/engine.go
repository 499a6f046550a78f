// Package sync implements the file synchronization engine: materializing
// file rules into target clones, committing and pushing the result, and
// managing the sync pull request per repository.
package sync

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/repo-file-sync/internal/ai"
	"github.com/mrz1836/repo-file-sync/internal/config"
	"github.com/mrz1836/repo-file-sync/internal/db"
	"github.com/mrz1836/repo-file-sync/internal/diff"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/gh"
	"github.com/mrz1836/repo-file-sync/internal/git"
	"github.com/mrz1836/repo-file-sync/internal/logging"
	"github.com/mrz1836/repo-file-sync/internal/transform"
)

// Engine runs one sync pass: for every resolved target repository it clones,
// materializes the file rules, commits, pushes, and manages the pull
// request. Repositories are processed with bounded parallelism; a failure
// aborts that repository only.
type Engine struct {
	cfg          *config.Config
	gitClient    git.Client
	ghClient     gh.Client
	materializer *Materializer
	publisher    *VerifiedCommitPublisher
	store        *db.Store
	generator    ai.Generator
	opts         *Options
	logger       *logrus.Logger
	logConfig    *logging.LogConfig

	sourceRepo config.Repository
}

// RepoResult is the outcome of syncing one target repository.
type RepoResult struct {
	Repo         config.Repository
	Status       string
	ChangedFiles []string
	CommitSHA    string
	PR           *gh.PR
	Preview      []diff.FileDiff
	Duration     time.Duration
	Err          error
}

// NewEngine wires a sync engine. store and generator may be nil.
func NewEngine(
	cfg *config.Config,
	gitClient git.Client,
	ghClient gh.Client,
	renderer transform.Renderer,
	store *db.Store,
	generator ai.Generator,
	opts *Options,
	logger *logrus.Logger,
	logConfig *logging.LogConfig,
) (*Engine, error) {
	opts.ApplyDefaults()

	sourceRepo, err := config.ParseRepository(cfg.Source.Repo)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:          cfg,
		gitClient:    gitClient,
		ghClient:     ghClient,
		materializer: NewMaterializer(renderer, logger, logConfig),
		publisher:    NewVerifiedCommitPublisher(gitClient, ghClient, logger, logConfig),
		store:        store,
		generator:    generator,
		opts:         opts,
		logger:       logger,
		logConfig:    logConfig,
		sourceRepo:   sourceRepo,
	}, nil
}

// Run syncs every configured target and returns per-repository results.
// The returned error is non-nil when any repository failed.
func (e *Engine) Run(ctx context.Context) ([]RepoResult, error) {
	repos, err := e.cfg.ResolveRepositories()
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, appErrors.ErrNoRepositories
	}

	results := make([]RepoResult, len(repos))

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)

	for i := range repos {
		i := i
		g.Go(func() error {
			results[i] = e.syncRepo(ctx, repos[i], &e.cfg.Targets[i])
			return nil
		})
	}
	_ = g.Wait()

	e.recordHistory(results)

	for _, result := range results {
		if result.Err != nil {
			return results, appErrors.ErrSyncFailed
		}
	}
	return results, nil
}

// syncRepo runs the ordered per-repository pipeline: clone, branch,
// materialize, detect, commit, push, PR.
func (e *Engine) syncRepo(ctx context.Context, repo config.Repository, target *config.TargetConfig) (result RepoResult) {
	start := time.Now()
	result = RepoResult{Repo: repo, Status: db.StatusSynced}
	entry := e.logEntry().WithField(logging.StandardFields.TargetRepo, repo.FullName)

	session := NewSession(e.gitClient, e.ghClient, e.cfg, e.sourceRepo, repo, e.opts, e.logger, e.logConfig)
	defer func() {
		if err := session.Cleanup(); err != nil {
			entry.WithError(err).Warn("Failed to clean working directory")
		}
		result.Duration = time.Since(start)
	}()

	fail := func(err error) RepoResult {
		result.Status = db.StatusFailed
		result.Err = err
		entry.WithError(err).Error("Sync failed")
		return result
	}

	if err := session.InitRepo(ctx); err != nil {
		return fail(err)
	}

	if !e.cfg.Defaults.SkipPR && !e.opts.DryRun {
		if _, err := session.CreatePRBranch(ctx); err != nil {
			return fail(err)
		}
	}

	for i := range target.Files {
		if _, err := e.materializer.Apply(e.opts.SourceRoot, session.WorkingDir(), &target.Files[i]); err != nil {
			return fail(appErrors.WrapWithContext(err, "apply rule "+target.Files[i].Source))
		}
	}

	changed, err := session.ChangedFiles(ctx)
	if err != nil {
		return fail(err)
	}
	result.ChangedFiles = changed

	if len(changed) == 0 {
		entry.Info("No changes to sync")
		result.Status = db.StatusSkipped
		return result
	}

	if e.opts.DryRun {
		preview, err := session.Preview(ctx)
		if err != nil {
			return fail(err)
		}
		result.Preview = preview
		result.Status = db.StatusSkipped
		entry.WithField(logging.StandardFields.FileCount, len(changed)).Info("Dry run, skipping push")
		return result
	}

	prm := NewPullRequestManager(
		e.ghClient, e.cfg, e.sourceRepo, repo,
		session.PRBranch(), e.prBase(repo, session),
		e.logger, e.logConfig,
	)

	var existingPR *gh.PR
	if !e.cfg.Defaults.SkipPR {
		if existingPR, err = prm.FindExisting(ctx); err != nil {
			return fail(err)
		}
		if existingPR != nil {
			synced, err := e.alreadySynced(ctx, session)
			if err != nil {
				entry.WithError(err).Debug("Could not compare against last commit")
			} else if synced {
				entry.Info("Changes already present in existing pull request")
				result.Status = db.StatusSkipped
				result.PR = existingPR
				return result
			}
		}
	}

	message := e.commitMessage(ctx, session, changed)
	if err := e.commitChanges(ctx, session, changed, message); err != nil {
		return fail(err)
	}

	if result.CommitSHA, err = e.gitClient.RevParse(ctx, session.WorkingDir(), "HEAD"); err != nil {
		return fail(err)
	}

	if err := e.push(ctx, session, prm, existingPR); err != nil {
		return fail(err)
	}

	if !e.cfg.Defaults.SkipPR {
		pr, err := prm.CreateOrUpdate(ctx, changed, message, e.prBody(ctx, changed))
		if err != nil {
			return fail(err)
		}
		result.PR = pr
	}

	entry.WithFields(logrus.Fields{
		logging.StandardFields.FileCount:  len(changed),
		logging.StandardFields.CommitSHA:  result.CommitSHA,
		logging.StandardFields.BranchName: session.PRBranch(),
	}).Info("Sync complete")

	return result
}

// commitChanges stages and commits the working tree, either one commit per
// changed file or a single combined commit.
func (e *Engine) commitChanges(ctx context.Context, session *Session, changed []string, message string) error {
	if e.cfg.Defaults.CommitEachFile != nil && *e.cfg.Defaults.CommitEachFile {
		for _, path := range changed {
			if err := session.Add(ctx, path); err != nil {
				return err
			}
			err := session.Commit(ctx, message)
			if err != nil && !stderrors.Is(err, git.ErrNoChanges) {
				return err
			}
		}
		return nil
	}

	if err := session.Add(ctx, "."); err != nil {
		return err
	}
	err := session.Commit(ctx, message)
	if err != nil && !stderrors.Is(err, git.ErrNoChanges) {
		return err
	}
	return nil
}

// commitMessage prefers an AI-generated message when a generator is
// configured, falling back to the standard template.
func (e *Engine) commitMessage(ctx context.Context, session *Session, changed []string) string {
	if e.generator != nil && e.generator.Enabled() {
		message, err := e.generator.CommitMessage(ctx, e.sourceRepo.FullName, changed)
		if err == nil {
			return message
		}
		e.logEntry().WithError(err).Debug("AI commit message unavailable, using template")
	}
	return session.DefaultCommitMessage()
}

// prBody prefers an AI-generated body when a generator is configured. The
// configured body, then the standard template, are the fallbacks.
func (e *Engine) prBody(ctx context.Context, changed []string) string {
	if e.generator != nil && e.generator.Enabled() {
		body, err := e.generator.PRBody(ctx, e.sourceRepo.FullName, changed)
		if err == nil {
			return body
		}
		e.logEntry().WithError(err).Debug("AI PR body unavailable, using template")
	}
	return e.cfg.Defaults.PRBody
}

// push publishes the session's commits. When verified publishing rewrites
// an existing PR's branch, the resync warning brackets the replay.
func (e *Engine) push(ctx context.Context, session *Session, prm *PullRequestManager, existingPR *gh.PR) error {
	warned := false
	if existingPR != nil && e.opts.IsInstallationToken() {
		if err := prm.SetResyncWarning(ctx); err != nil {
			return err
		}
		warned = true
	}

	if err := session.Push(ctx, e.publisher); err != nil {
		return err
	}

	if warned {
		return prm.ClearResyncWarning(ctx)
	}
	return nil
}

// alreadySynced reports whether the working tree diff exactly matches the
// last commit already on the remote branch, meaning a push would change
// nothing the PR does not already have.
func (e *Engine) alreadySynced(ctx context.Context, session *Session) (bool, error) {
	current, err := session.Changes(ctx, "")
	if err != nil {
		return false, err
	}
	if len(current) == 0 {
		return false, nil
	}

	last, err := session.LastCommitChanges(ctx)
	if err != nil {
		return false, err
	}

	for _, d := range current {
		if last[d.Path] != d.Body {
			return false, nil
		}
	}
	return true, nil
}

// prBase is the branch a new PR merges into.
func (e *Engine) prBase(repo config.Repository, session *Session) string {
	if repo.Branch != "" {
		return repo.Branch
	}
	return session.BaseBranch()
}

func (e *Engine) recordHistory(results []RepoResult) {
	if e.store == nil {
		return
	}

	for _, result := range results {
		run := &db.SyncRun{
			SourceRepo: e.sourceRepo.FullName,
			TargetRepo: result.Repo.FullName,
			Branch:     result.Repo.Branch,
			CommitSHA:  result.CommitSHA,
			Status:     result.Status,
			FileCount:  len(result.ChangedFiles),
			DurationMs: result.Duration.Milliseconds(),
		}
		if result.PR != nil {
			run.PRNumber = result.PR.Number
			run.PRURL = result.PR.HTMLURL
		}
		if result.Err != nil {
			run.Error = result.Err.Error()
		}

		if err := e.store.RecordRun(run); err != nil {
			e.logEntry().WithError(err).Warn("Failed to record run history")
		}
	}
}

func (e *Engine) logEntry() *logrus.Entry {
	return logging.WithStandardFields(e.logger, e.logConfig, logging.ComponentNames.Sync).
		WithField(logging.StandardFields.SourceRepo, e.sourceRepo.FullName)
}
