package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/repo-file-sync/internal/config"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/gh"
	"github.com/mrz1836/repo-file-sync/internal/logging"
)

const prStateOpen = "open"

// resyncWarning is prepended to a PR body while its branch history is being
// rewritten, and removed once the rewrite completes.
const resyncWarning = "> **Warning**\n> This pull request is being resynced and its branch is being rewritten.\n\n"

// PullRequestManager finds, creates, and updates the pull request for one
// sync branch, and manages its labels, assignees, reviewers, and the resync
// warning banner. The PR handle is fetched or created once and reused.
type PullRequestManager struct {
	gh        gh.Client
	logger    *logrus.Logger
	logConfig *logging.LogConfig

	defaults   *config.DefaultConfig
	sourceRepo config.Repository
	repo       config.Repository
	prBranch   string
	baseBranch string

	pr      *gh.PR
	fetched bool
}

// NewPullRequestManager creates a manager for one target repository's sync
// branch. baseBranch is the branch the PR merges into.
func NewPullRequestManager(
	ghClient gh.Client,
	cfg *config.Config,
	sourceRepo config.Repository,
	repo config.Repository,
	prBranch, baseBranch string,
	logger *logrus.Logger,
	logConfig *logging.LogConfig,
) *PullRequestManager {
	return &PullRequestManager{
		gh:         ghClient,
		logger:     logger,
		logConfig:  logConfig,
		defaults:   &cfg.Defaults,
		sourceRepo: sourceRepo,
		repo:       repo,
		prBranch:   prBranch,
		baseBranch: baseBranch,
	}
}

// headRef is the head filter for PR listing: owner:branch, where owner is
// the fork owner when pushing to a fork.
func (m *PullRequestManager) headRef() string {
	owner := m.defaults.ForkOwner
	if owner == "" {
		owner = m.repo.User
	}
	return owner + ":" + m.prBranch
}

// FindExisting returns the open PR for the sync branch, or nil when none
// exists. The result is cached for the session.
func (m *PullRequestManager) FindExisting(ctx context.Context) (*gh.PR, error) {
	if m.fetched {
		return m.pr, nil
	}

	prs, err := m.gh.ListPRs(ctx, m.repo.FullName, prStateOpen, m.headRef())
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "list pull requests")
	}

	m.fetched = true
	if len(prs) > 0 {
		m.pr = &prs[0]
	}
	return m.pr, nil
}

// CreateOrUpdate opens the sync PR or refreshes the existing one's title
// and body. commitMessage feeds the title when original_message is set.
// Labels, assignees, and reviewers are attached on creation.
func (m *PullRequestManager) CreateOrUpdate(ctx context.Context, changedFiles []string, commitMessage, body string) (*gh.PR, error) {
	if body == "" {
		body = m.defaultBody(changedFiles)
	}
	title := m.title(commitMessage)

	existing, err := m.FindExisting(ctx)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// A rewritten body drops any resync banner still present.
		updated, err := m.gh.UpdatePR(ctx, m.repo.FullName, existing.Number, gh.PRUpdate{
			Title: &title,
			Body:  &body,
		})
		if err != nil {
			return nil, appErrors.WrapWithContext(err, "update pull request")
		}
		m.pr = updated
		m.logEntry().WithField(logging.StandardFields.PRNumber, updated.Number).Info("Updated pull request")
		return updated, nil
	}

	created, err := m.gh.CreatePR(ctx, m.repo.FullName, gh.PRRequest{
		Title: title,
		Body:  body,
		Head:  m.headRef(),
		Base:  m.baseBranch,
	})
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "create pull request")
	}
	m.pr = created
	m.logEntry().WithField(logging.StandardFields.PRNumber, created.Number).Info("Created pull request")

	if err := m.applyMetadata(ctx, created.Number); err != nil {
		return nil, err
	}
	return created, nil
}

// title resolves the PR title: the commit message's subject line when
// original_message is set, then the configured title, then the standard
// sync title.
func (m *PullRequestManager) title(commitMessage string) string {
	if m.defaults.OriginalMessage && commitMessage != "" {
		if idx := strings.IndexByte(commitMessage, '\n'); idx >= 0 {
			commitMessage = commitMessage[:idx]
		}
		return strings.TrimSpace(commitMessage)
	}
	if m.defaults.PRTitle != "" {
		return m.defaults.PRTitle
	}
	return fmt.Sprintf("Synced file(s) with %s", m.sourceRepo.FullName)
}

// applyMetadata attaches labels, assignees, and reviewers to a new PR.
func (m *PullRequestManager) applyMetadata(ctx context.Context, number int) error {
	repo := m.repo.FullName

	if len(m.defaults.PRLabels) > 0 {
		if err := m.gh.AddLabels(ctx, repo, number, m.defaults.PRLabels); err != nil {
			return appErrors.WrapWithContext(err, "add labels")
		}
	}
	if len(m.defaults.Assignees) > 0 {
		if err := m.gh.AddAssignees(ctx, repo, number, m.defaults.Assignees); err != nil {
			return appErrors.WrapWithContext(err, "add assignees")
		}
	}
	if len(m.defaults.Reviewers) > 0 || len(m.defaults.TeamReviewers) > 0 {
		if err := m.gh.RequestReviewers(ctx, repo, number, m.defaults.Reviewers, m.defaults.TeamReviewers); err != nil {
			return appErrors.WrapWithContext(err, "request reviewers")
		}
	}
	return nil
}

// SetResyncWarning prepends the warning banner to the PR body. A no-op when
// no PR exists or the banner is already present.
func (m *PullRequestManager) SetResyncWarning(ctx context.Context) error {
	pr, err := m.FindExisting(ctx)
	if err != nil {
		return err
	}
	if pr == nil || strings.HasPrefix(pr.Body, resyncWarning) {
		return nil
	}

	body := resyncWarning + pr.Body
	return m.updateBody(ctx, pr, body)
}

// ClearResyncWarning removes the warning banner from the PR body. A no-op
// when no PR exists or the banner is absent.
func (m *PullRequestManager) ClearResyncWarning(ctx context.Context) error {
	pr, err := m.FindExisting(ctx)
	if err != nil {
		return err
	}
	if pr == nil || !strings.Contains(pr.Body, resyncWarning) {
		return nil
	}

	body := strings.Replace(pr.Body, resyncWarning, "", 1)
	return m.updateBody(ctx, pr, body)
}

func (m *PullRequestManager) updateBody(ctx context.Context, pr *gh.PR, body string) error {
	updated, err := m.gh.UpdatePR(ctx, m.repo.FullName, pr.Number, gh.PRUpdate{Body: &body})
	if err != nil {
		return appErrors.WrapWithContext(err, "update pull request body")
	}
	m.pr = updated
	return nil
}

// defaultBody lists the synced files under a standard heading.
func (m *PullRequestManager) defaultBody(changedFiles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Synced local file(s) with [%s](https://github.com/%s).\n", m.sourceRepo.FullName, m.sourceRepo.FullName)

	if len(changedFiles) > 0 {
		b.WriteString("\nChanged files:\n")
		for _, file := range changedFiles {
			fmt.Fprintf(&b, "- `%s`\n", file)
		}
	}

	b.WriteString("\n---\n\nThis PR was created automatically by repo-file-sync.\n")
	return b.String()
}

func (m *PullRequestManager) logEntry() *logrus.Entry {
	return logging.WithStandardFields(m.logger, m.logConfig, logging.ComponentNames.PullRequest).
		WithField(logging.StandardFields.TargetRepo, m.repo.FullName)
}
