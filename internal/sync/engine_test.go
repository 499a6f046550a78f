package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/repo-file-sync/internal/config"
	"github.com/mrz1836/repo-file-sync/internal/db"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/gh"
	"github.com/mrz1836/repo-file-sync/internal/git"
	"github.com/mrz1836/repo-file-sync/internal/logging"
	"github.com/mrz1836/repo-file-sync/internal/transform"
)

func newTestEngine(t *testing.T, cfg *config.Config, gitMock *git.MockClient, ghMock *gh.MockClient, opts *Options) *Engine {
	t.Helper()

	logger := quietLogger()
	logConfig := &logging.LogConfig{}

	engine, err := NewEngine(cfg, gitMock, ghMock, transform.NewRenderer(logger, logConfig),
		nil, nil, opts, logger, logConfig)
	require.NoError(t, err)
	return engine
}

// mockInit wires the git calls every session makes during InitRepo.
func mockInit(gitMock *git.MockClient, ghMock *gh.MockClient) {
	gitMock.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 1).Return(nil)
	gitMock.On("ConfigureIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	gitMock.On("CurrentBranch", mock.Anything, mock.Anything).Return("main", nil)
	gitMock.On("RevParse", mock.Anything, mock.Anything, "HEAD").Return("head123", nil)
	ghMock.On("GetCurrentUser", mock.Anything).Return(&gh.User{Login: "octocat", Email: "octo@cat.dev"}, nil)
}

// mockBranch wires the overwrite-enabled branch reuse path.
func mockBranch(gitMock *git.MockClient, exists bool) {
	gitMock.On("SetRemoteBranches", mock.Anything, mock.Anything, "origin", "*").Return(nil)
	gitMock.On("Fetch", mock.Anything, mock.Anything, "origin", 1).Return(nil)
	gitMock.On("HasRemoteBranch", mock.Anything, mock.Anything, "origin", "repo-sync/tools/main").Return(exists, nil)
	if exists {
		gitMock.On("Switch", mock.Anything, mock.Anything, "repo-sync/tools/main").Return(nil)
	} else {
		gitMock.On("CreateBranch", mock.Anything, mock.Anything, "repo-sync/tools/main").Return(nil)
	}
}

func TestEngineSyncsSingleTarget(t *testing.T) {
	sourceRoot := t.TempDir()
	writeTestFile(t, sourceRoot, "x.txt", "synced content\n")

	cfg := testConfig(func(c *config.Config) {
		c.Targets = []config.TargetConfig{{
			Repo:   "org/app",
			Branch: "main",
			Files:  []config.FileRule{{Source: "x.txt"}},
		}}
	})

	gitMock := git.NewMockClient()
	ghMock := &gh.MockClient{}
	mockInit(gitMock, ghMock)
	mockBranch(gitMock, false)

	gitMock.On("Status", mock.Anything, mock.Anything).Return("?? x.txt\n", nil)
	gitMock.On("Add", mock.Anything, mock.Anything, "x.txt").Return(nil)
	gitMock.On("Commit", mock.Anything, mock.Anything, "chore(sync): synced file(s) with org/tools").Return(nil)
	gitMock.On("Push", mock.Anything, mock.Anything, "origin", "repo-sync/tools/main", true).Return(nil)

	ghMock.On("ListPRs", mock.Anything, "org/app", "open", "org:repo-sync/tools/main").Return([]gh.PR{}, nil)
	ghMock.On("CreatePR", mock.Anything, "org/app", mock.Anything).Return(&gh.PR{Number: 42}, nil)
	ghMock.On("AddLabels", mock.Anything, "org/app", 42, []string{config.DefaultPRLabel}).Return(nil)

	opts := &Options{Token: "ghp_x", SourceRoot: sourceRoot, WorkDir: t.TempDir(), Concurrency: 1}
	engine := newTestEngine(t, cfg, gitMock, ghMock, opts)

	results, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, db.StatusSynced, results[0].Status)
	assert.Equal(t, []string{"x.txt"}, results[0].ChangedFiles)
	assert.Equal(t, "head123", results[0].CommitSHA)
	require.NotNil(t, results[0].PR)
	assert.Equal(t, 42, results[0].PR.Number)

	gitMock.AssertExpectations(t)
	ghMock.AssertExpectations(t)
}

func TestEngineSkipsWhenNoChanges(t *testing.T) {
	sourceRoot := t.TempDir()
	writeTestFile(t, sourceRoot, "x.txt", "content\n")

	gitMock := git.NewMockClient()
	ghMock := &gh.MockClient{}
	mockInit(gitMock, ghMock)
	mockBranch(gitMock, false)
	gitMock.On("Status", mock.Anything, mock.Anything).Return("", nil)

	opts := &Options{Token: "ghp_x", SourceRoot: sourceRoot, WorkDir: t.TempDir(), Concurrency: 1}
	engine := newTestEngine(t, testConfig(nil), gitMock, ghMock, opts)

	results, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, db.StatusSkipped, results[0].Status)
	gitMock.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
	ghMock.AssertNotCalled(t, "CreatePR", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngineDryRunPreviewsWithoutPushing(t *testing.T) {
	sourceRoot := t.TempDir()
	writeTestFile(t, sourceRoot, "x.txt", "new file\n")

	gitMock := git.NewMockClient()
	ghMock := &gh.MockClient{}
	mockInit(gitMock, ghMock)
	gitMock.On("Status", mock.Anything, mock.Anything).Return("?? x.txt\n", nil)
	gitMock.On("Diff", mock.Anything, mock.Anything, "").Return("", nil)

	opts := &Options{Token: "ghp_x", SourceRoot: sourceRoot, WorkDir: t.TempDir(), Concurrency: 1, DryRun: true}
	engine := newTestEngine(t, testConfig(nil), gitMock, ghMock, opts)

	results, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, db.StatusSkipped, results[0].Status)
	require.Len(t, results[0].Preview, 1)
	assert.Equal(t, "x.txt", results[0].Preview[0].Path)
	assert.Contains(t, results[0].Preview[0].Body, "+new file")

	// No branch, commit, or push in a dry run
	gitMock.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything, mock.Anything)
	gitMock.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
	gitMock.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngineReportsFailedRepositories(t *testing.T) {
	gitMock := git.NewMockClient()
	ghMock := &gh.MockClient{}
	gitMock.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 1).Return(appErrors.ErrTest)
	ghMock.On("GetCurrentUser", mock.Anything).Return(&gh.User{Login: "octocat"}, nil)

	opts := &Options{Token: "ghp_x", SourceRoot: t.TempDir(), WorkDir: t.TempDir(), Concurrency: 1}
	engine := newTestEngine(t, testConfig(nil), gitMock, ghMock, opts)

	results, err := engine.Run(context.Background())
	require.ErrorIs(t, err, appErrors.ErrSyncFailed)
	require.Len(t, results, 1)
	assert.Equal(t, db.StatusFailed, results[0].Status)
	require.ErrorIs(t, results[0].Err, appErrors.ErrTest)
}

func TestEngineNoRepositories(t *testing.T) {
	cfg := &config.Config{Source: config.SourceConfig{Repo: "org/tools"}}
	config.ApplyDefaults(cfg)

	opts := &Options{Token: "ghp_x"}
	engine := newTestEngine(t, cfg, git.NewMockClient(), &gh.MockClient{}, opts)

	_, err := engine.Run(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNoRepositories)
}
