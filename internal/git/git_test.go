package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// These are integration tests that require git to be installed.
// They work entirely against local repositories; no network access.

func newTestGitClient(t *testing.T) Client {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	client, err := NewClient(context.Background(), logger, nil)
	require.NoError(t, err)
	return client
}

// initSourceRepo creates a local repository with one commit and returns its path
func initSourceRepo(t *testing.T, client Client) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "source")

	require.NoError(t, os.MkdirAll(path, 0o750))
	runGit(t, path, "init", "--initial-branch=main")
	require.NoError(t, client.ConfigureIdentity(ctx, path, "Test User", "test@example.com"))

	require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("hello\n"), 0o600))
	require.NoError(t, client.Add(ctx, path, "README.md"))
	require.NoError(t, client.Commit(ctx, path, "initial commit"))

	return path
}

func runGit(t *testing.T, repoPath string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", repoPath}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestGitClientCloneAndBranches(t *testing.T) {
	client := newTestGitClient(t)
	ctx := context.Background()

	source := initSourceRepo(t, client)
	clonePath := filepath.Join(t.TempDir(), "clone")

	require.NoError(t, client.Clone(ctx, source, clonePath, "", 1))
	assert.DirExists(t, filepath.Join(clonePath, ".git"))

	branch, err := client.CurrentBranch(ctx, clonePath)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	sha, err := client.RevParse(ctx, clonePath, "HEAD")
	require.NoError(t, err)
	assert.Len(t, sha, 40)

	require.NoError(t, client.CreateBranch(ctx, clonePath, "repo-sync/main"))
	branch, err = client.CurrentBranch(ctx, clonePath)
	require.NoError(t, err)
	assert.Equal(t, "repo-sync/main", branch)

	require.NoError(t, client.Switch(ctx, clonePath, "main"))
}

func TestGitClientCloneExistingPath(t *testing.T) {
	client := newTestGitClient(t)
	ctx := context.Background()

	path := t.TempDir()
	err := client.Clone(ctx, "ignored", path, "", 0)
	require.ErrorIs(t, err, ErrRepositoryExists)
}

func TestGitClientStageCommitStatus(t *testing.T) {
	client := newTestGitClient(t)
	ctx := context.Background()
	repo := initSourceRepo(t, client)

	status, err := client.Status(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, status)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "new.txt"), []byte("content\n"), 0o600))

	status, err = client.Status(ctx, repo)
	require.NoError(t, err)
	assert.NotEmpty(t, status)

	require.NoError(t, client.Add(ctx, repo, "new.txt"))
	require.NoError(t, client.Commit(ctx, repo, "add new.txt"))

	// Clean tree commits return ErrNoChanges
	err = client.Commit(ctx, repo, "empty")
	require.ErrorIs(t, err, ErrNoChanges)

	require.NoError(t, client.Remove(ctx, repo, "new.txt"))
	require.NoError(t, client.Commit(ctx, repo, "remove new.txt"))
	assert.NoFileExists(t, filepath.Join(repo, "new.txt"))
}

func TestGitClientDiffAndHistory(t *testing.T) {
	client := newTestGitClient(t)
	ctx := context.Background()
	repo := initSourceRepo(t, client)

	baseSHA, err := client.RevParse(ctx, repo, "HEAD")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("changed\n"), 0o600))

	out, err := client.Diff(ctx, repo, "README.md")
	require.NoError(t, err)
	assert.Contains(t, out, "+++ b/README.md")
	assert.Contains(t, out, "+changed")

	require.NoError(t, client.Add(ctx, repo, "README.md"))
	require.NoError(t, client.Commit(ctx, repo, "update readme\n\nwith body"))

	commits, err := client.ListCommits(ctx, repo, baseSHA)
	require.NoError(t, err)
	require.Len(t, commits, 1)

	msg, err := client.CommitMessage(ctx, repo, commits[0])
	require.NoError(t, err)
	assert.Contains(t, msg, "update readme")
	assert.Contains(t, msg, "with body")

	// Tree diff between the two commits' trees
	fromTree, err := client.RevParse(ctx, repo, baseSHA+"^{tree}")
	require.NoError(t, err)
	toTree, err := client.RevParse(ctx, repo, commits[0]+"^{tree}")
	require.NoError(t, err)

	treeDiff, err := client.DiffTree(ctx, repo, fromTree, toTree)
	require.NoError(t, err)
	assert.Contains(t, treeDiff, "README.md")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(treeDiff), ":"))

	// Blob content via cat-file matches the working tree
	blobSHA, err := client.RevParse(ctx, repo, commits[0]+":README.md")
	require.NoError(t, err)
	content, err := client.CatFile(ctx, repo, blobSHA)
	require.NoError(t, err)
	assert.Equal(t, "changed\n", string(content))
}

func TestGitClientDebugGitTracesCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	logConfig := &logging.LogConfig{Debug: logging.DebugFlags{Git: true}}
	logConfig.ConfigureLogger(logger)

	client, err := NewClient(context.Background(), logger, logConfig)
	require.NoError(t, err)

	repo := initSourceRepo(t, client)
	_, err = client.Status(context.Background(), repo)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Executing git command")
	assert.Contains(t, buf.String(), "status --porcelain")
}

func TestGitClientPushToLocalRemote(t *testing.T) {
	client := newTestGitClient(t)
	ctx := context.Background()

	source := initSourceRepo(t, client)

	// Bare repository acts as the remote
	bare := filepath.Join(t.TempDir(), "remote.git")
	cmd := exec.Command("git", "clone", "--bare", source, bare)
	require.NoError(t, cmd.Run())

	clone := filepath.Join(t.TempDir(), "work")
	require.NoError(t, client.Clone(ctx, bare, clone, "main", 1))
	require.NoError(t, client.ConfigureIdentity(ctx, clone, "Test User", "test@example.com"))

	require.NoError(t, os.WriteFile(filepath.Join(clone, "pushed.txt"), []byte("x\n"), 0o600))
	require.NoError(t, client.Add(ctx, clone, "pushed.txt"))
	require.NoError(t, client.Commit(ctx, clone, "push me"))
	require.NoError(t, client.Push(ctx, clone, "origin", "main", true))

	ok, err := client.HasRemoteBranch(ctx, clone, "origin", "main")
	require.NoError(t, err)
	assert.True(t, ok)
}
