package gh

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(runner CommandRunner) Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClientWithRunner(runner, logger)
}

func TestGetCurrentUserCaches(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, "gh", []string{"api", "user"}).
		Return([]byte(`{"login":"octocat","id":1,"email":"octo@cat.dev"}`), nil).Once()

	client := newTestClient(runner)

	user, err := client.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "octo@cat.dev", user.Email)

	// Second call served from cache
	again, err := client.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user, again)
	runner.AssertExpectations(t)
}

func TestCreateBlob(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("RunWithInput", mock.Anything, mock.Anything, "gh",
		[]string{"api", "repos/org/app/git/blobs", "--method", "POST", "--input", "-"}).
		Return([]byte(`{"sha":"abc123"}`), nil)

	client := newTestClient(runner)
	sha, err := client.CreateBlob(context.Background(), "org/app", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestCreateTreeErrorIncludesBase(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("RunWithInput", mock.Anything, mock.Anything, "gh", mock.Anything).
		Return(nil, errors.New("HTTP 422"))

	client := newTestClient(runner)
	_, err := client.CreateTree(context.Background(), "org/app", "basetree", []TreeEntry{{Path: "a", Mode: "100644", Type: "blob"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to create tree with base "basetree"`)
}

func TestCreateRefAlreadyExists(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("RunWithInput", mock.Anything, mock.Anything, "gh", mock.Anything).
		Return(nil, errors.New("HTTP 422: Reference already exists"))

	client := newTestClient(runner)
	err := client.CreateRef(context.Background(), "org/app", "repo-sync/tools/main", "abc123")
	require.ErrorIs(t, err, ErrRefAlreadyExists)
}

func TestCreateRefOtherErrorPropagates(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("RunWithInput", mock.Anything, mock.Anything, "gh", mock.Anything).
		Return(nil, errors.New("HTTP 401: Bad credentials"))

	client := newTestClient(runner)
	err := client.CreateRef(context.Background(), "org/app", "repo-sync/tools/main", "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRefAlreadyExists)
}

func TestCompareCommitsUsesDiffMediaType(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, "gh",
		[]string{"api", "repos/org/app/compare/abc...def", "-H", "Accept: application/vnd.github.diff"}).
		Return([]byte("diff --git a/x b/x\n"), nil)

	client := newTestClient(runner)
	out, err := client.CompareCommits(context.Background(), "org/app", "abc", "def")
	require.NoError(t, err)
	assert.Contains(t, out, "diff --git")
}

func TestListPRsWithHeadFilter(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, "gh",
		[]string{"api", "repos/org/app/pulls?state=open&head=org:repo-sync/tools/main", "--paginate"}).
		Return([]byte(`[{"number":7,"state":"open","title":"sync"}]`), nil)

	client := newTestClient(runner)
	prs, err := client.ListPRs(context.Background(), "org/app", "open", "org:repo-sync/tools/main")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 7, prs[0].Number)
}

func TestUpdatePRNotFound(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("RunWithInput", mock.Anything, mock.Anything, "gh", mock.Anything).
		Return(nil, errors.New("HTTP 404: Not Found"))

	client := newTestClient(runner)
	title := "new title"
	_, err := client.UpdatePR(context.Background(), "org/app", 1, PRUpdate{Title: &title})
	require.ErrorIs(t, err, ErrPRNotFound)
}

func TestRequestReviewersNoopWhenEmpty(t *testing.T) {
	runner := &MockCommandRunner{}

	client := newTestClient(runner)
	err := client.RequestReviewers(context.Background(), "org/app", 1, nil, nil)
	require.NoError(t, err)
	runner.AssertNotCalled(t, "RunWithInput", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
