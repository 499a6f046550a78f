package gh

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mrz1836/repo-file-sync/internal/testutil"
)

// MockClient is a mock implementation of the Client interface
type MockClient struct {
	mock.Mock
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetCurrentUser mock implementation
func (m *MockClient) GetCurrentUser(ctx context.Context) (*User, error) {
	args := m.Called(ctx)
	return testutil.HandleTwoValueReturn[*User](args)
}

// CreateFork mock implementation
func (m *MockClient) CreateFork(ctx context.Context, repo, owner string) error {
	args := m.Called(ctx, repo, owner)
	return args.Error(0)
}

// CompareCommits mock implementation
func (m *MockClient) CompareCommits(ctx context.Context, repo, base, head string) (string, error) {
	args := m.Called(ctx, repo, base, head)
	return testutil.ExtractStringResult(args)
}

// CreateBlob mock implementation
func (m *MockClient) CreateBlob(ctx context.Context, repo, contentBase64 string) (string, error) {
	args := m.Called(ctx, repo, contentBase64)
	return testutil.ExtractStringResult(args)
}

// CreateTree mock implementation
func (m *MockClient) CreateTree(ctx context.Context, repo, baseTree string, entries []TreeEntry) (string, error) {
	args := m.Called(ctx, repo, baseTree, entries)
	return testutil.ExtractStringResult(args)
}

// CreateCommit mock implementation
func (m *MockClient) CreateCommit(ctx context.Context, repo, message, tree string, parents []string) (string, error) {
	args := m.Called(ctx, repo, message, tree, parents)
	return testutil.ExtractStringResult(args)
}

// CreateRef mock implementation
func (m *MockClient) CreateRef(ctx context.Context, repo, ref, sha string) error {
	args := m.Called(ctx, repo, ref, sha)
	return args.Error(0)
}

// UpdateRef mock implementation
func (m *MockClient) UpdateRef(ctx context.Context, repo, ref, sha string, force bool) error {
	args := m.Called(ctx, repo, ref, sha, force)
	return args.Error(0)
}

// ListPRs mock implementation
func (m *MockClient) ListPRs(ctx context.Context, repo, state, head string) ([]PR, error) {
	args := m.Called(ctx, repo, state, head)
	return testutil.HandleTwoValueReturn[[]PR](args)
}

// CreatePR mock implementation
func (m *MockClient) CreatePR(ctx context.Context, repo string, req PRRequest) (*PR, error) {
	args := m.Called(ctx, repo, req)
	return testutil.HandleTwoValueReturn[*PR](args)
}

// UpdatePR mock implementation
func (m *MockClient) UpdatePR(ctx context.Context, repo string, number int, updates PRUpdate) (*PR, error) {
	args := m.Called(ctx, repo, number, updates)
	return testutil.HandleTwoValueReturn[*PR](args)
}

// AddLabels mock implementation
func (m *MockClient) AddLabels(ctx context.Context, repo string, number int, labels []string) error {
	args := m.Called(ctx, repo, number, labels)
	return args.Error(0)
}

// AddAssignees mock implementation
func (m *MockClient) AddAssignees(ctx context.Context, repo string, number int, assignees []string) error {
	args := m.Called(ctx, repo, number, assignees)
	return args.Error(0)
}

// RequestReviewers mock implementation
func (m *MockClient) RequestReviewers(ctx context.Context, repo string, number int, reviewers, teamReviewers []string) error {
	args := m.Called(ctx, repo, number, reviewers, teamReviewers)
	return args.Error(0)
}
