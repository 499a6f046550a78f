package git

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

// Clone mock implementation
func (m *MockClient) Clone(ctx context.Context, url, path, branch string, depth int) error {
	args := m.Called(ctx, url, path, branch, depth)
	return args.Error(0)
}

// ConfigureIdentity mock implementation
func (m *MockClient) ConfigureIdentity(ctx context.Context, repoPath, name, email string) error {
	args := m.Called(ctx, repoPath, name, email)
	return args.Error(0)
}

// CurrentBranch mock implementation
func (m *MockClient) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	args := m.Called(ctx, repoPath)
	return testutil.ExtractStringResult(args)
}

// RevParse mock implementation
func (m *MockClient) RevParse(ctx context.Context, repoPath, rev string) (string, error) {
	args := m.Called(ctx, repoPath, rev)
	return testutil.ExtractStringResult(args)
}

// CreateBranch mock implementation
func (m *MockClient) CreateBranch(ctx context.Context, repoPath, branch string) error {
	args := m.Called(ctx, repoPath, branch)
	return args.Error(0)
}

// Switch mock implementation
func (m *MockClient) Switch(ctx context.Context, repoPath, branch string) error {
	args := m.Called(ctx, repoPath, branch)
	return args.Error(0)
}

// SetRemoteBranches mock implementation
func (m *MockClient) SetRemoteBranches(ctx context.Context, repoPath, remote, pattern string) error {
	args := m.Called(ctx, repoPath, remote, pattern)
	return args.Error(0)
}

// Fetch mock implementation
func (m *MockClient) Fetch(ctx context.Context, repoPath, remote string, depth int) error {
	args := m.Called(ctx, repoPath, remote, depth)
	return args.Error(0)
}

// HasRemoteBranch mock implementation
func (m *MockClient) HasRemoteBranch(ctx context.Context, repoPath, remote, branch string) (bool, error) {
	args := m.Called(ctx, repoPath, remote, branch)
	return args.Bool(0), args.Error(1)
}

// AddRemote mock implementation
func (m *MockClient) AddRemote(ctx context.Context, repoPath, name, url string) error {
	args := m.Called(ctx, repoPath, name, url)
	return args.Error(0)
}

// Add mock implementation
func (m *MockClient) Add(ctx context.Context, repoPath, path string) error {
	args := m.Called(ctx, repoPath, path)
	return args.Error(0)
}

// Remove mock implementation
func (m *MockClient) Remove(ctx context.Context, repoPath, path string) error {
	args := m.Called(ctx, repoPath, path)
	return args.Error(0)
}

// Status mock implementation
func (m *MockClient) Status(ctx context.Context, repoPath string) (string, error) {
	args := m.Called(ctx, repoPath)
	return testutil.ExtractStringResult(args)
}

// Commit mock implementation
func (m *MockClient) Commit(ctx context.Context, repoPath, message string) error {
	args := m.Called(ctx, repoPath, message)
	return args.Error(0)
}

// Diff mock implementation
func (m *MockClient) Diff(ctx context.Context, repoPath, pathspec string) (string, error) {
	args := m.Called(ctx, repoPath, pathspec)
	return testutil.ExtractStringResult(args)
}

// DiffTree mock implementation
func (m *MockClient) DiffTree(ctx context.Context, repoPath, fromTree, toTree string) (string, error) {
	args := m.Called(ctx, repoPath, fromTree, toTree)
	return testutil.ExtractStringResult(args)
}

// CatFile mock implementation
func (m *MockClient) CatFile(ctx context.Context, repoPath, object string) ([]byte, error) {
	args := m.Called(ctx, repoPath, object)
	return testutil.HandleTwoValueReturn[[]byte](args)
}

// ListCommits mock implementation
func (m *MockClient) ListCommits(ctx context.Context, repoPath, sinceSHA string) ([]string, error) {
	args := m.Called(ctx, repoPath, sinceSHA)
	return testutil.HandleTwoValueReturn[[]string](args)
}

// CommitMessage mock implementation
func (m *MockClient) CommitMessage(ctx context.Context, repoPath, sha string) (string, error) {
	args := m.Called(ctx, repoPath, sha)
	return testutil.ExtractStringResult(args)
}

// Push mock implementation
func (m *MockClient) Push(ctx context.Context, repoPath, remote, branch string, forceWithLease bool) error {
	args := m.Called(ctx, repoPath, remote, branch, forceWithLease)
	return args.Error(0)
}
