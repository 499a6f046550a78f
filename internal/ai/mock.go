package ai

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mrz1836/repo-file-sync/internal/testutil"
)

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	mock.Mock
}

// Enabled mock implementation
func (m *MockGenerator) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// CommitMessage mock implementation
func (m *MockGenerator) CommitMessage(ctx context.Context, sourceRepo string, files []string) (string, error) {
	args := m.Called(ctx, sourceRepo, files)
	return testutil.ExtractStringResult(args)
}

// PRBody mock implementation
func (m *MockGenerator) PRBody(ctx context.Context, sourceRepo string, files []string) (string, error) {
	args := m.Called(ctx, sourceRepo, files)
	return testutil.ExtractStringResult(args)
}
