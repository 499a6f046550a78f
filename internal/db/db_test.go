package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordRun(&SyncRun{
		SourceRepo: "org/source",
		TargetRepo: "org/app",
		Branch:     "repo-sync/source/main",
		CommitSHA:  "abc123",
		PRNumber:   7,
		Status:     StatusSynced,
		FileCount:  3,
		DurationMs: 1200,
	}))
	require.NoError(t, store.RecordRun(&SyncRun{
		SourceRepo: "org/source",
		TargetRepo: "org/other",
		Status:     StatusSkipped,
	}))

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first
	assert.Equal(t, "org/other", runs[0].TargetRepo)
	assert.Equal(t, StatusSkipped, runs[0].Status)
	assert.Equal(t, "org/app", runs[1].TargetRepo)
	assert.Equal(t, 7, runs[1].PRNumber)
}

func TestRecentRunsHonorsLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(&SyncRun{TargetRepo: "org/app", Status: StatusSynced}))
	}

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunsForTarget(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordRun(&SyncRun{TargetRepo: "org/app", Status: StatusSynced}))
	require.NoError(t, store.RecordRun(&SyncRun{TargetRepo: "org/other", Status: StatusFailed, Error: "boom"}))

	runs, err := store.RunsForTarget("org/other", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Error)
}
