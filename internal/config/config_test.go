package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
source:
  repo: org/tools
  branch: master
defaults:
  commit_prefix: "ci(sync):"
  pr_labels:
    - sync
targets:
  - repo: org/app
    branch: main
    files:
      - src: workflows/
        dest: .github/workflows/
        delete_orphaned: true
        exclude:
          - local.yml
      - src: Makefile
        replace: false
  - repo: org/lib
    files:
      - src: LICENSE
        template:
          year: "2026"
`

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "org/tools", cfg.Source.Repo)
	assert.Equal(t, "master", cfg.Source.Branch)
	assert.Equal(t, "ci(sync):", cfg.Defaults.CommitPrefix)
	assert.Equal(t, []string{"sync"}, cfg.Defaults.PRLabels)
	require.Len(t, cfg.Targets, 2)

	app := cfg.Targets[0]
	require.Len(t, app.Files, 2)
	assert.Equal(t, ".github/workflows/", app.Files[0].Dest)
	assert.True(t, app.Files[0].DeleteOrphaned)
	assert.True(t, app.Files[0].ShouldReplace())
	assert.False(t, app.Files[1].ShouldReplace())
	// dest defaults to src
	assert.Equal(t, "Makefile", app.Files[1].Dest)

	lib := cfg.Targets[1]
	assert.Equal(t, map[string]string{"year": "2026"}, lib.Files[0].Template)
}

func TestLoadFromReaderDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`
source:
  repo: org/tools
targets:
  - repo: org/app
    files:
      - src: README.md
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultBranchPrefix, cfg.Defaults.BranchPrefix)
	assert.Equal(t, DefaultCommitPrefix, cfg.Defaults.CommitPrefix)
	assert.Equal(t, []string{DefaultPRLabel}, cfg.Defaults.PRLabels)
	require.NotNil(t, cfg.Defaults.OverwriteExistingPR)
	assert.True(t, *cfg.Defaults.OverwriteExistingPR)
	require.NotNil(t, cfg.Defaults.CommitEachFile)
	assert.True(t, *cfg.Defaults.CommitEachFile)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing source repo",
			yaml:    "targets:\n  - repo: org/app\n    files:\n      - src: a\n",
			wantErr: "source.repo",
		},
		{
			name:    "bad source format",
			yaml:    "source:\n  repo: nosplit\ntargets:\n  - repo: org/app\n    files:\n      - src: a\n",
			wantErr: "owner/repo",
		},
		{
			name:    "no targets",
			yaml:    "source:\n  repo: org/tools\n",
			wantErr: "no repositories",
		},
		{
			name:    "target without files",
			yaml:    "source:\n  repo: org/tools\ntargets:\n  - repo: org/app\n",
			wantErr: "no file rules",
		},
		{
			name:    "rule without src",
			yaml:    "source:\n  repo: org/tools\ntargets:\n  - repo: org/app\n    files:\n      - dest: b\n",
			wantErr: "files[0].src",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRepository(t *testing.T) {
	repo, err := ParseRepository("org/app@develop")
	require.NoError(t, err)
	assert.Equal(t, "org", repo.User)
	assert.Equal(t, "app", repo.Name)
	assert.Equal(t, "org/app", repo.FullName)
	assert.Equal(t, "develop", repo.Branch)
	assert.Equal(t, "org-app@develop", repo.UniqueName)

	_, err = ParseRepository("not-a-repo")
	require.Error(t, err)
}

func TestResolveRepositoriesDisambiguation(t *testing.T) {
	cfg := &Config{
		Source: SourceConfig{Repo: "org/tools"},
		Targets: []TargetConfig{
			{Repo: "org/app", Branch: "main", Files: []FileRule{{Source: "a"}}},
			{Repo: "org/app", Branch: "main", Files: []FileRule{{Source: "b"}}},
			{Repo: "org/app", Branch: "dev", Files: []FileRule{{Source: "c"}}},
		},
	}

	repos, err := cfg.ResolveRepositories()
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "org-app@main", repos[0].UniqueName)
	assert.Equal(t, "org-app@main-1", repos[1].UniqueName)
	assert.Equal(t, "org-app@dev", repos[2].UniqueName)
}
