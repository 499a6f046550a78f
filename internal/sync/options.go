package sync

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// installationTokenPrefix marks GitHub App installation tokens, which cannot
// author verified commits through a plain git push.
const installationTokenPrefix = "ghs_"

// Options carries the run-level settings shared by every repository session.
type Options struct {
	// Token authenticates git pushes and API calls.
	Token string

	// SourceRoot is the local checkout of the source repository that file
	// rules read from. Defaults to the current directory.
	SourceRoot string

	// WorkDir is where target clones are created, one subdirectory per
	// resolved repository. Defaults to a directory under the OS temp dir.
	WorkDir string

	// DryRun materializes and previews changes without branching, pushing,
	// or touching pull requests.
	DryRun bool

	// Concurrency bounds how many repositories sync in parallel.
	Concurrency int

	// SkipCleanup leaves working directories on disk after the run.
	SkipCleanup bool
}

// IsInstallationToken reports whether the configured token is a GitHub App
// installation token. Pushes with such a token go through the Git Data API
// so the platform signs the commits.
func (o *Options) IsInstallationToken() bool {
	return strings.HasPrefix(o.Token, installationTokenPrefix)
}

// ApplyDefaults fills unset option fields.
func (o *Options) ApplyDefaults() {
	if o.SourceRoot == "" {
		o.SourceRoot = "."
	}
	if o.WorkDir == "" {
		o.WorkDir = filepath.Join(os.TempDir(), "repo-file-sync")
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
	}
}
