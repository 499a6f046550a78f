package config

// Default values applied to the configuration at load time.
const (
	// SourceRepoNameToken is the literal placeholder in branch prefix
	// templates that is replaced with the source repository's name.
	SourceRepoNameToken = "SOURCE_REPO_NAME"

	// DefaultBranchPrefix is the sync branch prefix template. SOURCE_REPO_NAME
	// is replaced with the source repository's name at branch creation.
	DefaultBranchPrefix = "repo-sync/SOURCE_REPO_NAME"

	// DefaultCommitPrefix starts generated commit messages.
	DefaultCommitPrefix = "chore(sync):"

	// DefaultPRLabel is attached to every sync pull request.
	DefaultPRLabel = "automated-sync"
)

// ApplyDefaults fills unset configuration fields with their defaults.
// Safe to call on a nil config.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Defaults.BranchPrefix == "" {
		cfg.Defaults.BranchPrefix = DefaultBranchPrefix
	}
	if cfg.Defaults.CommitPrefix == "" {
		cfg.Defaults.CommitPrefix = DefaultCommitPrefix
	}
	if cfg.Defaults.OverwriteExistingPR == nil {
		overwrite := true
		cfg.Defaults.OverwriteExistingPR = &overwrite
	}
	if cfg.Defaults.CommitEachFile == nil {
		commitEach := true
		cfg.Defaults.CommitEachFile = &commitEach
	}
	if len(cfg.Defaults.PRLabels) == 0 {
		cfg.Defaults.PRLabels = []string{DefaultPRLabel}
	}

	for ti := range cfg.Targets {
		target := &cfg.Targets[ti]
		for fi := range target.Files {
			ApplyRuleDefaults(&target.Files[fi])
		}
	}
}

// ApplyRuleDefaults normalizes a single file rule.
// If rule is nil, the function returns immediately without panic.
func ApplyRuleDefaults(rule *FileRule) {
	if rule == nil {
		return
	}
	if rule.Dest == "" {
		rule.Dest = rule.Source
	}
	if rule.Replace == nil {
		replace := true
		rule.Replace = &replace
	}
}
