package config

import (
	"fmt"
	"strings"

	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
)

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.Source.Repo == "" {
		return fmt.Errorf("%w: source.repo", appErrors.ErrInvalidConfig)
	}
	if !isRepoFormat(c.Source.Repo) {
		return appErrors.FormatError("source.repo", c.Source.Repo, "owner/repo")
	}

	if len(c.Targets) == 0 {
		return appErrors.ErrNoRepositories
	}

	for i, target := range c.Targets {
		if target.Repo == "" {
			return fmt.Errorf("%w: targets[%d].repo", appErrors.ErrInvalidConfig, i)
		}
		if !isRepoFormat(strings.SplitN(target.Repo, "@", 2)[0]) {
			return appErrors.FormatError(fmt.Sprintf("targets[%d].repo", i), target.Repo, "owner/repo")
		}
		if len(target.Files) == 0 {
			return fmt.Errorf("%w: targets[%d] has no file rules", appErrors.ErrInvalidConfig, i)
		}
		for j, rule := range target.Files {
			if rule.Source == "" {
				return fmt.Errorf("%w: targets[%d].files[%d].src", appErrors.ErrInvalidConfig, i, j)
			}
		}
	}

	return nil
}

func isRepoFormat(repo string) bool {
	parts := strings.Split(repo, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}
