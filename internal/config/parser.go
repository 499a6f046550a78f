package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, parses, defaults, and validates a configuration file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path) //#nosec G304 -- Path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromReader parses configuration from any reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolveRepositories converts target entries into Repository descriptors,
// disambiguating duplicates that address the same repository and branch so
// each rule group gets its own working directory on disk.
func (c *Config) ResolveRepositories() ([]Repository, error) {
	seen := make(map[string]int, len(c.Targets))
	repos := make([]Repository, 0, len(c.Targets))

	for _, target := range c.Targets {
		repo, err := ParseRepository(target.Repo)
		if err != nil {
			return nil, err
		}
		if target.Branch != "" {
			repo.Branch = target.Branch
			repo.UniqueName = repo.uniqueName()
		}

		if n := seen[repo.UniqueName]; n > 0 {
			seen[repo.UniqueName] = n + 1
			repo.UniqueName = fmt.Sprintf("%s-%d", repo.UniqueName, n)
		} else {
			seen[repo.UniqueName] = 1
		}

		repos = append(repos, repo)
	}

	return repos, nil
}
