package sync

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/repo-file-sync/internal/config"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/logging"
	"github.com/mrz1836/repo-file-sync/internal/transform"
)

// gitMetadataDir is never written to or deleted from.
const gitMetadataDir = ".git"

// Materializer applies file rules to a target working tree: copying or
// template-rendering source content and optionally deleting orphaned
// destination files.
type Materializer struct {
	renderer  transform.Renderer
	logger    *logrus.Logger
	logConfig *logging.LogConfig
}

// NewMaterializer creates a materializer that renders templates with the
// given renderer.
func NewMaterializer(renderer transform.Renderer, logger *logrus.Logger, logConfig *logging.LogConfig) *Materializer {
	return &Materializer{
		renderer:  renderer,
		logger:    logger,
		logConfig: logConfig,
	}
}

// RuleResult records what one rule application did to the working tree.
// Paths are relative to the working tree root, slash separated.
type RuleResult struct {
	Written []string
	Deleted []string
}

// Apply materializes one rule from the source checkout into the target
// working tree. Directory rules walk the source tree and filter each file;
// single-file rules only honor the replace option.
func (m *Materializer) Apply(sourceRoot, workingDir string, rule *config.FileRule) (*RuleResult, error) {
	sourcePath := filepath.Join(sourceRoot, filepath.FromSlash(rule.Source))
	destRel := strings.TrimSuffix(filepath.ToSlash(rule.Dest), "/")
	destPath := filepath.Join(workingDir, filepath.FromSlash(destRel))

	info, err := os.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.ErrSourceNotFound
		}
		return nil, appErrors.WrapWithContext(err, "stat source "+rule.Source)
	}

	if info.IsDir() {
		return m.applyDirectory(sourcePath, destPath, destRel, rule)
	}
	return m.applyFile(sourcePath, destPath, destRel, rule)
}

func (m *Materializer) applyFile(sourcePath, destPath, destRel string, rule *config.FileRule) (*RuleResult, error) {
	if !rule.ShouldReplace() && fileExists(destPath) {
		m.debugSkip(destRel, "destination exists and replace is disabled")
		return &RuleResult{}, nil
	}

	if err := m.writeFile(sourcePath, destPath, rule); err != nil {
		return nil, err
	}
	return &RuleResult{Written: []string{destRel}}, nil
}

func (m *Materializer) applyDirectory(sourcePath, destPath, destRel string, rule *config.FileRule) (*RuleResult, error) {
	sourceFiles, err := Walk(sourcePath)
	if err != nil {
		return nil, err
	}

	result := &RuleResult{}
	sourceSet := make(map[string]bool, len(sourceFiles))

	for _, rel := range sourceFiles {
		sourceSet[rel] = true

		target := filepath.Join(destPath, filepath.FromSlash(rel))
		if skip, reason := m.filtered(rule, rel, target); skip {
			m.debugSkip(path.Join(destRel, rel), reason)
			continue
		}

		if err := m.writeFile(filepath.Join(sourcePath, filepath.FromSlash(rel)), target, rule); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, path.Join(destRel, rel))
	}

	if rule.DeleteOrphaned {
		deleted, err := m.deleteOrphans(destPath, destRel, rule, sourceSet)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
	}

	return result, nil
}

// filtered applies the rule's filter chain to one source-relative path.
// Order: replace guard, exclude set, exclusion patterns, inclusion patterns.
func (m *Materializer) filtered(rule *config.FileRule, rel, destFull string) (bool, string) {
	if !rule.ShouldReplace() && fileExists(destFull) {
		return true, "destination exists and replace is disabled"
	}
	if excludedByList(rule.Exclude, rel) {
		return true, "path is excluded"
	}
	if matchesAny(rule.ExcludeFilePatterns, rel) {
		return true, "path matches an exclusion pattern"
	}
	if len(rule.IncludeFilePatterns) > 0 && !matchesAny(rule.IncludeFilePatterns, rel) {
		return true, "path matches no inclusion pattern"
	}
	return false, ""
}

// deleteOrphans removes destination files that have no source counterpart.
// Files under the git metadata directory and files the rule excludes are
// kept. When the destination root itself is inside the metadata directory
// the cleanup is skipped entirely. A destination that does not exist yet,
// because every source file was filtered out, has no orphans.
func (m *Materializer) deleteOrphans(destPath, destRel string, rule *config.FileRule, sourceSet map[string]bool) ([]string, error) {
	if underGitMetadata(destRel) {
		m.logger.WithField(logging.StandardFields.FilePath, destRel).
			Warn("Skipping orphan cleanup inside git metadata directory")
		return nil, nil
	}

	if _, err := os.Stat(destPath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, appErrors.WrapWithContext(err, "stat destination "+destRel)
	}

	destFiles, err := Walk(destPath)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, rel := range destFiles {
		if sourceSet[rel] || underGitMetadata(rel) {
			continue
		}
		if excludedByList(rule.Exclude, rel) || matchesAny(rule.ExcludeFilePatterns, rel) {
			continue
		}

		if err := os.Remove(filepath.Join(destPath, filepath.FromSlash(rel))); err != nil {
			return nil, appErrors.WrapWithContext(err, "delete orphaned file "+rel)
		}
		deleted = append(deleted, path.Join(destRel, rel))
	}

	return deleted, nil
}

// writeFile copies or renders one source file to the destination, creating
// parent directories and preserving the source file mode.
func (m *Materializer) writeFile(sourcePath, destPath string, rule *config.FileRule) error {
	var content []byte
	var err error

	if rule.Template != nil {
		content, err = m.renderer.Render(sourcePath, rule.Template)
	} else {
		content, err = os.ReadFile(sourcePath) //#nosec G304 -- Path comes from the sync rule
	}
	if err != nil {
		return err
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return appErrors.WrapWithContext(err, "stat source "+sourcePath)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return appErrors.WrapWithContext(err, "create destination directory")
	}
	if err := os.WriteFile(destPath, content, info.Mode().Perm()); err != nil {
		return appErrors.WrapWithContext(err, "write "+destPath)
	}
	return nil
}

func (m *Materializer) debugSkip(rel, reason string) {
	if m.logConfig != nil && m.logConfig.Debug.Transform {
		m.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component: logging.ComponentNames.Sync,
			logging.StandardFields.FilePath:  rel,
			"reason":                         reason,
		}).Debug("Skipping file")
	}
}

// excludedByList reports whether rel matches an exclude entry. Entries with
// a trailing slash exclude the whole directory.
func excludedByList(excludes []string, rel string) bool {
	for _, entry := range excludes {
		entry = filepath.ToSlash(entry)
		if strings.HasSuffix(entry, "/") {
			if strings.HasPrefix(rel, entry) {
				return true
			}
			continue
		}
		if rel == entry {
			return true
		}
	}
	return false
}

// matchesAny reports whether rel matches any glob pattern, testing both the
// full relative path and its base name.
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func underGitMetadata(rel string) bool {
	return rel == gitMetadataDir || strings.HasPrefix(rel, gitMetadataDir+"/")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
