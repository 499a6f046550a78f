package sync

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mrz1836/repo-file-sync/internal/diff"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
)

const diffContextLines = 3

// SyntheticDiff builds a unified diff for content git does not know yet,
// such as untracked files in a dry run.
func SyntheticDiff(path string, before, after []byte) (string, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  diffContextLines,
	})
	if err != nil {
		return "", appErrors.WrapWithContext(err, "build synthetic diff for "+path)
	}
	return text, nil
}

// Preview returns the per-file diffs a run would commit: the working tree
// diff against HEAD, plus synthetic diffs for untracked files, which a
// plain diff does not cover.
func (s *Session) Preview(ctx context.Context) ([]diff.FileDiff, error) {
	raw, err := s.git.Diff(ctx, s.workingDir, "")
	if err != nil {
		return nil, err
	}
	diffs := diff.ParseUnifiedDiff(raw)

	untracked, err := s.untrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	for _, rel := range untracked {
		content, err := os.ReadFile(filepath.Join(s.workingDir, filepath.FromSlash(rel))) //#nosec G304 -- Path comes from git status
		if err != nil {
			return nil, appErrors.WrapWithContext(err, "read untracked file "+rel)
		}

		body, err := SyntheticDiff(rel, nil, content)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, diff.FileDiff{Path: rel, Body: strings.TrimSpace(body)})
	}

	return diffs, nil
}

// untrackedFiles lists untracked paths from porcelain status, expanding
// untracked directories into their files.
func (s *Session) untrackedFiles(ctx context.Context) ([]string, error) {
	status, err := s.git.Status(ctx, s.workingDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(status, "\n") {
		if !strings.HasPrefix(line, "?? ") {
			continue
		}
		rel := strings.Trim(strings.TrimSpace(line[3:]), `"`)

		if strings.HasSuffix(rel, "/") {
			sub, err := Walk(filepath.Join(s.workingDir, filepath.FromSlash(rel)))
			if err != nil {
				return nil, err
			}
			for _, f := range sub {
				files = append(files, path.Join(rel, f))
			}
			continue
		}
		files = append(files, rel)
	}

	return files, nil
}
