// Package diff parses raw git diff output into structured form: unified
// diff text into per-file bodies, and diff-tree listings into per-blob
// change entries.
package diff

import (
	"strings"
)

const (
	fileHeaderMarker = "diff --git"
	newFilePrefix    = "+++ b/"
	oldFilePrefix    = "--- a/"
	devNull          = "/dev/null"

	// DeletedMode is the mode a diff-tree entry reports for a deleted blob.
	DeletedMode = "000000"
)

// FileDiff is one file's slice of a unified diff: the path and the hunk
// body that follows the header block.
type FileDiff struct {
	Path string
	Body string
}

// TreeDiffEntry is one row of a diff-tree listing between two tree objects.
type TreeDiffEntry struct {
	NewMode      string
	PreviousMode string
	NewBlob      string
	PreviousBlob string
	Change       string
	Path         string
}

// IsDeletion reports whether the entry removes a blob.
func (e TreeDiffEntry) IsDeletion() bool {
	return e.NewMode == DeletedMode
}

// ParseUnifiedDiff splits unified diff text into per-file diffs, in diff
// output order. Segments without a "+++" header line carry no textual diff
// (binary files) and are dropped.
func ParseUnifiedDiff(text string) []FileDiff {
	var diffs []FileDiff

	for _, segment := range strings.Split(text, fileHeaderMarker) {
		if strings.TrimSpace(segment) == "" {
			continue
		}

		lines := strings.Split(segment, "\n")
		headerIdx := -1
		for i, line := range lines {
			if strings.HasPrefix(line, "+++ ") {
				headerIdx = i
				break
			}
		}
		if headerIdx < 0 {
			// Binary file: no textual diff to report.
			continue
		}

		path := extractPath(lines, headerIdx)
		if path == "" {
			continue
		}

		body := strings.TrimSpace(strings.Join(lines[headerIdx+1:], "\n"))
		diffs = append(diffs, FileDiff{Path: path, Body: body})
	}

	return diffs
}

// DiffMap returns the unified diff as a path to body mapping.
func DiffMap(text string) map[string]string {
	diffs := ParseUnifiedDiff(text)
	m := make(map[string]string, len(diffs))
	for _, d := range diffs {
		m[d.Path] = d.Body
	}
	return m
}

// extractPath takes the path from the new-file header line, falling back to
// the preceding old-file line for deletions where the new side is /dev/null.
func extractPath(lines []string, headerIdx int) string {
	newLine := lines[headerIdx]
	if strings.HasPrefix(newLine, newFilePrefix) {
		return newLine[len(newFilePrefix):]
	}

	// Deleted file: "+++ /dev/null", the old-file line holds the path.
	if strings.Contains(newLine, devNull) && headerIdx > 0 {
		oldLine := lines[headerIdx-1]
		if strings.HasPrefix(oldLine, oldFilePrefix) {
			return oldLine[len(oldFilePrefix):]
		}
	}

	return ""
}

// ParseTreeDiff parses diff-tree output between two commit trees. Each
// non-empty line carries six whitespace or tab delimited fields in fixed
// order: previous mode, new mode, previous blob id, new blob id, change
// code, path. A leading ':' is stripped first.
func ParseTreeDiff(text string) []TreeDiffEntry {
	var entries []TreeDiffEntry

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, ":")

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t'
		})
		if len(fields) < 6 {
			continue
		}

		entries = append(entries, TreeDiffEntry{
			PreviousMode: fields[0],
			NewMode:      fields[1],
			PreviousBlob: fields[2],
			NewBlob:      fields[3],
			Change:       fields[4],
			Path:         strings.Join(fields[5:], " "),
		})
	}

	return entries
}
