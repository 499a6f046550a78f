package sync

import (
	"io/fs"
	"path/filepath"
	"sort"

	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
)

// Walk returns every regular file under root as sorted, slash-separated
// paths relative to root. The listing is a pure function of the directory
// contents.
func Walk(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "walk directory "+root)
	}

	sort.Strings(files)
	return files, nil
}
