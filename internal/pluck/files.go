package pluck

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExclude is always applied by Files.
var DefaultExclude = []string{"**/node_modules/**"}

// Match returns the supported source files under root matching any include
// pattern and no exclude pattern. Patterns use doublestar syntax relative to
// root; results are slash-separated, relative to root and sorted.
func Match(root string, include, exclude []string) ([]string, error) {
	fsys := os.DirFS(root)
	excludes := append(slices.Clone(DefaultExclude), exclude...)
	for _, pattern := range append(slices.Clone(include), excludes...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !Supported(m) || excluded(m, excludes) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		// Patterns were validated by Match.
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// Files scans every file Match selects. Queries come back ordered by file
// and then by position. A file that cannot be read or parsed contributes an
// error and does not stop the scan; cancellation does.
func Files(ctx context.Context, root string, include, exclude []string) ([]Query, []error) {
	paths, err := Match(root, include, exclude)
	if err != nil {
		return nil, []error{err}
	}

	var queries []Query
	var errs []error
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return queries, append(errs, err)
		}
		content, err := fs.ReadFile(os.DirFS(root), rel)
		if err != nil {
			errs = append(errs, fmt.Errorf("read source: %w", err))
			continue
		}
		found, fileErrs := Source(ctx, filepath.FromSlash(rel), content)
		queries = append(queries, found...)
		errs = append(errs, fileErrs...)
	}
	return queries, errs
}
