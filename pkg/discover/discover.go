// Package discover finds catalogue scripts on disk.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/scriptcat/pkg/ignore"
	"github.com/fulmenhq/scriptcat/pkg/logger"
)

// Options controls a discovery walk.
type Options struct {
	// Suffix selects script files, e.g. ".shelly.js".
	Suffix string
	// ExcludeDirs are directory names pruned wherever they appear.
	ExcludeDirs []string
	// ExcludePatterns are doublestar globs matched against root-relative paths.
	ExcludePatterns []string
	// UseIgnoreFiles applies .gitignore and .scriptcatignore under the root.
	UseIgnoreFiles bool
}

// Scripts walks root and returns every matching file as a root-relative,
// slash-separated path, sorted.
func Scripts(root string, opts Options) ([]string, error) {
	if opts.Suffix == "" {
		return nil, fmt.Errorf("discovery needs a file suffix")
	}

	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excluded[d] = true
	}

	var matcher *ignore.Matcher
	if opts.UseIgnoreFiles {
		m, err := ignore.NewMatcher(root)
		if err != nil {
			return nil, err
		}
		matcher = m
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if excluded[d.Name()] {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.Match(rel, true) {
				logger.Trace("Skipping ignored directory", logger.String("dir", rel))
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), opts.Suffix) {
			return nil
		}
		if MatchesAny(rel, opts.ExcludePatterns) {
			return nil
		}
		if matcher != nil && matcher.Match(rel, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery walk failed: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// MatchesAny reports whether a slash-separated path matches one of the
// doublestar patterns. Patterns without a slash also match the base name.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		normalized := filepath.ToSlash(filepath.Clean(strings.ReplaceAll(pattern, "\\", "/")))
		if matched, err := doublestar.Match(normalized, path); err == nil && matched {
			return true
		}
		if !strings.Contains(normalized, "/") {
			if matched, err := doublestar.Match(normalized, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}
