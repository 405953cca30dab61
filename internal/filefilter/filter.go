// Package filefilter implements the File Filter (spec §4.3): matching
// candidate files against the glob/regex patterns in a CollectionConfig.
// Grounded on original_source/src/core/file_filter.py, reworked into the
// teacher's plain helper style with a mutex-guarded cache (see
// internal/maintenance/paths.go in the teacher repo for the register).
package filefilter

import (
	"path/filepath"
	"regexp"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"collector/internal/apperrors"
	"collector/internal/types"
)

// Filter matches files against a set of PatternSpecs, memoizing results
// per (path, pattern, kind) so a repeated test of the same file and
// pattern does not recompile the pattern. The cache is mutex-guarded, so
// one Filter may be shared between goroutines.
type Filter struct {
	mu    sync.Mutex
	cache map[cacheKey]bool
}

type cacheKey struct {
	path    string
	pattern string
	kind    types.PatternKind
}

// New returns a ready-to-use Filter with an empty cache.
func New() *Filter {
	return &Filter{cache: make(map[cacheKey]bool)}
}

// Match reports whether path satisfies pattern. Glob patterns are matched
// against the file's basename; regex patterns are searched (unanchored)
// against the full path string.
func (f *Filter) Match(path string, pattern types.PatternSpec) (bool, error) {
	key := cacheKey{path: path, pattern: pattern.Pattern, kind: pattern.Kind}

	f.mu.Lock()
	if cached, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return cached, nil
	}
	f.mu.Unlock()

	var result bool
	var err error
	switch pattern.Kind {
	case types.Regex:
		result, err = matchRegex(pattern.Pattern, path)
	default:
		result, err = matchGlob(pattern.Pattern, path)
	}
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	f.cache[key] = result
	f.mu.Unlock()
	return result, nil
}

func matchRegex(pattern, path string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, apperrors.Wrap(apperrors.FilterError, "invalid regex pattern: "+pattern, err)
	}
	return re.MatchString(path), nil
}

func matchGlob(pattern, path string) (bool, error) {
	ok, err := doublestar.Match(pattern, filepath.Base(path))
	if err != nil {
		return false, apperrors.Wrap(apperrors.FilterError, "invalid glob pattern: "+pattern, err)
	}
	return ok, nil
}

// FilterFiles returns the subset of paths that match at least one of
// patterns. When patterns is empty every path is kept, matching the
// original's "no filter configured" behavior.
func (f *Filter) FilterFiles(paths []string, patterns []types.PatternSpec) ([]string, error) {
	if len(patterns) == 0 {
		return paths, nil
	}

	kept := make([]string, 0, len(paths))
	for _, path := range paths {
		for _, pattern := range patterns {
			matched, err := f.Match(path, pattern)
			if err != nil {
				return nil, err
			}
			if matched {
				kept = append(kept, path)
				break
			}
		}
	}
	return kept, nil
}

// Invalidate clears the match cache. Callers should invoke it between
// unrelated collection jobs sharing one Filter instance.
func (f *Filter) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[cacheKey]bool)
}
