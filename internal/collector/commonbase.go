package collector

import (
	"path/filepath"
	"strings"
)

// findCommonBase picks the source-path directory that the collected
// files should be treated as relative to, matching original_source's
// _find_common_base. With more than one source path, relative layout
// under the first source's parent is the tie-break; with exactly one
// source path, that path (or its parent, if it is a file) is the base.
func findCommonBase(files, sourcePaths []string) (string, error) {
	resolved := make([]string, len(sourcePaths))
	for i, p := range sourcePaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		resolved[i] = abs
	}

	if len(resolved) == 1 {
		return dirIfFile(resolved[0]), nil
	}

	if len(files) == 0 {
		return filepath.Dir(resolved[0]), nil
	}

	return filepath.Dir(dirIfFile(resolved[0])), nil
}

// dirIfFile returns the parent of path if path names an existing regular
// (non-directory) file on disk, and path unchanged otherwise — including
// when path does not exist. The check stats the filesystem, mirroring
// _find_common_base's is_file() special case on the resolved source path.
func dirIfFile(path string) string {
	if isRegularFile(path) {
		return filepath.Dir(path)
	}
	return path
}

// relativeSubpath computes the path of file relative to base, matching
// original_source's resolved.relative_to(src_resolved) with a fallback to
// the bare filename when file does not descend from base.
func relativeSubpath(file, base string) string {
	rel, err := filepath.Rel(base, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(file)
	}
	return rel
}
