// Package collector implements the Collection Service (spec §4.8): the
// orchestrator that wires the sanitizer, filter, worker pool, and
// progress tracker together into one Collect() call. Grounded on
// original_source/src/core/collection_service.py.
package collector

import (
	"os"
	"path/filepath"
)

// discoverFiles walks every entry in paths, collecting the full set of
// regular files found. A path that is itself a regular file is included
// directly; a directory is walked recursively, matching the original's
// rglob("*") sweep.
func discoverFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// isRegularFile reports whether path names a file (not a directory) on
// disk, treating a stat error as "not a file".
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
