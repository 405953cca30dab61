// Package validate implements the Validator (spec §4.2): the preflight
// check a CollectionConfig passes through before any file is touched.
// Grounded on original_source/src/core/validator.py, reworked into the
// teacher's plain validation-helper style (see
// internal/maintenance/paths.go in the teacher repo for the register).
package validate

import (
	"fmt"
	"os"
	"regexp"

	"collector/internal/apperrors"
	"collector/internal/types"
)

// redosCanaries mirrors original_source's _check_redos_pattern: regex
// shapes whose catastrophic-backtracking risk we refuse rather than try
// to bound at runtime.
var redosCanaries = []*regexp.Regexp{
	regexp.MustCompile(`\(.*\+.*\)\+`),
	regexp.MustCompile(`\(.*\*.*\)\*`),
	regexp.MustCompile(`\(.*\?.*\)\?`),
	regexp.MustCompile(`\(.*\{.*,.*\}.*\)\+`),
	regexp.MustCompile(`\(.*\{.*,.*\}.*\)\*`),
}

// PathExists reports whether path is non-empty, not ".", and present on
// disk.
func PathExists(path string) bool {
	if path == "" || path == "." {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// HasDiskSpace reports whether the filesystem backing path has at least
// requiredBytes free. If path is a file its parent directory is checked
// instead.
func HasDiskSpace(path string, requiredBytes uint64) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	checkPath := path
	if !info.IsDir() {
		checkPath = parentOf(path)
		if checkPath == "" {
			return false, nil
		}
	}

	free, err := freeBytes(checkPath)
	if err != nil {
		return false, apperrors.Wrap(apperrors.PathError, "check disk space for path: "+path, err)
	}
	return free >= requiredBytes, nil
}

func parentOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				return "/"
			}
			return path[:i]
		}
	}
	return ""
}

// isRedosPattern reports whether pattern matches one of the canary shapes
// known to cause catastrophic backtracking.
func isRedosPattern(pattern string) bool {
	for _, canary := range redosCanaries {
		if canary.MatchString(pattern) {
			return true
		}
	}
	return false
}

// Config checks cfg against every constraint in spec §4.2, returning the
// first violation found as a Validation-tagged error.
func Config(cfg types.CollectionConfig) error {
	if len(cfg.SourcePaths) == 0 {
		return apperrors.New(apperrors.Validation, "source_paths cannot be empty")
	}
	if len(cfg.SourcePaths) > types.MaxSourcePaths {
		return apperrors.New(apperrors.Validation,
			fmt.Sprintf("too many source paths: %d (max: %d)", len(cfg.SourcePaths), types.MaxSourcePaths))
	}

	for _, sourcePath := range cfg.SourcePaths {
		if len(sourcePath) > types.MaxPathLength {
			return apperrors.New(apperrors.Validation, tooLong("source path", sourcePath, types.MaxPathLength))
		}
		if !PathExists(sourcePath) {
			return apperrors.New(apperrors.Validation, "source path does not exist: "+sourcePath)
		}
		info, err := os.Stat(sourcePath)
		if err != nil || !info.IsDir() {
			return apperrors.New(apperrors.Validation, "source path is not a directory: "+sourcePath)
		}
	}

	if len(cfg.TargetPath) > types.MaxPathLength {
		return apperrors.New(apperrors.Validation, tooLong("target path", cfg.TargetPath, types.MaxPathLength))
	}

	targetParent := parentOf(cfg.TargetPath)
	if targetParent != "" && !PathExists(targetParent) {
		return apperrors.New(apperrors.Validation, "target path parent does not exist: "+targetParent)
	}

	if info, err := os.Stat(cfg.TargetPath); err == nil && !info.IsDir() {
		return apperrors.New(apperrors.Validation, "target path exists but is not a directory: "+cfg.TargetPath)
	}

	for _, pattern := range cfg.Patterns {
		if len(pattern.Pattern) > types.MaxPatternLength {
			return apperrors.New(apperrors.Validation, tooLong("pattern", pattern.Pattern, types.MaxPatternLength))
		}
		if pattern.Kind == types.Regex && isRedosPattern(pattern.Pattern) {
			return apperrors.New(apperrors.Validation,
				"potentially dangerous regex pattern detected (ReDoS): "+pattern.Pattern)
		}
	}

	return nil
}

func tooLong(label, value string, limit int) string {
	return fmt.Sprintf("%s too long: %d characters (max: %d)", label, len(value), limit)
}
