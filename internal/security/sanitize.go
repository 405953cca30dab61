// Package security implements the Path Sanitizer (spec §4.1): the single
// place every user-supplied path passes through before it touches the
// filesystem. Grounded on original_source/src/core/path_sanitizer.py,
// reworked into the teacher's plain, heavily-commented filesystem-helper
// style (see internal/utils/path.go for the register to match).
package security

import (
	"fmt"
	"path/filepath"
	"strings"

	"collector/internal/apperrors"
)

// Sanitize normalizes raw and rejects it with SecurityViolation if any of:
// length > MaxPathLength; any segment contains a dangerous byte; any
// segment is a reserved name. On success it returns the normalized
// absolute path.
func Sanitize(raw string) (string, error) {
	if len(raw) > MaxPathLength {
		return "", apperrors.New(apperrors.SecurityViolation,
			fmt.Sprintf("path exceeds maximum length (%d): %d characters", MaxPathLength, len(raw)))
	}

	for _, segment := range splitSegments(raw) {
		if c, bad := hasDangerousChar(segment); bad {
			return "", apperrors.New(apperrors.SecurityViolation,
				fmt.Sprintf("dangerous character detected in path component: %q", c))
		}
		if isWindowsReserved(segment) || isPosixReserved(segment) {
			return "", apperrors.New(apperrors.SecurityViolation,
				fmt.Sprintf("reserved name detected: %q", segment))
		}
	}

	normalized := filepath.Clean(raw)
	absolute, err := filepath.Abs(normalized)
	if err != nil {
		return "", apperrors.Wrap(apperrors.SecurityViolation, "resolve absolute path", err)
	}
	return absolute, nil
}

// splitSegments breaks raw into path components the same way the original
// sanitizer does: on '/' only (backslashes are treated as literal bytes,
// not separators, matching pathlib.Path(...).parts on a POSIX host).
func splitSegments(raw string) []string {
	parts := strings.Split(raw, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsWithin reports whether candidate is base itself, or lies strictly
// beneath base, after resolving symlinks on both sides. A failure to
// resolve either side (e.g. candidate does not yet exist) falls back to
// a lexical comparison of the cleaned absolute paths.
func IsWithin(candidate, base string) bool {
	candAbs, err1 := filepath.Abs(candidate)
	baseAbs, err2 := filepath.Abs(base)
	if err1 != nil || err2 != nil {
		return false
	}

	candResolved, err := filepath.EvalSymlinks(candAbs)
	if err != nil {
		candResolved = filepath.Clean(candAbs)
	}
	baseResolved, err := filepath.EvalSymlinks(baseAbs)
	if err != nil {
		baseResolved = filepath.Clean(baseAbs)
	}

	if candResolved == baseResolved {
		return true
	}

	rel, err := filepath.Rel(baseResolved, candResolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ResolveWithin joins base and relative, rejecting any result that would
// escape base. An absolute relative is rejected outright. Backslash-style
// traversal segments (Windows paths handed to a POSIX host) are detected
// by normalizing backslashes before the ".." scan, matching
// original_source's resolve_path.
func ResolveWithin(base, relative string) (string, error) {
	baseNormalized, err := Sanitize(base)
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(relative) {
		return "", apperrors.New(apperrors.SecurityViolation,
			fmt.Sprintf("absolute paths are not allowed: %s", relative))
	}

	normalizedForCheck := strings.ReplaceAll(relative, "\\", "/")
	if strings.Contains(normalizedForCheck, "..") {
		candidate := filepath.Join(baseNormalized, normalizedForCheck)
		if !IsWithin(candidate, baseNormalized) {
			return "", apperrors.New(apperrors.SecurityViolation,
				fmt.Sprintf("path traversal detected: %s", relative))
		}
	}

	resolved := filepath.Join(baseNormalized, relative)
	if !IsWithin(resolved, baseNormalized) {
		return "", apperrors.New(apperrors.SecurityViolation,
			fmt.Sprintf("resolved path is outside base directory: %s", resolved))
	}

	return resolved, nil
}
