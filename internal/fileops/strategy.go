// Package fileops implements the Operation Strategies and File Operations
// facade (spec §4.4/§4.5): the code that actually moves bytes once a file
// has cleared filtering. Grounded on
// original_source/src/core/file_operations.py for the strategy shapes,
// and on the teacher's internal/maintenance/backup.go for the streaming
// copy-via-temp-file-then-rename idiom this package reuses.
package fileops

import (
	"io"
	"os"
	"path/filepath"

	"collector/internal/apperrors"
	"collector/internal/security"
	"collector/internal/types"
)

// Strategy executes one file transfer from source to target. Callers are
// responsible for path security checks before Execute is invoked; a
// Strategy assumes both paths are already sanitized.
type Strategy interface {
	Execute(source, target string) error
	Name() string
}

// StrategyFor returns the Strategy implementing mode.
func StrategyFor(mode types.OperationMode) Strategy {
	switch mode {
	case types.Move:
		return moveStrategy{}
	case types.MoveRemove:
		return moveRemoveStrategy{}
	default:
		return copyStrategy{}
	}
}

type copyStrategy struct{}

func (copyStrategy) Name() string { return "copy" }

// Execute streams source into target via a temporary file in target's
// directory, then renames into place, matching the teacher's
// copyfileStream pattern. File mode and modification time are preserved
// to match shutil.copy2's semantics in the original.
func (copyStrategy) Execute(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp := target + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	closeOK := false
	defer func() {
		_ = out.Close()
		if !closeOK {
			_ = os.Remove(tmp)
		}
	}()

	buf := make([]byte, 256*1024)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	closeOK = true

	if err := os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		return err
	}

	return os.Rename(tmp, target)
}

type moveStrategy struct{}

func (moveStrategy) Name() string { return "move" }

// Execute renames source to target; if os.Rename fails for any reason
// (for example across filesystems) it falls back to copy-then-delete,
// matching shutil.move's fallback behavior in the original.
func (moveStrategy) Execute(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.Rename(source, target); err == nil {
		return nil
	}
	if err := (copyStrategy{}).Execute(source, target); err != nil {
		return err
	}
	return os.Remove(source)
}

type moveRemoveStrategy struct{}

func (moveRemoveStrategy) Name() string { return "move_remove" }

// Execute behaves like moveStrategy, then additionally unlinks source if
// it is still present — guarding against a rename that, on some
// filesystems, leaves the source link intact.
func (moveRemoveStrategy) Execute(source, target string) error {
	if err := (moveStrategy{}).Execute(source, target); err != nil {
		return err
	}
	if _, err := os.Stat(source); err == nil {
		return os.Remove(source)
	}
	return nil
}

// validatePathSecurity re-checks a path against the full sanitizer
// (length, dangerous-character and reserved-name rules) immediately
// before a transfer, per the original's belt-and-braces
// _validate_path_security call.
func validatePathSecurity(path string) error {
	if len(path) > security.MaxPathLength {
		return apperrors.New(apperrors.SecurityViolation, "path exceeds maximum length")
	}
	if _, err := security.Sanitize(path); err != nil {
		return err
	}
	return nil
}
