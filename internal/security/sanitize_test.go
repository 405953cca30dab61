package security

import (
	"path/filepath"
	"strings"
	"testing"

	"collector/internal/apperrors"
)

func TestSanitize_LengthBoundary(t *testing.T) {
	// Exactly MaxPathLength is accepted; one byte over is rejected (spec §8).
	base := "/tmp/"
	pad := strings.Repeat("a", MaxPathLength-len(base))
	exact := base + pad
	if len(exact) != MaxPathLength {
		t.Fatalf("setup: want len %d, got %d", MaxPathLength, len(exact))
	}
	if _, err := Sanitize(exact); err != nil {
		t.Fatalf("expected exact-length path to be accepted, got %v", err)
	}

	tooLong := exact + "a"
	if _, err := Sanitize(tooLong); err == nil {
		t.Fatalf("expected over-length path to be rejected")
	}
}

func TestSanitize_DangerousChars(t *testing.T) {
	for _, bad := range []string{"<", ">", "\"", "|", "?", "*"} {
		path := "/tmp/file" + bad + "name.txt"
		if _, err := Sanitize(path); err == nil {
			t.Fatalf("expected rejection for dangerous char %q", bad)
		}
		var ce *apperrors.CollectorError
		_, err := Sanitize(path)
		if err != nil {
			if asErr, ok := err.(*apperrors.CollectorError); ok {
				ce = asErr
			}
			if ce == nil || ce.Kind != apperrors.SecurityViolation {
				t.Fatalf("expected SecurityViolation kind, got %v", err)
			}
		}
	}
}

func TestSanitize_ReservedNames(t *testing.T) {
	for _, name := range []string{"CON", "con", "NUL", "com1", "LPT9"} {
		path := "/tmp/" + name + "/file.txt"
		if _, err := Sanitize(path); err == nil {
			t.Fatalf("expected rejection for reserved name %q", name)
		}
	}
}

func TestSanitize_POSIXReservedDotSegments(t *testing.T) {
	if _, err := Sanitize("/tmp/./ok.txt"); err == nil {
		t.Fatalf("expected rejection for '.' segment")
	}
}

func TestIsWithin(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "file.txt")

	if !IsWithin(dir, dir) {
		t.Fatalf("expected base to be within itself")
	}
	if !IsWithin(nested, dir) {
		t.Fatalf("expected nested path to be within base")
	}

	outside := filepath.Join(filepath.Dir(dir), "elsewhere")
	if IsWithin(outside, dir) {
		t.Fatalf("expected sibling path to be rejected")
	}
}

func TestResolveWithin_TraversalRejected(t *testing.T) {
	// Literal scenario from spec §8: resolve_within("/tmp/base", "../etc/passwd").
	if _, err := ResolveWithin("/tmp/base", "../etc/passwd"); err == nil {
		t.Fatalf("expected SecurityViolation for traversal")
	}
}

func TestResolveWithin_AbsoluteRejected(t *testing.T) {
	if _, err := ResolveWithin("/tmp/base", "/etc/passwd"); err == nil {
		t.Fatalf("expected rejection of absolute relative path")
	}
}

func TestResolveWithin_WindowsStyleTraversal(t *testing.T) {
	if _, err := ResolveWithin("/tmp/base", `..\..\etc\passwd`); err == nil {
		t.Fatalf("expected rejection of backslash-style traversal")
	}
}

func TestResolveWithin_Success(t *testing.T) {
	base := t.TempDir()
	resolved, err := ResolveWithin(base, filepath.Join("sub", "file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsWithin(resolved, base) {
		t.Fatalf("resolved path %q must be within base %q", resolved, base)
	}
}
