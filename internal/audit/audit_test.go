package audit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_NullSinkDoesNotError(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("unexpected error building null sink: %v", err)
	}
	l.LogOperation("copy", "/a", "/b")
	l.LogError("copy", errors.New("boom"), "/a", "/b")
	l.LogSecurityEvent("traversal", "../etc/passwd")
	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error closing null sink: %v", err)
	}
}

func TestLogger_WritesOperationsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer l.Close()

	l.LogOperation("copy", "/src/a.log", "/dst/a.log")
	l.LogError("move", errors.New("disk full"), "/src/b.log", "/dst/b.log")
	l.LogSecurityEvent("dangerous character", "/src/<bad>")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error reading audit log: %v", err)
	}
	content := string(data)
	for _, want := range []string{"\"event\":\"operation\"", "\"event\":\"error\"", "\"event\":\"security\"", "disk full"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected audit log to contain %q, got: %s", want, content)
		}
	}
}
