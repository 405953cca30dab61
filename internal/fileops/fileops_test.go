package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"collector/internal/types"
)

type recordingAudit struct {
	ops  []string
	errs []string
}

func (r *recordingAudit) LogOperation(operation, source, target string) {
	r.ops = append(r.ops, operation)
}

func (r *recordingAudit) LogError(operation string, err error, source, target string) {
	r.errs = append(r.errs, operation)
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCopyStrategy_PreservesContentAndSucceeds(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	source := writeTemp(t, src, "a.txt", "hello")
	target := filepath.Join(dst, "nested", "a.txt")

	ops := NewOperations(types.Copy)
	if err := ops.Execute(source, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("target not written: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("content mismatch: %q", got)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("expected source to still exist after copy: %v", err)
	}
}

func TestMoveStrategy_RemovesSource(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	source := writeTemp(t, src, "a.txt", "hello")
	target := filepath.Join(dst, "a.txt")

	ops := NewOperations(types.Move)
	if err := ops.Execute(source, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected source removed after move, stat err = %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected target to exist: %v", err)
	}
}

func TestMoveRemoveStrategy_Succeeds(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	source := writeTemp(t, src, "a.txt", "hello")
	target := filepath.Join(dst, "a.txt")

	ops := NewOperations(types.MoveRemove)
	if err := ops.Execute(source, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected source removed")
	}
}

func TestOperations_AuditsSuccessAndFailure(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	source := writeTemp(t, src, "a.txt", "hello")
	target := filepath.Join(dst, "a.txt")

	audit := &recordingAudit{}
	ops := NewOperations(types.Copy)
	ops.SetAuditSink(audit)

	if err := ops.Execute(source, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.ops) != 1 || audit.ops[0] != "copy" {
		t.Fatalf("expected one copy operation logged, got %v", audit.ops)
	}

	if err := ops.Execute(filepath.Join(src, "missing.txt"), target); err == nil {
		t.Fatalf("expected error for missing source")
	}
	if len(audit.errs) != 1 {
		t.Fatalf("expected one error logged, got %v", audit.errs)
	}
}

func TestOperations_RejectsDangerousPath(t *testing.T) {
	ops := NewOperations(types.Copy)
	if err := ops.Execute("/tmp/bad<name", "/tmp/out.txt"); err == nil {
		t.Fatalf("expected rejection of dangerous source path")
	}
}
