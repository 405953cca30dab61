package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"collector/internal/progress"
	"collector/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Scenario 1 (spec §8): copy with a glob pattern keeps only matches and
// leaves the source tree untouched.
func TestCollect_CopyGlobPattern(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "a.log", "A")
	writeFile(t, src, "b.log", "B")
	writeFile(t, src, "c.txt", "C")

	cfg := types.CollectionConfig{
		SourcePaths:   []string{src},
		TargetPath:    dst,
		Patterns:      []types.PatternSpec{{Pattern: "*.log", Kind: types.Glob}},
		OperationMode: types.Copy,
	}

	result, err := New().Collect(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, types.CollectionResult{
		TotalFiles:     2,
		ProcessedFiles: 2,
		FailedFiles:    0,
		TargetPath:     dst,
	}, result)

	if got := readFile(t, filepath.Join(dst, "a.log")); got != "A" {
		t.Fatalf("expected a.log=%q, got %q", "A", got)
	}
	if got := readFile(t, filepath.Join(dst, "b.log")); got != "B" {
		t.Fatalf("expected b.log=%q, got %q", "B", got)
	}
	if _, err := os.Stat(filepath.Join(dst, "c.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected c.txt to be excluded from target")
	}
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		if _, err := os.Stat(filepath.Join(src, name)); err != nil {
			t.Fatalf("expected source file %s to remain after copy: %v", name, err)
		}
	}
}

// Scenario 2 (spec §8): move leaves no source files behind.
func TestCollect_MoveRemovesSource(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, src, "file"+string(rune('0'+i))+".txt", "data")
	}

	cfg := types.CollectionConfig{
		SourcePaths:   []string{src},
		TargetPath:    dst,
		Patterns:      []types.PatternSpec{{Pattern: "*.txt", Kind: types.Glob}},
		OperationMode: types.Move,
	}

	result, err := New().Collect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProcessedFiles != 5 {
		t.Fatalf("expected 5 processed files, got %d", result.ProcessedFiles)
	}

	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 files in target, got %d", len(entries))
	}

	srcEntries, err := os.ReadDir(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(srcEntries) != 0 {
		t.Fatalf("expected source directory to be empty after move, got %d entries", len(srcEntries))
	}
}

// Scenario 3 (spec §8): a regex pattern keeps only the matching file.
func TestCollect_RegexPattern(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "error.log", "E")
	writeFile(t, src, "warn.log", "W")
	writeFile(t, src, "info.txt", "I")

	cfg := types.CollectionConfig{
		SourcePaths:   []string{src},
		TargetPath:    dst,
		Patterns:      []types.PatternSpec{{Pattern: `error.*\.log$`, Kind: types.Regex}},
		OperationMode: types.Copy,
	}

	result, err := New().Collect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFiles != 1 {
		t.Fatalf("expected 1 total file, got %d", result.TotalFiles)
	}
	if _, err := os.Stat(filepath.Join(dst, "error.log")); err != nil {
		t.Fatalf("expected error.log in target: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "warn.log")); !os.IsNotExist(err) {
		t.Fatalf("expected warn.log to be excluded")
	}
}

// Scenario 4 (spec §8): progress callbacks fire at least once per file on
// a small job, and the last invocation reports completion.
func TestCollect_ProgressCallbacksReachCompletion(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, src, "f"+string(rune('0'+i))+".txt", "x")
	}

	svc := New()
	var calls int
	var lastCurrent, lastTotal int
	var lastPct float64
	svc.Subscribe(func(s progress.Snapshot) {
		calls++
		lastCurrent = s.Current
		lastTotal = s.Total
		lastPct = s.Percentage()
	})

	cfg := types.CollectionConfig{
		SourcePaths:   []string{src},
		TargetPath:    dst,
		OperationMode: types.Copy,
	}

	if _, err := svc.Collect(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls < 10 {
		t.Fatalf("expected at least one progress callback per file (10), got %d", calls)
	}
	if lastCurrent != 10 || lastTotal != 10 || lastPct != 100.0 {
		t.Fatalf("expected final callback (10,10,100.0), got (%d,%d,%v)", lastCurrent, lastTotal, lastPct)
	}
}

// Boundary (spec §8): zero kept files yields a zeroed result without
// touching the worker pool.
func TestCollect_NoMatchesReturnsZeroResult(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "a.txt", "A")

	cfg := types.CollectionConfig{
		SourcePaths:   []string{src},
		TargetPath:    dst,
		Patterns:      []types.PatternSpec{{Pattern: "*.log", Kind: types.Glob}},
		OperationMode: types.Copy,
	}

	result, err := New().Collect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFiles != 0 || result.ProcessedFiles != 0 || result.FailedFiles != 0 {
		t.Fatalf("expected zeroed result, got %+v", result)
	}
}

// Audit logging: enabling it produces an on-disk record of each
// successful transfer for the job.
func TestCollect_AuditLoggingWritesRecords(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "a.txt", "A")
	auditPath := filepath.Join(t.TempDir(), "audit.log")

	cfg := types.CollectionConfig{
		SourcePaths:        []string{src},
		TargetPath:         dst,
		OperationMode:      types.Copy,
		EnableAuditLogging: true,
		AuditLogFile:       auditPath,
	}

	if _, err := New().Collect(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("expected audit log file to be written: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty audit log")
	}
}

// Validation failures abort before any worker is spawned.
func TestCollect_ValidationFailureNoWorkers(t *testing.T) {
	cfg := types.CollectionConfig{
		SourcePaths:   []string{filepath.Join(t.TempDir(), "does-not-exist")},
		TargetPath:    t.TempDir(),
		OperationMode: types.Copy,
	}

	_, err := New().Collect(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected validation error for missing source path")
	}
}
