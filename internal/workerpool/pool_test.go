package workerpool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"collector/internal/fileops"
	"collector/internal/progress"
	"collector/internal/types"
)

func TestCalculateOptimalWorkers(t *testing.T) {
	if w := calculateOptimalWorkers(0); w < 1 {
		t.Fatalf("expected at least 1 worker for empty load, got %d", w)
	}
	if w := calculateOptimalWorkers(10_000_000); w > MaxWorkers {
		t.Fatalf("expected workers capped at %d, got %d", MaxWorkers, w)
	}
}

func TestCreateBatches_EmptyTasks(t *testing.T) {
	if batches := createBatches(nil, 4); batches != nil {
		t.Fatalf("expected nil batches for empty input, got %v", batches)
	}
}

func TestCreateBatches_SplitsContiguously(t *testing.T) {
	tasks := make([]types.FileTask, 10)
	for i := range tasks {
		tasks[i] = types.FileTask{SourcePath: filepath.Join("src", string(rune('a'+i)))}
	}
	batches := createBatches(tasks, 3)

	if len(batches) > 3 {
		t.Fatalf("expected at most 3 batches (one per worker), got %d", len(batches))
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	if total != len(tasks) {
		t.Fatalf("expected all tasks preserved across batches, got %d of %d", total, len(tasks))
	}
}

func TestCreateBatches_NeverExceedsWorkerCount(t *testing.T) {
	tasks := make([]types.FileTask, 3300)
	for i := range tasks {
		tasks[i] = types.FileTask{SourcePath: filepath.Join("src", string(rune('a'+i%26)))}
	}
	numWorkers := calculateOptimalWorkers(len(tasks))
	batches := createBatches(tasks, numWorkers)

	if len(batches) > numWorkers {
		t.Fatalf("expected at most %d batches, got %d", numWorkers, len(batches))
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	if total != len(tasks) {
		t.Fatalf("expected all tasks preserved across batches, got %d of %d", total, len(tasks))
	}
}

func TestPool_Execute_CopiesAllFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	var tasks []types.FileTask
	for i := 0; i < 20; i++ {
		name := filepath.Join(src, "f"+string(rune('0'+i%10))+string(rune('a'+i/10))+".txt")
		if err := os.WriteFile(name, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
		tasks = append(tasks, types.FileTask{SourcePath: name, RelativeSubpath: filepath.Base(name)})
	}

	ops := fileops.NewOperations(types.Copy)
	tracker := progress.New()
	pool := New()

	failed, err := pool.Execute(context.Background(), tasks, dst, ops, tracker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 0 {
		t.Fatalf("expected 0 failures, got %d", failed)
	}
	if got := tracker.GetCurrent(); got != len(tasks) {
		t.Fatalf("expected tracker current=%d, got %d", len(tasks), got)
	}

	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(tasks) {
		t.Fatalf("expected %d files in target, got %d", len(tasks), len(entries))
	}
}

func TestPool_Execute_TracksFailures(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	tasks := []types.FileTask{
		{SourcePath: filepath.Join(src, "missing.txt"), RelativeSubpath: "missing.txt"},
	}

	ops := fileops.NewOperations(types.Copy)
	tracker := progress.New()
	pool := New()

	failed, err := pool.Execute(context.Background(), tasks, dst, ops, tracker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
}

func TestPool_Execute_EmptyTasksReturnsImmediately(t *testing.T) {
	ops := fileops.NewOperations(types.Copy)
	tracker := progress.New()
	pool := New()

	failed, err := pool.Execute(context.Background(), nil, t.TempDir(), ops, tracker)
	if err != nil || failed != 0 {
		t.Fatalf("expected no-op for empty tasks, got failed=%d err=%v", failed, err)
	}
}
