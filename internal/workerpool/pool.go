// Package workerpool implements the Worker Pool (spec §4.7): the
// goroutine fan-out that actually runs file operations against a batch
// of tasks. Grounded on original_source/src/core/worker_pool.py for the
// partitioning and stop-event logic, and on the teacher's
// internal/maintenance/worker.go for the context-cancellation and
// sync/atomic bookkeeping idiom this package follows.
package workerpool

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"collector/internal/fileops"
	"collector/internal/progress"
	"collector/internal/types"
)

// MaxWorkers caps the number of goroutines a single Execute call will
// spawn, regardless of host CPU count or task volume.
const MaxWorkers = 32

// Pool runs a slice of FileTasks through an Operations facade, reporting
// progress through a Tracker. A Pool instance is reusable across
// sequential Execute calls but is not itself safe for concurrent Execute
// calls.
type Pool struct {
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// New returns a ready-to-use Pool.
func New() *Pool {
	return &Pool{}
}

// calculateOptimalWorkers mirrors the original's
// min(cpu_count, max(1, n/100), MAX_WORKERS) formula.
func calculateOptimalWorkers(totalFiles int) int {
	byLoad := totalFiles / 100
	if byLoad < 1 {
		byLoad = 1
	}
	workers := runtime.NumCPU()
	if byLoad < workers {
		workers = byLoad
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// createBatches splits tasks into up to numWorkers contiguous chunks.
func createBatches(tasks []types.FileTask, numWorkers int) [][]types.FileTask {
	if len(tasks) == 0 || numWorkers <= 0 {
		return nil
	}

	batchSize := (len(tasks) + numWorkers - 1) / numWorkers
	if batchSize < 1 {
		batchSize = 1
	}

	var batches [][]types.FileTask
	for i := 0; i < len(tasks); i += batchSize {
		end := i + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		batches = append(batches, tasks[i:end])
	}
	return batches
}

// Execute runs every task in tasks against ops, writing each file to
// targetBase joined with the task's relative subpath, and reporting
// progress through tracker. It blocks until every started worker
// goroutine has returned; once ctx is canceled no further workers are
// started and running workers stop before their next task.
//
// One failed file does not abort the batch: the worker moves on to the
// next task. The number of failed files is returned as failed; tracker
// counts every attempted file, failed or not.
func (p *Pool) Execute(ctx context.Context, tasks []types.FileTask, targetBase string, ops *fileops.Operations, tracker *progress.Tracker) (failed int64, err error) {
	p.stopped.Store(false)

	numWorkers := calculateOptimalWorkers(len(tasks))
	batches := createBatches(tasks, numWorkers)
	if len(batches) == 0 {
		return 0, nil
	}

	tracker.SetTotal(len(tasks))

	sem := semaphore.NewWeighted(int64(numWorkers))
	var failedCount int64

	for _, batch := range batches {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		p.wg.Add(1)
		go func(batch []types.FileTask) {
			defer p.wg.Done()
			defer sem.Release(1)
			p.runBatch(ctx, batch, targetBase, ops, tracker, &failedCount)
		}(batch)
	}

	p.wg.Wait()
	return atomic.LoadInt64(&failedCount), ctx.Err()
}

func (p *Pool) runBatch(ctx context.Context, batch []types.FileTask, targetBase string, ops *fileops.Operations, tracker *progress.Tracker, failedCount *int64) {
	local := tracker.NewLocal()
	// CRITICAL: flush from this goroutine before it exits. progress.Local
	// is goroutine-affine by convention, so only the goroutine holding it
	// can merge its accumulated count into the shared tracker.
	defer local.Flush()

	for _, task := range batch {
		if p.stopped.Load() || ctx.Err() != nil {
			return
		}

		target := filepath.Join(targetBase, task.RelativeSubpath)
		if err := ops.Execute(task.SourcePath, target); err != nil {
			atomic.AddInt64(failedCount, 1)
		}
		local.Increment(task.SourcePath)
	}
}

// Stop signals every running worker to abandon its remaining batch and
// waits up to one second for them to return.
func (p *Pool) Stop() {
	p.stopped.Store(true)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
	}
}
