// Package httpapi implements the HTTP/WebSocket control plane (spec
// §6.4): the external collaborator that submits CollectionConfigs to the
// core Service and exposes job progress/results over REST and a
// WebSocket feed. This layer sits outside the scored core (spec §1
// explicitly calls the HTTP surface an external collaborator); it exists
// to give the core's job-handle and progress-subscription contract a
// concrete caller to exercise.
package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"collector/internal/collector"
	"collector/internal/progress"
	"collector/internal/types"
)

// Status names the lifecycle states a Job passes through, matching the
// status enum in spec §6.4.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Job tracks one submitted CollectionConfig from POST /collect through to
// a terminal result.
type Job struct {
	ID        string
	Config    types.CollectionConfig
	CreatedAt time.Time

	svc    *collector.Service
	cancel context.CancelFunc

	mu     sync.Mutex
	status Status
	result types.CollectionResult
	errMsg string

	wsMu sync.Mutex
	wsCh map[chan progress.Snapshot]struct{}
}

// Registry is an in-memory, mutex-guarded job store — the "structural
// typing for repositories" design note in spec §9 maps to this narrow
// two-method-ish abstraction rather than an interface hierarchy, since
// there is exactly one implementation in this codebase.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Submit builds a Job for cfg, registers it, and starts Collect() on a
// background goroutine — the HTTP layer's contract of treating the core
// as blocking work submitted off the request goroutine (spec §5).
func (r *Registry) Submit(cfg types.CollectionConfig) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        uuid.NewString(),
		Config:    cfg,
		CreatedAt: time.Now(),
		svc:       collector.New(),
		cancel:    cancel,
		status:    StatusPending,
		wsCh:      make(map[chan progress.Snapshot]struct{}),
	}
	job.svc.Subscribe(func(s progress.Snapshot) { job.broadcast(s) })

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	go job.run(ctx)
	return job
}

func (j *Job) run(ctx context.Context) {
	result, err := j.svc.Collect(ctx, j.Config)

	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case ctx.Err() == context.Canceled:
		j.status = StatusCancelled
	case err != nil:
		j.status = StatusFailed
		j.errMsg = err.Error()
	default:
		j.status = StatusCompleted
		j.result = result
	}
}

// broadcast fans a progress snapshot out to every subscribed WebSocket
// connection's channel, dropping it for any subscriber whose channel is
// currently full rather than blocking the flush that triggered it.
func (j *Job) broadcast(s progress.Snapshot) {
	j.wsMu.Lock()
	defer j.wsMu.Unlock()
	for ch := range j.wsCh {
		select {
		case ch <- s:
		default:
		}
	}
}

// subscribeWS registers a channel for this job's progress feed and
// returns an unsubscribe func.
func (j *Job) subscribeWS() (chan progress.Snapshot, func()) {
	ch := make(chan progress.Snapshot, 16)
	j.wsMu.Lock()
	j.wsCh[ch] = struct{}{}
	j.wsMu.Unlock()
	return ch, func() {
		j.wsMu.Lock()
		delete(j.wsCh, ch)
		j.wsMu.Unlock()
		close(ch)
	}
}

// Snapshot returns the job's current progress.
func (j *Job) Snapshot() progress.Snapshot {
	return progress.Snapshot{
		Current: j.svc.Tracker.GetCurrent(),
		Total:   j.svc.Tracker.GetTotal(),
	}
}

// StatusAndResult returns the job's terminal state, if any, plus whether
// it has reached one.
func (j *Job) StatusAndResult() (Status, types.CollectionResult, string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	done := j.status != StatusPending
	return j.status, j.result, j.errMsg, done
}

// Cancel signals the job's context and its Service's pool to stop.
func (j *Job) Cancel() {
	j.cancel()
	j.svc.Pool.Stop()
}

// Get returns the job registered under id, if any.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// Delete removes id from the registry, cancelling its job first.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	r.mu.Unlock()
	if ok {
		job.Cancel()
	}
	return ok
}

// List returns every registered job, in no particular order.
func (r *Registry) List() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	return out
}
