// Package progress implements the Progress Tracker (spec §4.6): a
// shared counter updated by many worker goroutines with minimal lock
// contention. Grounded on
// original_source/src/core/progress_tracker.py. Go has no equivalent of
// Python's threading.local, so the thread-local fast path becomes an
// explicit *Local handed out by NewLocal() and merged back in via
// Flush(), per spec §9's guidance for languages without native
// goroutine-locals.
package progress

import (
	"sync"
	"time"
)

// Callback receives one progress notification. Errors and panics inside
// a Callback are swallowed so one bad subscriber cannot break tracking.
type Callback func(snapshot Snapshot)

// Snapshot is the read-only view of tracker state handed to subscribers.
type Snapshot struct {
	Current     int
	Total       int
	CurrentFile string
}

// Percentage reports min(100, 100*current/total), or 0 when total is 0.
func (s Snapshot) Percentage() float64 {
	if s.Total <= 0 {
		return 0.0
	}
	pct := 100.0 * float64(s.Current) / float64(s.Total)
	if pct > 100.0 {
		return 100.0
	}
	return pct
}

// Subscription is an opaque handle returned by Subscribe, used to remove a
// callback via Unsubscribe. Go func values aren't comparable, so a handle
// takes the place of unsubscribing by the callback value itself.
type Subscription uint64

type subscriberEntry struct {
	id Subscription
	cb Callback
}

// Tracker is safe for concurrent use by many goroutines, each holding its
// own *Local obtained from NewLocal.
type Tracker struct {
	mu sync.Mutex

	total          int
	current        int
	currentFile    string
	callbacks      []subscriberEntry
	nextSubID      Subscription
	batchSize      int
	updateInterval time.Duration
	lastNotify     time.Time
}

// New returns a Tracker with the default medium-load batch size and
// interval; call SetTotal to pick the workload-appropriate values.
func New() *Tracker {
	return &Tracker{batchSize: 300, updateInterval: 500 * time.Millisecond}
}

// SetTotal records the item count for this run and selects batch size and
// notify interval from the adaptive table in spec §4.6:
//
//	n <= 10:          batch=1,   interval=10ms
//	11 <= n <= 100:    batch=10,  interval=100ms
//	101 <= n < 1000:   batch=300, interval=500ms
//	n >= 1000:         batch=500, interval=500ms
func (t *Tracker) SetTotal(total int) {
	batch, interval := batchParamsFor(total)

	t.mu.Lock()
	t.total = total
	t.current = 0
	t.currentFile = ""
	t.batchSize = batch
	t.updateInterval = interval
	t.lastNotify = time.Time{}
	t.mu.Unlock()
}

func batchParamsFor(total int) (int, time.Duration) {
	switch {
	case total <= 10:
		return 1, 10 * time.Millisecond
	case total <= 100:
		return 10, 100 * time.Millisecond
	case total < 1000:
		return 300, 500 * time.Millisecond
	default:
		return 500, 500 * time.Millisecond
	}
}

// Local is a per-worker accumulator obtained from NewLocal. It must not be
// shared across goroutines; each worker merges its own Local into the
// shared counter by calling Increment (which flushes internally once the
// batch threshold is reached) or Flush explicitly.
type Local struct {
	tracker  *Tracker
	count    int
	lastFile string
}

// NewLocal returns a fresh per-worker accumulator bound to t.
func (t *Tracker) NewLocal() *Local {
	return &Local{tracker: t}
}

// Increment records one completed item in the local accumulator, flushing
// to the shared counter once batchSize local increments have accrued.
func (l *Local) Increment(currentFile string) {
	l.count++
	if currentFile != "" {
		l.lastFile = currentFile
	}

	l.tracker.mu.Lock()
	threshold := l.tracker.batchSize
	l.tracker.mu.Unlock()

	if l.count >= threshold {
		l.Flush()
	}
}

// Flush merges this Local's accumulated count into the shared counter and
// fires subscriber callbacks (outside the lock) if the notify interval
// has elapsed, or if the total workload is small enough to always notify.
func (l *Local) Flush() {
	if l.count == 0 {
		return
	}
	localCount := l.count
	localFile := l.lastFile
	l.count = 0
	l.lastFile = ""

	t := l.tracker
	var notify bool
	var snapshot Snapshot
	var callbacks []Callback

	t.mu.Lock()
	t.current += localCount
	if localFile != "" {
		t.currentFile = localFile
	}
	snapshot = Snapshot{Current: t.current, Total: t.total, CurrentFile: t.currentFile}

	now := time.Now()
	elapsed := now.Sub(t.lastNotify)
	byTime := t.lastNotify.IsZero() || elapsed >= t.updateInterval
	notify = byTime || (t.total > 0 && t.total <= 10)
	if notify {
		t.lastNotify = now
		for _, e := range t.callbacks {
			callbacks = append(callbacks, e.cb)
		}
	}
	t.mu.Unlock()

	if notify && len(callbacks) > 0 {
		dispatch(callbacks, snapshot)
	}
}

// dispatch calls every callback with snapshot, outside any lock, and
// recovers from a panicking subscriber so it cannot take down the worker
// that triggered the flush.
func dispatch(callbacks []Callback, snapshot Snapshot) {
	for _, cb := range callbacks {
		invokeSafely(cb, snapshot)
	}
}

func invokeSafely(cb Callback, snapshot Snapshot) {
	defer func() { _ = recover() }()
	cb(snapshot)
}

// Subscribe registers callback for future notifications and returns a
// handle that Unsubscribe can later use to remove it.
func (t *Tracker) Subscribe(callback Callback) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSubID++
	id := t.nextSubID
	t.callbacks = append(t.callbacks, subscriberEntry{id: id, cb: callback})
	return id
}

// Unsubscribe removes the callback registered under sub, if still present.
// Unsubscribing an unknown or already-removed Subscription is a no-op.
func (t *Tracker) Unsubscribe(sub Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.callbacks {
		if e.id == sub {
			t.callbacks = append(t.callbacks[:i], t.callbacks[i+1:]...)
			return
		}
	}
}

// Reset clears total and current progress, and restarts the notify clock
// from now. Subscribers remain registered.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = 0
	t.current = 0
	t.currentFile = ""
	t.lastNotify = time.Now()
}

// GetCurrent returns the shared counter. Counts still pending in a Local
// are not included until that Local is flushed.
func (t *Tracker) GetCurrent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// GetTotal returns the total item count set by SetTotal.
func (t *Tracker) GetTotal() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
