// Package executor implements the single-goroutine task queue each service
// host thread group is pinned to, plus the ExecutorContext/DispatchContext
// handles used to safely address work living on another thread group's
// queue (spec.md §4.2, §5).
package executor

import (
	"context"
	"sync"
)

// Executor is a single-goroutine work queue. Exactly one goroutine drains
// it at a time — either the goroutine spawned for a ManagedThreadServiceHost
// (Run), or the host application's own loop pumping a
// CooperativeThreadServiceHost via Poll/Update. A handle value (the
// *Executor pointer) is cheap to copy and safe to share across goroutines;
// only Post is safe to call concurrently from any goroutine.
type Executor struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    func()
}

// New creates an empty Executor.
func New() *Executor {
	return &Executor{}
}

// Post enqueues fn to run on the executor's owning goroutine. Safe to call
// from any goroutine. Returns false if the executor has already been
// closed, in which case fn is dropped.
func (e *Executor) Post(fn func()) bool {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return false
	}

	e.pending = append(e.pending, fn)
	wake := e.wake
	e.mu.Unlock()

	if wake != nil {
		wake()
	}

	return true
}

// SetWake installs a callback invoked (from any goroutine) whenever work is
// posted, so a cooperative host can nudge its owning event loop awake. Pass
// nil to clear it.
func (e *Executor) SetWake(wake func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wake = wake
}

// Drain runs every task currently queued (but not tasks posted during the
// drain itself) and returns how many ran. It does not block waiting for new
// work. Must be called only from the owning goroutine.
func (e *Executor) Drain() int {
	e.mu.Lock()
	batch := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, fn := range batch {
		fn()
	}

	return len(batch)
}

// Close marks the executor closed; further Post calls are rejected. Already
// queued tasks are not discarded by Close itself — callers typically Drain
// once more after Close to let in-flight posts finish.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// Closed reports whether Close has been called.
func (e *Executor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}

// Run blocks the calling goroutine, repeatedly draining posted work, until
// ctx is cancelled. It is the run loop for a ManagedThreadServiceHost — the
// dedicated thread's entire job is to call this once.
func (e *Executor) Run(ctx context.Context) {
	notify := make(chan struct{}, 1)
	e.SetWake(func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer e.SetWake(nil)

	for {
		e.Drain()

		if ctx.Err() != nil {
			e.Drain()

			return
		}

		select {
		case <-ctx.Done():
			e.Drain()

			return
		case <-notify:
		}
	}
}
