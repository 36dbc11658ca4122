package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mana-battery/svcframework/executor"
	"github.com/mana-battery/svcframework/proc"
)

// CooperativeHost integrates with a caller-owned main loop (spec.md §4.8):
// it owns an Executor but no goroutine, and makes progress only when the
// embedding application calls Poll or Update from that loop.
type CooperativeHost struct {
	*Base

	mu   sync.Mutex
	wake func()
}

// NewCooperativeHost constructs a CooperativeHost owned by the calling
// goroutine.
func NewCooperativeHost(log *zap.Logger) *CooperativeHost {
	return &CooperativeHost{Base: NewBase(executor.New(), log)}
}

// SetWakeCallback installs cb, invoked (from any goroutine) whenever work
// is posted so the owning event loop can be nudged awake. Pass nil to
// clear it.
func (h *CooperativeHost) SetWakeCallback(cb func()) {
	h.mu.Lock()
	h.wake = cb
	h.mu.Unlock()

	h.Executor().SetWake(cb)
}

// Poll runs every currently-queued handler and returns how many ran. It
// does not block. Must be called from the owner goroutine.
func (h *CooperativeHost) Poll() int {
	return h.Executor().Drain()
}

// Update polls, then ticks every registered service once, returning the
// merged result.
func (h *CooperativeHost) Update() proc.Result {
	h.Poll()

	return h.ProcessServices()
}

// PostWithWake posts fn and nudges the wake callback. The underlying
// Executor already invokes its wake callback on every Post, so this is a
// thin, spec-named alias kept for symmetry with the original API surface.
func (h *CooperativeHost) PostWithWake(fn func()) bool {
	return h.Executor().Post(fn)
}
