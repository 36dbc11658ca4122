package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/mana-battery/svcframework/executor"
	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/registry"
)

// CooperativeThreadHost is the ownership wrapper around a CooperativeHost
// (spec.md §4.10): there is no thread to spawn, since the embedding
// application drives the host's executor itself via Update/Poll on the
// calling goroutine.
type CooperativeThreadHost struct {
	inner *CooperativeHost
}

// NewCooperativeThreadHost constructs the host on the calling goroutine -
// which becomes its permanent owner goroutine.
func NewCooperativeThreadHost(log *zap.Logger) *CooperativeThreadHost {
	return &CooperativeThreadHost{inner: NewCooperativeHost(log)}
}

// Update polls the executor then ticks every service once. Must be called
// from the owner goroutine.
func (h *CooperativeThreadHost) Update() proc.Result {
	return h.inner.Update()
}

// Poll runs every currently-queued handler without blocking. Must be
// called from the owner goroutine.
func (h *CooperativeThreadHost) Poll() int {
	return h.inner.Poll()
}

// SetWakeCallback installs the callback the host invokes whenever work is
// posted from another goroutine, so the owner loop can resume promptly.
func (h *CooperativeThreadHost) SetWakeCallback(cb func()) {
	h.inner.SetWakeCallback(cb)
}

// Base returns the underlying host, for constructing a Context to use as
// the source side of other hosts' ServiceHostProxy.
func (h *CooperativeThreadHost) Base() *Base {
	return h.inner.Base
}

// Context returns a dispatch-ready handle to this host.
func (h *CooperativeThreadHost) Context() executor.Context[*Base] {
	return h.inner.Context()
}

// TryStartServicesAsync runs directly on the inner host, with no
// cross-thread dispatch. It must be called from the owner goroutine (the one
// that constructed this host); any other goroutine gets ErrWrongThread.
func (h *CooperativeThreadHost) TryStartServicesAsync(ctx context.Context, services []registry.StartRecord, priority uint32) error {
	return h.inner.TryStartServicesAsync(ctx, services, priority)
}

// TryShutdownServicesAsync runs directly on the inner host.
func (h *CooperativeThreadHost) TryShutdownServicesAsync(ctx context.Context, priority uint32) ([]error, error) {
	return h.inner.TryShutdownServicesAsync(ctx, priority)
}
