package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/mana-battery/svcframework/executor"
)

// ManagedHost dedicates a goroutine to one thread group (spec.md §4.9). The
// goroutine itself is spawned and owned one level up, by ManagedThreadHost;
// this type is only ever constructed on that goroutine, so its Executor is
// bound there.
type ManagedHost struct {
	*Base

	runCtx context.Context
}

// NewManagedHost constructs a ManagedHost owned by the calling goroutine.
// The returned host's run loop does not exit until RequestShutdown is
// called (or the passed-in parent context is cancelled), which is its
// keepalive: as long as neither has happened, Run blocks rather than
// returning, even with no work queued. RequestShutdown is wired through
// Base's onRequestShutdown hook, so it still releases the keepalive even
// when invoked on the bare *Base a ServiceHostProxy dispatches against.
func NewManagedHost(parent context.Context, log *zap.Logger) *ManagedHost {
	runCtx, cancel := context.WithCancel(parent)

	b := NewBase(executor.New(), log)
	b.onRequestShutdown = cancel

	return &ManagedHost{Base: b, runCtx: runCtx}
}

// Run blocks the calling goroutine - which must be this host's owner -
// draining posted work until RequestShutdown releases the keepalive. It
// closes the Executor before returning, so any Post racing the very end of
// shutdown is rejected rather than silently queued forever.
func (h *ManagedHost) Run() {
	h.Executor().Run(h.runCtx)
	h.Executor().Close()
}
