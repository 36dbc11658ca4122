package host

import (
	"context"

	"github.com/mana-battery/svcframework/registry"
)

// ThreadSafeHost is the uniform surface LifecycleManager drives both
// ownership wrappers through, regardless of whether the underlying host
// lives on the calling goroutine (CooperativeThreadHost) or a spawned one
// (ManagedThreadHost). Ported from the original's IThreadSafeServiceHost
// (SPEC_FULL.md supplemented feature #4).
type ThreadSafeHost interface {
	TryStartServicesAsync(ctx context.Context, services []registry.StartRecord, priority uint32) error
	TryShutdownServicesAsync(ctx context.Context, priority uint32) ([]error, error)
}
