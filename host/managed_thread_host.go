package host

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/mana-battery/svcframework/executor"
	"github.com/mana-battery/svcframework/registry"
)

// ManagedThreadHost owns a dedicated goroutine, the ManagedHost
// constructed on it, and a ServiceHostProxy exposing that host to every
// other thread group (spec.md §4.10). S is the caller's own lifetime-
// tracked type, used as the proxy's dispatch source so a caller that is
// already gone never blocks waiting on a resumed continuation.
type ManagedThreadHost[S any] struct {
	source executor.Context[S]
	log    *zap.Logger

	mu       sync.Mutex
	started  bool
	shutdown bool
	host     *ManagedHost
	proxy    *ServiceHostProxy[S]
	lifetime chan struct{}
}

// NewManagedThreadHost returns an unstarted wrapper. source is the caller's
// own dispatch context, used as every proxied call's resumption point. A
// finalizer is registered as a leak check: if the wrapper is garbage
// collected after StartAsync without an explicit TryShutdownAsync, it logs a
// warning (SPEC_FULL.md supplemented feature #5). The finalizer does not
// request shutdown of the managed goroutine and does not join it.
func NewManagedThreadHost[S any](source executor.Context[S], log *zap.Logger) *ManagedThreadHost[S] {
	if log == nil {
		log = zap.NewNop()
	}

	m := &ManagedThreadHost[S]{source: source, log: log}

	runtime.SetFinalizer(m, func(m *ManagedThreadHost[S]) {
		m.mu.Lock()
		leaked := m.started && !m.shutdown
		m.mu.Unlock()

		if leaked {
			log.Warn("ManagedThreadHost garbage collected without an explicit shutdown")
		}
	})

	return m
}

// StartAsync spawns the dedicated goroutine, constructs the ManagedHost on
// it, and blocks until construction has completed (or ctx is cancelled
// first). The returned channel is closed once the spawned goroutine has
// exited, i.e. once Run has returned.
func (m *ManagedThreadHost[S]) StartAsync(ctx context.Context) (<-chan struct{}, error) {
	started := make(chan struct{})
	lifetime := make(chan struct{})

	go func() {
		defer close(lifetime)

		h := NewManagedHost(context.Background(), m.log)

		m.mu.Lock()
		m.host = h
		m.proxy = NewServiceHostProxy(m.source, h.Context())
		m.started = true
		m.lifetime = lifetime
		m.mu.Unlock()

		close(started)

		h.Run()
		h.Close()
	}()

	select {
	case <-started:
		return lifetime, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryShutdownAsync requests shutdown of the managed thread and waits for
// its goroutine to exit. Returns false without error if the host was never
// started.
func (m *ManagedThreadHost[S]) TryShutdownAsync(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()

		return false, nil
	}

	proxy := m.proxy
	lifetime := m.lifetime
	m.shutdown = true
	m.mu.Unlock()

	if _, err := proxy.TryRequestShutdownAsync(ctx); err != nil {
		return false, err
	}

	select {
	case <-lifetime:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// TryStartServicesAsync marshals the call onto the managed thread via this
// wrapper's proxy.
func (m *ManagedThreadHost[S]) TryStartServicesAsync(ctx context.Context, services []registry.StartRecord, priority uint32) error {
	m.mu.Lock()
	proxy := m.proxy
	m.mu.Unlock()

	if proxy == nil {
		return ErrNotStarted
	}

	return proxy.TryStartServicesAsync(ctx, services, priority)
}

// TryShutdownServicesAsync marshals the call onto the managed thread via
// this wrapper's proxy.
func (m *ManagedThreadHost[S]) TryShutdownServicesAsync(ctx context.Context, priority uint32) ([]error, error) {
	m.mu.Lock()
	proxy := m.proxy
	m.mu.Unlock()

	if proxy == nil {
		return nil, ErrNotStarted
	}

	return proxy.TryShutdownServicesAsync(ctx, priority)
}

// ServiceHost returns the thread-safe proxy to the managed host, or nil if
// StartAsync has not yet completed.
func (m *ManagedThreadHost[S]) ServiceHost() *ServiceHostProxy[S] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.proxy
}
