package host

import (
	"context"

	"github.com/mana-battery/svcframework/asyncproxy"
	"github.com/mana-battery/svcframework/executor"
	"github.com/mana-battery/svcframework/registry"
)

// ServiceHostProxy is the thread-safe handle described in spec.md §4.11: it
// marshals operations onto a remote Base's executor, and resumes the
// caller on the caller's own executor. S is the caller's own lifetime-
// tracked type - typically the host it is being constructed from - so a
// dead caller never blocks or leaks a resumed continuation.
type ServiceHostProxy[S any] struct {
	dc executor.DispatchContext[S, *Base]
}

// NewServiceHostProxy pairs source (the caller's own context) with target
// (the remote host being proxied).
func NewServiceHostProxy[S any](source executor.Context[S], target executor.Context[*Base]) *ServiceHostProxy[S] {
	return &ServiceHostProxy[S]{dc: executor.NewDispatchContext(source, target)}
}

// TryStartServicesAsync marshals TryStartServicesAsync onto the target
// host's executor and blocks until it completes or ctx is done. A target
// that has already been Closed resolves to ErrServiceDisposed.
func (p *ServiceHostProxy[S]) TryStartServicesAsync(ctx context.Context, services []registry.StartRecord, priority uint32) error {
	future := asyncproxy.InvokeAsyncDispatch(p.dc, func(b *Base) (struct{}, error) {
		return struct{}{}, b.TryStartServicesAsync(ctx, services, priority)
	})

	_, err := future.Wait(ctx)

	return err
}

// TryShutdownServicesAsync marshals TryShutdownServicesAsync onto the
// target host's executor.
func (p *ServiceHostProxy[S]) TryShutdownServicesAsync(ctx context.Context, priority uint32) ([]error, error) {
	future := asyncproxy.InvokeAsyncDispatch(p.dc, func(b *Base) ([]error, error) {
		return b.TryShutdownServicesAsync(ctx, priority)
	})

	return future.Wait(ctx)
}

// TryRequestShutdownAsync marshals a shutdown request onto the target,
// resolving to true once posted. A target already dead at dispatch time
// resolves to false rather than an error.
func (p *ServiceHostProxy[S]) TryRequestShutdownAsync(ctx context.Context) (bool, error) {
	future := asyncproxy.TryInvokeAsyncDispatch(p.dc, func(b *Base) (bool, error) {
		b.RequestShutdown()

		return true, nil
	})

	result, err := future.Wait(ctx)
	if err != nil {
		return false, err
	}

	return result.Found && result.Value, nil
}

// TryRequestShutdown fires a shutdown request at the target without
// waiting for it to run. Returns false only if the target executor has
// already been closed to new posts; a target that dies before the posted
// closure runs is silently absorbed.
func (p *ServiceHostProxy[S]) TryRequestShutdown() bool {
	return asyncproxy.TryInvokePost(p.dc.Target(), func(b *Base) {
		b.RequestShutdown()
	})
}
