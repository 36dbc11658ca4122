// Package host implements ServiceHostBase and its two concrete executor
// strategies (spec.md §4.7-4.11): CooperativeThreadServiceHost, driven by a
// host-owned main loop, and ManagedThreadServiceHost, driven by a thread
// this package spawns. Both share the transactional Phase A/B/C startup
// and reverse-order shutdown implemented once on Base, generalizing the
// teacher's containerImpl.Start/Stop (container_impl.go) from a single
// dependency-ordered list to per-priority-group, per-thread-group batches.
package host

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/mana-battery/svcframework/aggerr"
	"github.com/mana-battery/svcframework/executor"
	"github.com/mana-battery/svcframework/internal/goid"
	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/provider"
	"github.com/mana-battery/svcframework/refctr"
	"github.com/mana-battery/svcframework/registry"
	"github.com/mana-battery/svcframework/service"
)

// Base holds the logic shared by every ServiceHostBase variant: an owner
// goroutine, a Provider, the Executor that goroutine drains, and a
// self-reference other thread groups dispatch through via a
// ServiceHostProxy. It is never used directly - embed it in a concrete host
// type constructed on its owner goroutine.
type Base struct {
	ownerGoroutine int64
	ex             *executor.Executor
	provider       *provider.Provider
	self           refctr.Strong[*Base]
	log            *zap.Logger

	// onRequestShutdown is an optional extra hook RequestShutdown invokes
	// after closing the executor. ManagedHost uses it to also cancel its
	// run loop's context; CooperativeHost leaves it nil, since its run
	// loop is the caller's own (spec.md §4.7's "request_shutdown ...
	// does not by itself shut down services").
	onRequestShutdown func()
}

// NewBase constructs a Base owned by the calling goroutine, driven by ex.
// log defaults to a no-op logger when nil.
func NewBase(ex *executor.Executor, log *zap.Logger) *Base {
	if log == nil {
		log = zap.NewNop()
	}

	b := &Base{
		ownerGoroutine: goid.Current(),
		ex:             ex,
		provider:       provider.New(),
		log:            log,
	}
	b.self = refctr.New(b)

	return b
}

func (b *Base) checkOwnerThread() error {
	if goid.Current() != b.ownerGoroutine {
		return ErrWrongThread
	}

	return nil
}

// Executor returns the host's single-goroutine work queue.
func (b *Base) Executor() *executor.Executor {
	return b.ex
}

// Provider returns the host's service locator.
func (b *Base) Provider() *provider.Provider {
	return b.provider
}

// Context returns a dispatch-ready handle to this host, addressable from
// any other thread group. It remains usable until Close is called.
func (b *Base) Context() executor.Context[*Base] {
	return executor.NewContext(b.self, b.ex)
}

// Close severs every outstanding Context derived from this host. Call it
// once, after the host's run loop has exited, so in-flight dispatches fail
// cleanly rather than racing a freed host.
func (b *Base) Close() {
	b.self.Close()
}

// RequestShutdown signals the executor to stop accepting work. It does not
// itself shut down any service - callers sequence that separately (spec.md
// §4.7, "shutdown request").
func (b *Base) RequestShutdown() {
	b.ex.Close()

	if b.onRequestShutdown != nil {
		b.onRequestShutdown()
	}
}

type constructedService struct {
	name       string
	control    service.Control
	interfaces []reflect.Type
}

// TryStartServicesAsync runs the Phase A/B/C transactional startup
// described in spec.md §4.7 for one priority group. Must be called from the
// owner goroutine.
func (b *Base) TryStartServicesAsync(ctx context.Context, services []registry.StartRecord, priority uint32) error {
	if err := b.checkOwnerThread(); err != nil {
		return err
	}

	if len(services) == 0 {
		b.log.Info("start services: empty group, nothing to do", zap.Uint32("priority", priority))

		return nil
	}

	for _, rec := range services {
		if rec.Factory == nil {
			return ErrInvalidServiceFactory
		}
	}

	proxy := provider.NewProxyProvider(b.provider)

	constructed, err := b.constructPhase(proxy, services)
	if err != nil {
		proxy.Clear()

		return err
	}

	initErrs, initialized := b.initializePhase(ctx, proxy, constructed)

	if len(initErrs) == 0 {
		return b.commitPhase(priority, initialized)
	}

	return b.rollbackPhase(ctx, proxy, priority, initErrs, initialized)
}

func (b *Base) constructPhase(proxy *provider.ProxyProvider, services []registry.StartRecord) ([]constructedService, error) {
	constructed := make([]constructedService, 0, len(services))

	for _, rec := range services {
		ifaces := rec.Factory.SupportedInterfaces()
		if len(ifaces) == 0 {
			return nil, ErrInvalidServiceFactory
		}

		ctrl, err := rec.Factory.Create(ifaces[0], service.CreateInfo{Provider: proxy})
		if err != nil {
			return nil, err
		}

		if ctrl == nil {
			return nil, ErrInvalidServiceFactory
		}

		constructed = append(constructed, constructedService{name: rec.ServiceName, control: ctrl, interfaces: ifaces})
	}

	return constructed, nil
}

func (b *Base) initializePhase(ctx context.Context, proxy *provider.ProxyProvider, constructed []constructedService) ([]error, []constructedService) {
	var (
		initErrs    []error
		initialized []constructedService
	)

	for _, c := range constructed {
		result, err := c.control.InitAsync(ctx, service.CreateInfo{Provider: proxy})
		if err != nil {
			b.log.Warn("service init failed", zap.String("service", c.name), zap.Error(err))
			initErrs = append(initErrs, err)

			continue
		}

		if !result.Success {
			b.log.Warn("service init reported failure", zap.String("service", c.name), zap.String("reason", result.Reason))
			initErrs = append(initErrs, errServiceInitFailed(c.name, result.Reason))

			continue
		}

		initialized = append(initialized, c)
	}

	return initErrs, initialized
}

func (b *Base) commitPhase(priority uint32, initialized []constructedService) error {
	infos := make([]provider.InstanceInfo, 0, len(initialized))
	for _, c := range initialized {
		infos = append(infos, provider.InstanceInfo{Service: c.control, SupportedInterfaces: c.interfaces})
	}

	if err := b.provider.RegisterPriorityGroup(priority, infos); err != nil {
		return err
	}

	b.log.Info("started service group", zap.Uint32("priority", priority), zap.Int("count", len(infos)))

	return nil
}

func (b *Base) rollbackPhase(ctx context.Context, proxy *provider.ProxyProvider, priority uint32, initErrs []error, initialized []constructedService) error {
	b.log.Warn("service group failed to initialize, rolling back", zap.Uint32("priority", priority), zap.Int("failures", len(initErrs)))

	var rollbackErrs []error

	for i := len(initialized) - 1; i >= 0; i-- {
		c := initialized[i]

		result, err := c.control.ShutdownAsync(ctx)
		if err != nil {
			rollbackErrs = append(rollbackErrs, err)

			continue
		}

		if !result.Success {
			rollbackErrs = append(rollbackErrs, errServiceShutdownFailed(c.name, result.Reason))
		}
	}

	proxy.Clear()

	allErrs := append(append([]error{}, initErrs...), rollbackErrs...)

	return aggerr.New("service group failed to start", allErrs...)
}

// TryShutdownServicesAsync unregisters the priority group and shuts down
// every service it held, in reverse registration order. An absent group is
// a no-op, not an error. Per-service failures are collected and returned,
// never causing the method itself to fail.
func (b *Base) TryShutdownServicesAsync(ctx context.Context, priority uint32) ([]error, error) {
	if err := b.checkOwnerThread(); err != nil {
		return nil, err
	}

	infos, ok := b.provider.UnregisterPriorityGroup(priority)
	if !ok {
		return nil, nil
	}

	var errs []error

	for i := len(infos) - 1; i >= 0; i-- {
		name := fmt.Sprintf("%T", infos[i].Service)

		result, err := infos[i].Service.ShutdownAsync(ctx)
		if err != nil {
			b.log.Warn("service shutdown failed", zap.String("service", name), zap.Error(err))
			errs = append(errs, err)

			continue
		}

		if !result.Success {
			b.log.Warn("service shutdown reported failure", zap.String("service", name), zap.String("reason", result.Reason))
		}
	}

	return errs, nil
}

// ProcessServices ticks every registered service once, on the owner
// goroutine, folding their results with proc.Merge. A service whose Process
// panics is recovered and logged rather than propagated, contributing Quit
// for that tick so the host notices and can react, instead of crashing the
// owner goroutine outright - the original has no equivalent guard around
// this loop, since C++ exceptions there are expected to propagate; this is
// a Go-idiom addition, since an unrecovered panic here would otherwise take
// the whole process down, not just this thread group.
func (b *Base) ProcessServices() proc.Result {
	if err := b.checkOwnerThread(); err != nil {
		b.log.Error("process_services called from non-owner goroutine")

		return proc.NoSleep()
	}

	controls, err := b.provider.GetAllServiceControls()
	if err != nil {
		return proc.NoSleep()
	}

	result := proc.NoSleep()

	for _, c := range controls {
		result = proc.Merge(result, b.processOne(c))
	}

	return result
}

func (b *Base) processOne(c service.Control) (result proc.Result) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("service Process panicked, recovered", zap.Any("panic", r))

			result = proc.QuitNow()
		}
	}()

	return c.Process()
}
