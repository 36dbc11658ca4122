// Package lifecycle implements LifecycleManager (spec.md §4.12): the
// top-level orchestrator that partitions pre-startup registrations by
// priority and thread group, sequences their transactional startup across
// the main cooperative host and any number of spawned managed-thread
// hosts, and rolls back already-committed levels if a later one fails.
//
// The "partition, then sequentially start with rollback on failure" shape
// generalizes the teacher's containerImpl.Start/stopServices
// (container_impl.go) from one flat topological order to priority-then-
// thread-group buckets.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/mana-battery/svcframework/aggerr"
	"github.com/mana-battery/svcframework/host"
	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/registry"
)

type startedLevel struct {
	priority      registry.LaunchPriority
	threadGroupID registry.ThreadGroupID
}

type buckets map[registry.LaunchPriority]map[registry.ThreadGroupID][]registry.StartRecord

// Manager is the top-level orchestrator. Construct one per application
// with New, call StartServicesAsync once, drive the main thread group with
// Update/Poll from the embedding application's own loop, and call
// ShutdownServicesAsync (or let RequestStop unwind an in-flight startup)
// when the application exits.
type Manager struct {
	cfg Config
	log *zap.Logger

	main *host.CooperativeThreadHost

	stopCtx    context.Context
	stopCancel context.CancelFunc

	mu         sync.Mutex
	buckets    buckets
	priorities []registry.LaunchPriority
	managed    map[registry.ThreadGroupID]*host.ManagedThreadHost[*host.Base]
	started    []startedLevel
}

// New partitions registrations by priority (descending) then thread group
// and constructs the main cooperative host. It does not start anything -
// call StartServicesAsync for that.
func New(cfg Config, registrations []registry.RegistrationRecord) *Manager {
	log := cfg.logger()
	buckets, priorities := partition(registrations)
	stopCtx, cancel := context.WithCancel(context.Background())

	return &Manager{
		cfg:        cfg,
		log:        log,
		main:       host.NewCooperativeThreadHost(log),
		stopCtx:    stopCtx,
		stopCancel: cancel,
		buckets:    buckets,
		priorities: priorities,
		managed:    make(map[registry.ThreadGroupID]*host.ManagedThreadHost[*host.Base]),
	}
}

func partition(registrations []registry.RegistrationRecord) (buckets, []registry.LaunchPriority) {
	b := make(buckets)

	for _, rec := range registrations {
		if b[rec.Priority] == nil {
			b[rec.Priority] = make(map[registry.ThreadGroupID][]registry.StartRecord)
		}

		b[rec.Priority][rec.ThreadGroupID] = append(b[rec.Priority][rec.ThreadGroupID], registry.StartRecord{
			ServiceName: fmt.Sprintf("%T", rec.Factory),
			Factory:     rec.Factory,
		})
	}

	priorities := make([]registry.LaunchPriority, 0, len(b))
	for p := range b {
		priorities = append(priorities, p)
	}

	slices.SortFunc(priorities, func(a, bb registry.LaunchPriority) int {
		switch {
		case a > bb:
			return -1
		case a < bb:
			return 1
		default:
			return 0
		}
	})

	return b, priorities
}

// MainHost returns the cooperative host for the main/reserved thread
// group (ID 0). The embedding application drives it with Update/Poll.
func (m *Manager) MainHost() *host.CooperativeThreadHost {
	return m.main
}

// Update polls the main host's executor then ticks every main-group
// service once, returning the merged result unchanged. The configured sleep
// limit is not applied here; use AllowSleep for that.
func (m *Manager) Update() proc.Result {
	return m.main.Update()
}

// Poll runs every currently-queued handler on the main host without
// blocking.
func (m *Manager) Poll() int {
	return m.main.Poll()
}

// AllowSleep applies this manager's configured
// DefaultProcessSleepLimitOnRestricted to r, per spec.md §6.
func (m *Manager) AllowSleep(r proc.Result, allow bool) proc.Result {
	return r.AllowSleepWithLimit(allow, m.cfg.sleepLimit())
}

// RequestStop signals the stop-source. In-flight StartServicesAsync chains
// check it at their next sequencing point and refuse to start further
// work, unwinding via rollback.
func (m *Manager) RequestStop() {
	m.stopCancel()
}

// StartServicesAsync sequences startup across every priority level, from
// highest to lowest, and within each level across every thread group, one
// after another in ascending thread-group id order.
// On any failure, or if RequestStop fires first, it rolls back every
// already-started level (in reverse order) and returns an Aggregate
// combining the triggering error(s) with any rollback errors.
func (m *Manager) StartServicesAsync(ctx context.Context) error {
	for _, priority := range m.priorities {
		group := m.buckets[priority]

		threadGroupIDs := make([]registry.ThreadGroupID, 0, len(group))
		for id := range group {
			threadGroupIDs = append(threadGroupIDs, id)
		}

		slices.Sort(threadGroupIDs)

		for _, tgID := range threadGroupIDs {
			if err := m.stopCtx.Err(); err != nil {
				return m.rollbackWith(ctx, ErrStopRequested)
			}

			records := group[tgID]

			targetHost, err := m.resolveStartHost(ctx, tgID)
			if err != nil {
				return m.rollbackWith(ctx, err)
			}

			startErr := runCrossThread(m, ctx, tgID, func() error {
				return targetHost.TryStartServicesAsync(ctx, records, uint32(priority))
			})
			if startErr != nil {
				return m.rollbackWith(ctx, startErr)
			}

			m.mu.Lock()
			m.started = append(m.started, startedLevel{priority: priority, threadGroupID: tgID})
			m.mu.Unlock()

			m.log.Info("started priority level",
				zap.Uint32("priority", uint32(priority)),
				zap.Uint32("thread_group", uint32(tgID)))
		}
	}

	return nil
}

func (m *Manager) rollbackWith(ctx context.Context, cause error) error {
	m.log.Warn("service startup failed, rolling back already-started levels", zap.Error(cause))

	rollbackErrs := m.ShutdownServicesAsync(ctx)

	return aggerr.New("service startup failed", append([]error{cause}, rollbackErrs...)...)
}

func (m *Manager) resolveStartHost(ctx context.Context, tgID registry.ThreadGroupID) (host.ThreadSafeHost, error) {
	if tgID == registry.MainThreadGroupID {
		return m.main, nil
	}

	m.mu.Lock()
	existing, ok := m.managed[tgID]
	m.mu.Unlock()

	if ok {
		return existing, nil
	}

	mth := host.NewManagedThreadHost[*host.Base](m.main.Context(), m.log)

	if _, err := mth.StartAsync(ctx); err != nil {
		return nil, fmt.Errorf("spawning thread group %d: %w", tgID, err)
	}

	m.mu.Lock()
	m.managed[tgID] = mth
	m.mu.Unlock()

	return mth, nil
}

// ShutdownServicesAsync iterates the started-list in reverse, shutting
// down each level's services and accumulating per-service errors, then
// requests every spawned managed thread host to shut down and join.
// Shutdown never short-circuits: every started level and every spawned
// thread is given a chance to shut down regardless of earlier failures.
func (m *Manager) ShutdownServicesAsync(ctx context.Context) []error {
	m.mu.Lock()
	started := m.started
	m.started = nil
	m.mu.Unlock()

	var errs []error

	for i := len(started) - 1; i >= 0; i-- {
		level := started[i]

		targetHost, ok := m.hostFor(level.threadGroupID)
		if !ok {
			continue
		}

		outcome := runCrossThread(m, ctx, level.threadGroupID, func() shutdownOutcome {
			levelErrs, err := targetHost.TryShutdownServicesAsync(ctx, uint32(level.priority))

			return shutdownOutcome{errs: levelErrs, err: err}
		})

		if outcome.err != nil {
			errs = append(errs, outcome.err)

			continue
		}

		errs = append(errs, outcome.errs...)
	}

	m.mu.Lock()
	managed := m.managed
	m.managed = make(map[registry.ThreadGroupID]*host.ManagedThreadHost[*host.Base])
	m.mu.Unlock()

	for tgID, mth := range managed {
		err := runCrossThread(m, ctx, tgID, func() error {
			_, err := mth.TryShutdownAsync(ctx)

			return err
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

type shutdownOutcome struct {
	errs []error
	err  error
}

// runCrossThread runs fn, which blocks on a call proxied to tgID's host. A
// call targeting the main thread group runs directly: it is already on the
// caller's own goroutine, with no cross-thread hop to wait on. A call
// targeting a managed thread group is run on a helper goroutine while this
// goroutine pumps the main host's executor, because the managed host's
// ServiceHostProxy resumes its result by posting onto the main executor -
// the very executor this goroutine would otherwise stop draining while it
// blocked waiting, deadlocking both sides.
func runCrossThread[T any](m *Manager, ctx context.Context, tgID registry.ThreadGroupID, fn func() T) T {
	if tgID == registry.MainThreadGroupID {
		return fn()
	}

	return pumpMain(m, ctx, fn)
}

// pumpMain runs fn on a helper goroutine and drains the main host's executor
// on the calling goroutine until fn returns, waking promptly whenever new
// work (a dispatch resume, typically) lands on it instead of polling blind.
func pumpMain[T any](m *Manager, ctx context.Context, fn func() T) T {
	resultCh := make(chan T, 1)

	go func() { resultCh <- fn() }()

	notify := make(chan struct{}, 1)
	m.main.SetWakeCallback(func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer m.main.SetWakeCallback(nil)

	for {
		m.main.Poll()

		select {
		case result := <-resultCh:
			return result
		default:
		}

		select {
		case result := <-resultCh:
			return result
		case <-notify:
		case <-ctx.Done():
			// fn was handed this same ctx and, by construction, every
			// blocking wait inside the host/asyncproxy call chain selects
			// on ctx.Done() directly, so it returns on its own here
			// without needing any further pumping.
			return <-resultCh
		}
	}
}

func (m *Manager) hostFor(tgID registry.ThreadGroupID) (host.ThreadSafeHost, bool) {
	if tgID == registry.MainThreadGroupID {
		return m.main, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mth, ok := m.managed[tgID]

	return mth, ok
}
