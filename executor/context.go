package executor

import "github.com/mana-battery/svcframework/refctr"

// Context pairs a weak reference to T with the Executor that owns T, so a
// caller on another thread group can safely address T: TryLock upgrades the
// weak reference for the duration of one call, never extending T's
// lifetime beyond that (spec.md §4.2).
type Context[T any] struct {
	weakRef  refctr.Weak[T]
	executor *Executor
}

// NewContext creates a Context observing strongRef, scheduled on ex.
func NewContext[T any](strongRef refctr.Strong[T], ex *Executor) Context[T] {
	return Context[T]{weakRef: strongRef.Weak(), executor: ex}
}

// TryLock attempts to upgrade the observed weak reference.
func (c Context[T]) TryLock() (refctr.Strong[T], bool) {
	return c.weakRef.TryLock()
}

// IsAlive is a best-effort, non-throwing liveness predicate. Callers must
// still TryLock before any actual use (spec.md §4.2).
func (c Context[T]) IsAlive() bool {
	return c.weakRef.IsAlive()
}

// Executor returns the executor T's methods must run on.
func (c Context[T]) Executor() *Executor {
	return c.executor
}
