// Package refctr implements explicit, atomically refcounted strong/weak
// handles. It exists because spec.md's ExecutorContext requires a liveness
// check ("try_lock") that turns false the instant the last strong reference
// drops — a guarantee Go's GC-driven weak.Pointer (stdlib, since Go 1.24)
// does not make, since GC collection is deferred and not observable at the
// moment the last strong reference goes out of scope.
package refctr

import "sync/atomic"

// cell is the shared bookkeeping block backing one value's strong/weak
// handles. count is the number of live Strong handles; once it reaches
// zero, every derived Weak permanently fails TryLock.
type cell[T any] struct {
	value T
	count atomic.Int64
}

// Strong is an owning handle. The zero value is not usable; construct with
// New.
type Strong[T any] struct {
	c *cell[T]
}

// New creates a Strong handle around value with an initial refcount of one.
func New[T any](value T) Strong[T] {
	c := &cell[T]{value: value}
	c.count.Store(1)

	return Strong[T]{c: c}
}

// Clone increments the refcount and returns a new, independent Strong handle
// referring to the same cell. Each returned handle must be closed exactly
// once.
func (s Strong[T]) Clone() Strong[T] {
	s.c.count.Add(1)

	return Strong[T]{c: s.c}
}

// Get returns the referenced value.
func (s Strong[T]) Get() T {
	return s.c.value
}

// Weak derives a non-owning observer handle.
func (s Strong[T]) Weak() Weak[T] {
	return Weak[T]{c: s.c}
}

// Close drops this handle's contribution to the refcount. Once every Strong
// handle derived from the same New call has been Closed, all derived Weak
// handles permanently fail TryLock. Close is idempotent-unsafe: calling it
// more than once per handle under-counts and must not be done — callers own
// exactly the handles they were given (by New or Clone).
func (s Strong[T]) Close() {
	s.c.count.Add(-1)
}

// Weak is a non-owning observer of a value tracked by refctr. It never
// extends the referent's lifetime.
type Weak[T any] struct {
	c *cell[T]
}

// TryLock attempts to upgrade to a Strong handle. It returns false once the
// refcount has reached zero; it never blocks and never extends lifetime
// itself — the returned Strong (when ok) is a new, independently-closable
// handle.
func (w Weak[T]) TryLock() (Strong[T], bool) {
	if w.c == nil {
		var zero Strong[T]

		return zero, false
	}

	for {
		n := w.c.count.Load()
		if n <= 0 {
			var zero Strong[T]

			return zero, false
		}

		if w.c.count.CompareAndSwap(n, n+1) {
			return Strong[T]{c: w.c}, true
		}
	}
}

// IsAlive is a non-throwing, best-effort predicate. Like the spec requires,
// callers must not treat it as a substitute for TryLock before use — it may
// race with concurrent Close calls.
func (w Weak[T]) IsAlive() bool {
	return w.c != nil && w.c.count.Load() > 0
}
