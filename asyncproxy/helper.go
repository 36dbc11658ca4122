// Package asyncproxy implements AsyncProxyHelper (spec.md §4.3): generic
// invoke/try-invoke/post operations over executor.Context and
// executor.DispatchContext. A single caller's sequential InvokeAsync calls
// against the same target executor are observed on the target in program
// order, because they are all Post-ed onto the same single-goroutine
// Executor queue.
package asyncproxy

import "github.com/mana-battery/svcframework/executor"

// InvokeAsync schedules method on ctx's executor, applied to a strong
// upgrade of the target. If the target is dead when the posted closure
// runs, the returned Future resolves to ErrServiceDisposed.
func InvokeAsync[T, R any](ctx executor.Context[T], method func(T) (R, error)) *Future[R] {
	future := newFuture[R]()

	posted := ctx.Executor().Post(func() {
		strong, ok := ctx.TryLock()
		if !ok {
			var zero R

			future.resolve(zero, ErrServiceDisposed)

			return
		}
		defer strong.Close()

		val, err := method(strong.Get())
		future.resolve(val, err)
	})

	if !posted {
		var zero R

		future.resolve(zero, ErrServiceDisposed)
	}

	return future
}

// TryInvokeAsync is InvokeAsync's soft counterpart: a dead target resolves
// to Maybe{Found: false} instead of an error.
func TryInvokeAsync[T, R any](ctx executor.Context[T], method func(T) (R, error)) *Future[Maybe[R]] {
	future := newFuture[Maybe[R]]()

	posted := ctx.Executor().Post(func() {
		strong, ok := ctx.TryLock()
		if !ok {
			future.resolve(Maybe[R]{}, nil)

			return
		}
		defer strong.Close()

		val, err := method(strong.Get())
		if err != nil {
			future.resolve(Maybe[R]{}, nil)

			return
		}

		future.resolve(Maybe[R]{Value: val, Found: true}, nil)
	})

	if !posted {
		future.resolve(Maybe[R]{}, nil)
	}

	return future
}

// TryInvokePost fires and forgets: method is posted onto ctx's executor and
// re-checks liveness itself once it actually runs, so the target may already
// be dead by the time it executes even though this call returns true.
// Returns false only when the post itself was rejected (the executor is
// already closed) — see spec.md's open question on distinguishing a dead
// executor from a dead object, resolved here as "post failures are
// reported, object-death is absorbed".
func TryInvokePost[T any](ctx executor.Context[T], method func(T)) bool {
	return ctx.Executor().Post(func() {
		strong, ok := ctx.TryLock()
		if !ok {
			return
		}
		defer strong.Close()

		method(strong.Get())
	})
}

// InvokeAsyncDispatch is the cross-thread variant of InvokeAsync: the call
// runs on dc's target executor, and the result is re-posted onto dc's
// source executor so the caller resumes on its own thread. A target that is
// dead at dispatch time resolves to ErrServiceDisposed (posted on the
// source executor if it is still alive, otherwise dropped since the caller
// no longer cares).
func InvokeAsyncDispatch[S, T, R any](dc executor.DispatchContext[S, T], method func(T) (R, error)) *Future[R] {
	future := newFuture[R]()

	posted := dc.Target().Executor().Post(func() {
		strong, ok := dc.Target().TryLock()

		var (
			val R
			err error
		)

		if !ok {
			err = ErrServiceDisposed
		} else {
			val, err = method(strong.Get())
			strong.Close()
		}

		resumeOnSource(dc.Source(), func() { future.resolve(val, err) })
	})

	if !posted {
		// Target executor already closed: the closure above never ran, so
		// resolve directly rather than bouncing through resumeOnSource -
		// we're still on the caller's own goroutine here, and posting onto
		// the source executor to resume a call the source itself is
		// blocked inside of would deadlock.
		var zero R

		future.resolve(zero, ErrServiceDisposed)
	}

	return future
}

// TryInvokeAsyncDispatch is InvokeAsyncDispatch's soft counterpart.
func TryInvokeAsyncDispatch[S, T, R any](dc executor.DispatchContext[S, T], method func(T) (R, error)) *Future[Maybe[R]] {
	future := newFuture[Maybe[R]]()

	posted := dc.Target().Executor().Post(func() {
		strong, ok := dc.Target().TryLock()

		var result Maybe[R]

		if ok {
			val, err := method(strong.Get())
			strong.Close()

			if err == nil {
				result = Maybe[R]{Value: val, Found: true}
			}
		}

		resumeOnSource(dc.Source(), func() { future.resolve(result, nil) })
	})

	if !posted {
		future.resolve(Maybe[R]{}, nil)
	}

	return future
}

// resumeOnSource posts resume onto source's executor if source is still
// alive; otherwise the result is silently dropped, since the caller is, by
// definition, gone.
func resumeOnSource[S any](source executor.Context[S], resume func()) {
	if !source.IsAlive() {
		return
	}

	source.Executor().Post(resume)
}
