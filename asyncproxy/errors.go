package asyncproxy

import "errors"

// ErrServiceDisposed is returned by the hard invoke variants when the
// target's strong references have already all been released by the time
// the call reaches its executor (spec.md §4.3, §7).
var ErrServiceDisposed = errors.New("asyncproxy: service disposed")

// Maybe is the "present or absent" result the try-variants resolve to
// instead of failing hard.
type Maybe[T any] struct {
	Value T
	Found bool
}
