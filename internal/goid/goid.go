// Package goid recovers the calling goroutine's numeric id for use in
// diagnostic thread-affinity assertions only. It must never be used to make
// scheduling decisions — goroutine ids are not part of any Go stability
// guarantee and this package exists solely to give thread-affine components
// (provider.Provider, host.Base) a way to reject calls made from
// the wrong goroutine, per spec.md's "thread-affinity enforcement ... is not
// optional."
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the id of the calling goroutine.
//
// This parses the header line of runtime.Stack's output ("goroutine 123
// [running]:"), the same technique several tracing/diagnostic libraries use
// to recover a goroutine id the runtime otherwise keeps private. It is
// relatively expensive (it walks a stack trace) so callers should use it
// only for affinity assertions, never on a hot path.
func Current() int64 {
	buf := make([]byte, 64)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			buf = buf[:n]

			break
		}

		buf = make([]byte, 2*len(buf))
	}

	const prefix = "goroutine "

	buf = bytes.TrimPrefix(buf, []byte(prefix))

	idx := bytes.IndexByte(buf, ' ')
	if idx < 0 {
		return -1
	}

	id, err := strconv.ParseInt(string(buf[:idx]), 10, 64)
	if err != nil {
		return -1
	}

	return id
}
