// Package aggerr implements the Aggregate error kind from spec.md §7 and §9:
// an ordered container of one or more causes, with a flatten operation and
// a default message when none is supplied. It is a thin wrapper over
// go.uber.org/multierr, which already preserves insertion order and already
// flattens nested multierr chains.
package aggerr

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Aggregate wraps one or more causes under a single summary message.
type Aggregate struct {
	message string
	causes  []error
}

// New builds an Aggregate from message and causes. message defaults to
// "aggregate error" when empty. Causes are flattened: any cause that is
// itself an *Aggregate or a multierr chain is unwrapped so Causes() always
// returns a single flat list, per spec.md's "offer a flatten operation that
// unwraps nested aggregates into a single flat list".
func New(message string, causes ...error) *Aggregate {
	if message == "" {
		message = "aggregate error"
	}

	return &Aggregate{message: message, causes: flatten(causes)}
}

func flatten(causes []error) []error {
	var flat []error

	for _, c := range causes {
		if c == nil {
			continue
		}

		var nested *Aggregate
		if errors.As(c, &nested) {
			flat = append(flat, nested.causes...)

			continue
		}

		flat = append(flat, multierr.Errors(c)...)
	}

	return flat
}

// Causes returns the flattened causes in insertion order.
func (a *Aggregate) Causes() []error {
	return a.causes
}

// Error implements error.
func (a *Aggregate) Error() string {
	if len(a.causes) == 0 {
		return a.message
	}

	return fmt.Sprintf("%s: %s", a.message, multierr.Combine(a.causes...))
}

// Unwrap exposes the causes to errors.Is/errors.As via multierr's
// multi-error unwrap protocol.
func (a *Aggregate) Unwrap() []error {
	return a.causes
}

// Empty reports whether the aggregate carries no causes.
func (a *Aggregate) Empty() bool {
	return len(a.causes) == 0
}
