package host

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidServiceFactory is returned when a StartServiceRecord carries
	// a nil factory, or a factory reporting zero supported interfaces.
	ErrInvalidServiceFactory = errors.New("host: invalid service factory")

	// ErrWrongThread is returned when a synchronous host method is called
	// from any goroutine other than the host's owner goroutine.
	ErrWrongThread = errors.New("host: called from non-owner goroutine")

	// ErrNotStarted is returned by a ManagedThreadHost's operations before
	// StartAsync has completed.
	ErrNotStarted = errors.New("host: managed thread not started")
)

func errServiceInitFailed(name, reason string) error {
	return fmt.Errorf("service %q failed to initialize: %s", name, reason)
}

func errServiceShutdownFailed(name, reason string) error {
	return fmt.Errorf("service %q failed to shut down: %s", name, reason)
}
