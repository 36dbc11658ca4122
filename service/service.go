// Package service defines the contract every long-lived service and its
// factory must satisfy (spec.md §6), plus the creation-time handle
// (ServiceCreateInfo) that exposes dependency lookup during construction.
package service

import (
	"context"
	"reflect"

	"github.com/mana-battery/svcframework/proc"
)

// InitResult is the outcome of InitAsync.
type InitResult struct {
	Success bool
	Reason  string
}

// InitSuccess reports a successful initialization.
func InitSuccess() InitResult { return InitResult{Success: true} }

// InitFailure reports a failed initialization with reason.
func InitFailure(reason string) InitResult { return InitResult{Success: false, Reason: reason} }

// ShutdownResult is the outcome of ShutdownAsync.
type ShutdownResult struct {
	Success bool
	Reason  string
}

// ShutdownSuccess reports a successful shutdown.
func ShutdownSuccess() ShutdownResult { return ShutdownResult{Success: true} }

// ShutdownFailure reports a failed shutdown with reason.
func ShutdownFailure(reason string) ShutdownResult {
	return ShutdownResult{Success: false, Reason: reason}
}

// Control is the narrow surface the host/provider machinery needs from any
// service, regardless of what business interfaces it also implements:
// asynchronous init/shutdown plus a synchronous per-tick Process. Every
// concrete service registered with a host must implement this.
type Control interface {
	// InitAsync initializes the service. create exposes the provider the
	// service may use to look up its (strictly-higher-priority)
	// dependencies.
	InitAsync(ctx context.Context, create CreateInfo) (InitResult, error)
	// ShutdownAsync releases the service's resources.
	ShutdownAsync(ctx context.Context) (ShutdownResult, error)
	// Process runs one synchronous tick on the service's owner thread.
	Process() proc.Result
}

// Provider is the read surface ServiceCreateInfo exposes to a service under
// construction — satisfied by *provider.Provider and by
// *provider.ProxyProvider. Declared here, rather than imported from
// package provider, so that provider.Provider can depend on service.Control
// without a cycle.
type Provider interface {
	GetService(t reflect.Type) (any, error)
	TryGetService(t reflect.Type) (any, bool)
}

// CreateInfo is handed to a service's factory and to InitAsync.
type CreateInfo struct {
	Provider Provider
}

// Factory creates one service instance and declares which interface types
// it implements.
type Factory interface {
	// SupportedInterfaces returns the (non-empty) list of interface types
	// this factory's product can be looked up as.
	SupportedInterfaces() []reflect.Type
	// Create constructs the service, addressable as iface (one of the
	// types returned by SupportedInterfaces).
	Create(iface reflect.Type, create CreateInfo) (Control, error)
}
