// Package svcframework re-exports the public surface of the
// lifecycle/host/registry/service/proc packages under one import, mirroring the teacher's `vessel.go` (`type Vessel = di.Container`).
package svcframework

import (
	"github.com/mana-battery/svcframework/host"
	"github.com/mana-battery/svcframework/lifecycle"
	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/registry"
	"github.com/mana-battery/svcframework/service"
)

// Manager is the top-level orchestrator: partition, sequence, and tear down
// every registered service.
type Manager = lifecycle.Manager

// Config holds LifecycleManager's tunables.
type Config = lifecycle.Config

// Registry is the pre-startup service catalog.
type Registry = registry.Registry

// LaunchPriority controls startup order and dependency visibility.
type LaunchPriority = registry.LaunchPriority

// ThreadGroupID identifies the thread group a service is pinned to.
type ThreadGroupID = registry.ThreadGroupID

// Factory creates one service instance.
type Factory = service.Factory

// Control is the contract every long-lived service implements.
type Control = service.Control

// CreateInfo is handed to a service's factory and to InitAsync.
type CreateInfo = service.CreateInfo

// InitResult is the outcome of InitAsync.
type InitResult = service.InitResult

// ShutdownResult is the outcome of ShutdownAsync.
type ShutdownResult = service.ShutdownResult

// ProcessResult is the outcome of one Process() tick.
type ProcessResult = proc.Result

// Provider is the service locator exposed to services under construction.
type Provider = service.Provider

// CooperativeThreadHost drives its services from the caller's own goroutine.
type CooperativeThreadHost = host.CooperativeThreadHost

// ManagedThreadHost owns a dedicated goroutine for its services.
type ManagedThreadHost[S any] = host.ManagedThreadHost[S]

// New builds a LifecycleManager from cfg and the registrations extracted
// from a Registry.
func New(cfg Config, registrations []registry.RegistrationRecord) *Manager {
	return lifecycle.New(cfg, registrations)
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return lifecycle.DefaultConfig()
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return registry.New()
}

const (
	// MainThreadGroupID is the reserved id for the cooperative main thread
	// group.
	MainThreadGroupID = registry.MainThreadGroupID
)

var (
	// InitSuccess reports a successful initialization.
	InitSuccess = service.InitSuccess
	// InitFailure reports a failed initialization with reason.
	InitFailure = service.InitFailure
	// ShutdownSuccess reports a successful shutdown.
	ShutdownSuccess = service.ShutdownSuccess
	// ShutdownFailure reports a failed shutdown with reason.
	ShutdownFailure = service.ShutdownFailure

	// NoSleep returns a ProcessResult with no sleep limit.
	NoSleep = proc.NoSleep
	// Sleep returns a ProcessResult asking for a sleep no longer than d.
	Sleep = proc.Sleep
	// QuitNow returns a ProcessResult asking the host to stop ticking.
	QuitNow = proc.QuitNow
)
