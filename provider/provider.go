// Package provider implements the priority-group-keyed, thread-affine
// service locator (spec.md §4.4) and the severable proxy used to block
// partially-constructed services from reaching a half-built provider
// (spec.md §4.5).
//
// This is the Go-native generalization of the teacher's containerImpl's
// services/graph maps (container_impl.go) to spec.md's priority-descending,
// type-indexed lookup with explicit owner-goroutine enforcement.
package provider

import (
	"reflect"
	"sync"

	"github.com/mana-battery/svcframework/internal/goid"
	"github.com/mana-battery/svcframework/service"
)

// InstanceInfo pairs a live service with every interface type it may be
// looked up as.
type InstanceInfo struct {
	Service             service.Control
	SupportedInterfaces []reflect.Type
}

// priorityGroup is the set of services registered at one priority level, in
// registration order (the reverse of their shutdown order).
type priorityGroup struct {
	priority uint32
	services []InstanceInfo
}

// Provider is the ordered, type-indexed service locator. It must be
// constructed and then queried only from the same goroutine (its "owner
// thread"). From any other goroutine, RegisterPriorityGroup, GetService and
// GetAllServiceControls fail with ErrWrongThread; TryGetService,
// TryGetServices and UnregisterPriorityGroup report absent instead and do
// not return ErrWrongThread.
type Provider struct {
	ownerGoroutine int64

	mu     sync.Mutex
	groups []priorityGroup
	byType map[reflect.Type][]service.Control
}

// New creates an empty Provider owned by the calling goroutine.
func New() *Provider {
	return &Provider{
		ownerGoroutine: goid.Current(),
		byType:         make(map[reflect.Type][]service.Control),
	}
}

func (p *Provider) checkOwnerThread() error {
	if goid.Current() != p.ownerGoroutine {
		return ErrWrongThread
	}

	return nil
}

// RegisterPriorityGroup appends a new priority group. Groups must be
// registered in strictly descending priority order; violating that, or
// registering an empty group, or a group containing a nil service or a
// service with no supported interfaces, is rejected without mutating state.
func (p *Provider) RegisterPriorityGroup(priority uint32, services []InstanceInfo) error {
	if err := p.checkOwnerThread(); err != nil {
		return err
	}

	if len(services) == 0 {
		return ErrEmptyPriorityGroup
	}

	for _, svc := range services {
		if svc.Service == nil || len(svc.SupportedInterfaces) == 0 {
			return ErrInvalidArgument
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.groups) > 0 && priority >= p.groups[len(p.groups)-1].priority {
		return ErrInvalidPriorityOrder
	}

	p.groups = append(p.groups, priorityGroup{priority: priority, services: services})

	for _, svc := range services {
		for _, t := range svc.SupportedInterfaces {
			p.byType[t] = append(p.byType[t], svc.Service)
		}
	}

	return nil
}

// UnregisterPriorityGroup removes the group registered at priority, if any,
// returning its services in their original registration order so the
// caller can shut them down in reverse. Returns (nil, false) if no group
// was registered at that priority.
func (p *Provider) UnregisterPriorityGroup(priority uint32) ([]InstanceInfo, bool) {
	if err := p.checkOwnerThread(); err != nil {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i, g := range p.groups {
		if g.priority != priority {
			continue
		}

		p.groups = append(p.groups[:i], p.groups[i+1:]...)

		for _, svc := range g.services {
			for _, t := range svc.SupportedInterfaces {
				p.byType[t] = removeOne(p.byType[t], svc.Service)
			}
		}

		return g.services, true
	}

	return nil, false
}

func removeOne(list []service.Control, target service.Control) []service.Control {
	for i, c := range list {
		if c == target {
			return append(list[:i], list[i+1:]...)
		}
	}

	return list
}

// GetService returns the unique service registered for t. Fails
// ErrUnknownService if none is registered, ErrMultipleServices if more than
// one is.
func (p *Provider) GetService(t reflect.Type) (any, error) {
	if err := p.checkOwnerThread(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	matches := p.byType[t]

	switch len(matches) {
	case 0:
		return nil, ErrUnknownService
	case 1:
		return matches[0], nil
	default:
		return nil, ErrMultipleServices
	}
}

// TryGetService returns the unique service for t, or (nil, false) if zero
// or more than one is registered. Per spec.md's open question on
// "try_get_service when multiple match", this implementation treats
// "not unique" the same as "not found" rather than returning an arbitrary
// first match (documented in DESIGN.md / SPEC_FULL.md).
func (p *Provider) TryGetService(t reflect.Type) (any, bool) {
	if err := p.checkOwnerThread(); err != nil {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	matches := p.byType[t]
	if len(matches) != 1 {
		return nil, false
	}

	return matches[0], true
}

// TryGetServices appends every service registered for t onto out, in
// registration order, and reports whether at least one was appended.
func (p *Provider) TryGetServices(t reflect.Type, out *[]any) bool {
	if err := p.checkOwnerThread(); err != nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	matches := p.byType[t]
	if len(matches) == 0 {
		return false
	}

	for _, m := range matches {
		*out = append(*out, m)
	}

	return true
}

// GetAllServiceControls returns every distinct registered service, in
// registration order (priority-group order, then within-group order).
func (p *Provider) GetAllServiceControls() ([]service.Control, error) {
	if err := p.checkOwnerThread(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var all []service.Control

	for _, g := range p.groups {
		for _, svc := range g.services {
			all = append(all, svc.Service)
		}
	}

	return all, nil
}
