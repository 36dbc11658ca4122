package registry

import (
	"reflect"
	"sync"

	"github.com/mana-battery/svcframework/service"
)

// Registry is the pre-startup service catalog (spec.md §4.6). Factories are
// registered before any service exists, keyed by their concrete factory
// type; ExtractRegistrations then transfers them, one time, to whatever
// built the LifecycleManager.
//
// A Registry is safe for concurrent use: registration happens during
// application wiring, which may span goroutines, unlike the provider's
// single-owner-thread query path.
type Registry struct {
	mu            sync.Mutex
	registrations map[reflect.Type]RegistrationRecord
	nextGroupID   uint32
	extracted     bool
}

// New creates an empty Registry with its thread-group-id counter starting
// at 1.
func New() *Registry {
	return &Registry{
		registrations: make(map[reflect.Type]RegistrationRecord),
		nextGroupID:   1,
	}
}

// RegisterService records factory under its concrete type, to be launched
// at priority and pinned to threadGroupID. Fails ErrInvalidServiceFactory
// if factory is nil or supports no interfaces, ErrRegistryExtracted if
// ExtractRegistrations has already run, and ErrDuplicateServiceRegistration
// if a factory of this concrete type is already registered.
func (r *Registry) RegisterService(factory service.Factory, priority LaunchPriority, threadGroupID ThreadGroupID) error {
	if factory == nil {
		return ErrInvalidServiceFactory
	}

	if len(factory.SupportedInterfaces()) == 0 {
		return ErrInvalidServiceFactory
	}

	factoryType := reflect.TypeOf(factory)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.extracted {
		return ErrRegistryExtracted
	}

	if _, ok := r.registrations[factoryType]; ok {
		return ErrDuplicateServiceRegistration
	}

	r.registrations[factoryType] = RegistrationRecord{
		Factory:       factory,
		Priority:      priority,
		ThreadGroupID: threadGroupID,
	}

	return nil
}

// CreateServiceThreadGroupID allocates a new, monotonically increasing
// thread group id, starting from 1. Ids remain available after
// ExtractRegistrations.
func (r *Registry) CreateServiceThreadGroupID() ThreadGroupID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextGroupID
	r.nextGroupID++

	return ThreadGroupID(id)
}

// MainServiceThreadGroupID returns the reserved main/cooperative thread
// group id (0).
func (r *Registry) MainServiceThreadGroupID() ThreadGroupID {
	return MainThreadGroupID
}

// ExtractRegistrations moves every registered record out of the registry
// and marks it extracted; subsequent calls return nil, and subsequent
// RegisterService calls fail ErrRegistryExtracted. Order is unspecified -
// callers partition and sort by priority before use.
func (r *Registry) ExtractRegistrations() []RegistrationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extracted = true

	if len(r.registrations) == 0 {
		return nil
	}

	out := make([]RegistrationRecord, 0, len(r.registrations))
	for _, rec := range r.registrations {
		out = append(out, rec)
	}

	r.registrations = make(map[reflect.Type]RegistrationRecord)

	return out
}
