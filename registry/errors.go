package registry

import "errors"

var (
	// ErrInvalidServiceFactory is returned when RegisterService is given a
	// nil factory, or one that reports zero supported interfaces.
	ErrInvalidServiceFactory = errors.New("registry: invalid service factory")

	// ErrRegistryExtracted is returned by RegisterService once
	// ExtractRegistrations has already been called.
	ErrRegistryExtracted = errors.New("registry: already extracted")

	// ErrDuplicateServiceRegistration is returned when a factory of a
	// concrete type that is already registered is registered again.
	ErrDuplicateServiceRegistration = errors.New("registry: factory type already registered")
)
