package provider

import "errors"

// Sentinel errors for provider.Provider, matching spec.md §7's taxonomy.
var (
	ErrEmptyPriorityGroup  = errors.New("provider: priority group has no services")
	ErrInvalidPriorityOrder = errors.New("provider: priority must be strictly less than the last registered priority")
	ErrInvalidArgument     = errors.New("provider: invalid service instance info")
	ErrUnknownService      = errors.New("provider: no service registered for the requested type")
	ErrMultipleServices    = errors.New("provider: more than one service registered for the requested type")
	ErrWrongThread         = errors.New("provider: accessed from a goroutine other than its owner")
	ErrProviderCleared     = errors.New("provider: proxy has been cleared")
)
