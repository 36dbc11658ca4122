package provider

import (
	"reflect"
	"sync"
)

// ProxyProvider is a severable indirection over a Provider, used during
// startup: every service under construction sees a ProxyProvider, and the
// host Clears it if startup fails, so a partially-constructed service can
// never reach into a half-built provider (spec.md §4.5).
type ProxyProvider struct {
	mu    sync.RWMutex
	inner *Provider
}

// NewProxyProvider wraps p.
func NewProxyProvider(p *Provider) *ProxyProvider {
	return &ProxyProvider{inner: p}
}

// Clear severs the proxy from its underlying Provider. After Clear,
// GetService fails ErrProviderCleared and the try-variants report absent.
func (pp *ProxyProvider) Clear() {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	pp.inner = nil
}

// GetService delegates to the wrapped Provider, or fails ErrProviderCleared
// once severed.
func (pp *ProxyProvider) GetService(t reflect.Type) (any, error) {
	pp.mu.RLock()
	inner := pp.inner
	pp.mu.RUnlock()

	if inner == nil {
		return nil, ErrProviderCleared
	}

	return inner.GetService(t)
}

// TryGetService delegates to the wrapped Provider, reporting absent once
// severed.
func (pp *ProxyProvider) TryGetService(t reflect.Type) (any, bool) {
	pp.mu.RLock()
	inner := pp.inner
	pp.mu.RUnlock()

	if inner == nil {
		return nil, false
	}

	return inner.TryGetService(t)
}

// TryGetServices delegates to the wrapped Provider, reporting false once
// severed.
func (pp *ProxyProvider) TryGetServices(t reflect.Type, out *[]any) bool {
	pp.mu.RLock()
	inner := pp.inner
	pp.mu.RUnlock()

	if inner == nil {
		return false
	}

	return inner.TryGetServices(t, out)
}
