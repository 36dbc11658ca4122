package provider_test

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/provider"
	"github.com/mana-battery/svcframework/service"
)

type stubService struct{ name string }

func (s *stubService) InitAsync(context.Context, service.CreateInfo) (service.InitResult, error) {
	return service.InitSuccess(), nil
}

func (s *stubService) ShutdownAsync(context.Context) (service.ShutdownResult, error) {
	return service.ShutdownSuccess(), nil
}

func (s *stubService) Process() proc.Result { return proc.NoSleep() }

type iFoo interface{ Foo() string }

func (s *stubService) Foo() string { return s.name }

var fooType = reflect.TypeOf((*iFoo)(nil)).Elem()

func TestRegisterPriorityGroupDescendingOrderEnforced(t *testing.T) {
	p := provider.New()

	err := p.RegisterPriorityGroup(100, []provider.InstanceInfo{{Service: &stubService{"a"}, SupportedInterfaces: []reflect.Type{fooType}}})
	require.NoError(t, err)

	err = p.RegisterPriorityGroup(200, []provider.InstanceInfo{{Service: &stubService{"b"}, SupportedInterfaces: []reflect.Type{fooType}}})
	assert.ErrorIs(t, err, provider.ErrInvalidPriorityOrder)
}

func TestRegisterPriorityGroupRejectsEmpty(t *testing.T) {
	p := provider.New()
	err := p.RegisterPriorityGroup(100, nil)
	assert.ErrorIs(t, err, provider.ErrEmptyPriorityGroup)
}

func TestRegisterPriorityGroupRejectsInvalidInstance(t *testing.T) {
	p := provider.New()
	err := p.RegisterPriorityGroup(100, []provider.InstanceInfo{{Service: nil, SupportedInterfaces: []reflect.Type{fooType}}})
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)

	err = p.RegisterPriorityGroup(100, []provider.InstanceInfo{{Service: &stubService{"a"}}})
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)
}

func TestGetServiceUnknownAndMultiple(t *testing.T) {
	p := provider.New()

	_, err := p.GetService(fooType)
	assert.ErrorIs(t, err, provider.ErrUnknownService)

	require.NoError(t, p.RegisterPriorityGroup(200, []provider.InstanceInfo{
		{Service: &stubService{"a"}, SupportedInterfaces: []reflect.Type{fooType}},
	}))

	got, err := p.GetService(fooType)
	require.NoError(t, err)
	assert.Equal(t, "a", got.(*stubService).name)

	require.NoError(t, p.RegisterPriorityGroup(100, []provider.InstanceInfo{
		{Service: &stubService{"b"}, SupportedInterfaces: []reflect.Type{fooType}},
	}))

	_, err = p.GetService(fooType)
	assert.ErrorIs(t, err, provider.ErrMultipleServices)
}

func TestTryGetServiceTreatsMultipleAsAbsent(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.RegisterPriorityGroup(200, []provider.InstanceInfo{
		{Service: &stubService{"a"}, SupportedInterfaces: []reflect.Type{fooType}},
	}))
	require.NoError(t, p.RegisterPriorityGroup(100, []provider.InstanceInfo{
		{Service: &stubService{"b"}, SupportedInterfaces: []reflect.Type{fooType}},
	}))

	_, ok := p.TryGetService(fooType)
	assert.False(t, ok)
}

func TestUnregisterPreservesRegistrationOrder(t *testing.T) {
	p := provider.New()
	a := &stubService{"a"}
	b := &stubService{"b"}

	require.NoError(t, p.RegisterPriorityGroup(100, []provider.InstanceInfo{
		{Service: a, SupportedInterfaces: []reflect.Type{fooType}},
		{Service: b, SupportedInterfaces: []reflect.Type{fooType}},
	}))

	infos, ok := p.UnregisterPriorityGroup(100)
	require.True(t, ok)
	require.Len(t, infos, 2)
	assert.Same(t, a, infos[0].Service)
	assert.Same(t, b, infos[1].Service)

	_, err := p.GetService(fooType)
	assert.ErrorIs(t, err, provider.ErrUnknownService)
}

func TestUnregisterAbsentGroupIsNoop(t *testing.T) {
	p := provider.New()
	_, ok := p.UnregisterPriorityGroup(999)
	assert.False(t, ok)
}

func TestCrossThreadAccessFails(t *testing.T) {
	p := provider.New()

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_, err := p.GetService(fooType)
		assert.ErrorIs(t, err, provider.ErrWrongThread)
	}()

	wg.Wait()
}

func TestProxyProviderClear(t *testing.T) {
	p := provider.New()
	require.NoError(t, p.RegisterPriorityGroup(100, []provider.InstanceInfo{
		{Service: &stubService{"a"}, SupportedInterfaces: []reflect.Type{fooType}},
	}))

	proxy := provider.NewProxyProvider(p)

	_, err := proxy.GetService(fooType)
	require.NoError(t, err)

	proxy.Clear()

	_, err = proxy.GetService(fooType)
	assert.ErrorIs(t, err, provider.ErrProviderCleared)

	_, ok := proxy.TryGetService(fooType)
	assert.False(t, ok)
}
