package host_test

import (
	"context"
	"reflect"

	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/service"
)

type iWidget interface{ Widget() string }

var widgetType = reflect.TypeOf((*iWidget)(nil)).Elem()

// mockService is a configurable service.Control used across the host
// package's tests.
type mockService struct {
	name string

	initResult     service.InitResult
	initErr        error
	shutdownResult service.ShutdownResult
	shutdownErr    error
	processResult  proc.Result
	processPanic   bool

	initCalled     bool
	shutdownCalled bool
	dependency     service.Provider
}

func newMockService(name string) *mockService {
	return &mockService{
		name:           name,
		initResult:     service.InitSuccess(),
		shutdownResult: service.ShutdownSuccess(),
		processResult:  proc.NoSleep(),
	}
}

func (m *mockService) Widget() string { return m.name }

func (m *mockService) InitAsync(_ context.Context, create service.CreateInfo) (service.InitResult, error) {
	m.initCalled = true
	m.dependency = create.Provider

	return m.initResult, m.initErr
}

func (m *mockService) ShutdownAsync(context.Context) (service.ShutdownResult, error) {
	m.shutdownCalled = true

	return m.shutdownResult, m.shutdownErr
}

func (m *mockService) Process() proc.Result {
	if m.processPanic {
		panic("boom")
	}

	return m.processResult
}

// mockFactory produces a single preconstructed mockService.
type mockFactory struct {
	svc         *mockService
	createErr   error
	noInterface bool
}

func (f *mockFactory) SupportedInterfaces() []reflect.Type {
	if f.noInterface {
		return nil
	}

	return []reflect.Type{widgetType}
}

func (f *mockFactory) Create(reflect.Type, service.CreateInfo) (service.Control, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	return f.svc, nil
}
