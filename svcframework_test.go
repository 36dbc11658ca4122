package svcframework_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcframework "github.com/mana-battery/svcframework"
)

type iEcho interface{ Echo(string) string }

var echoType = reflect.TypeOf((*iEcho)(nil)).Elem()

type echoService struct{ prefix string }

func (e *echoService) Echo(s string) string { return e.prefix + s }

func (e *echoService) InitAsync(context.Context, svcframework.CreateInfo) (svcframework.InitResult, error) {
	return svcframework.InitSuccess(), nil
}

func (e *echoService) ShutdownAsync(context.Context) (svcframework.ShutdownResult, error) {
	return svcframework.ShutdownSuccess(), nil
}

func (e *echoService) Process() svcframework.ProcessResult { return svcframework.NoSleep() }

type echoFactory struct{ prefix string }

func (f *echoFactory) SupportedInterfaces() []reflect.Type { return []reflect.Type{echoType} }

func (f *echoFactory) Create(reflect.Type, svcframework.CreateInfo) (svcframework.Control, error) {
	return &echoService{prefix: f.prefix}, nil
}

func TestEndToEndStartProcessShutdown(t *testing.T) {
	reg := svcframework.NewRegistry()

	require.NoError(t, reg.RegisterService(&echoFactory{prefix: "hi-"}, 1, svcframework.MainThreadGroupID))

	mgr := svcframework.New(svcframework.DefaultConfig(), reg.ExtractRegistrations())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, mgr.StartServicesAsync(ctx))

	result := mgr.Update()
	assert.Equal(t, svcframework.NoSleep(), result)

	errs := mgr.ShutdownServicesAsync(ctx)
	assert.Empty(t, errs)
}
