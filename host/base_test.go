package host_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mana-battery/svcframework/aggerr"
	"github.com/mana-battery/svcframework/executor"
	"github.com/mana-battery/svcframework/host"
	"github.com/mana-battery/svcframework/proc"
	"github.com/mana-battery/svcframework/provider"
	"github.com/mana-battery/svcframework/registry"
)

func newBase(t *testing.T) *host.Base {
	t.Helper()

	return host.NewBase(executor.New(), nil)
}

func TestTryStartServicesAsyncEmptyGroupSucceeds(t *testing.T) {
	b := newBase(t)
	err := b.TryStartServicesAsync(context.Background(), nil, 100)
	require.NoError(t, err)
}

func TestTryStartServicesAsyncRejectsNilFactory(t *testing.T) {
	b := newBase(t)

	err := b.TryStartServicesAsync(context.Background(), []registry.StartRecord{{ServiceName: "a", Factory: nil}}, 100)
	assert.ErrorIs(t, err, host.ErrInvalidServiceFactory)
}

func TestTryStartServicesAsyncRejectsEmptyInterfaceList(t *testing.T) {
	b := newBase(t)

	f := &mockFactory{svc: newMockService("a"), noInterface: true}
	err := b.TryStartServicesAsync(context.Background(), []registry.StartRecord{{ServiceName: "a", Factory: f}}, 100)
	assert.ErrorIs(t, err, host.ErrInvalidServiceFactory)
}

func TestTryStartServicesAsyncConstructionFailurePropagatesImmediately(t *testing.T) {
	b := newBase(t)

	boom := errors.New("construct boom")
	f := &mockFactory{createErr: boom}
	err := b.TryStartServicesAsync(context.Background(), []registry.StartRecord{{ServiceName: "a", Factory: f}}, 100)
	assert.ErrorIs(t, err, boom)

	_, getErr := b.Provider().GetService(widgetType)
	assert.ErrorIs(t, getErr, provider.ErrUnknownService)
}

func TestTryStartServicesAsyncCommitsOnAllSuccess(t *testing.T) {
	b := newBase(t)

	a := newMockService("a")
	bSvc := newMockService("b")

	err := b.TryStartServicesAsync(context.Background(), []registry.StartRecord{
		{ServiceName: "a", Factory: &mockFactory{svc: a}},
		{ServiceName: "b", Factory: &mockFactory{svc: bSvc}},
	}, 100)
	require.NoError(t, err)

	assert.True(t, a.initCalled)
	assert.True(t, bSvc.initCalled)

	_, err = b.Provider().GetService(widgetType)
	assert.ErrorIs(t, err, provider.ErrMultipleServices)
}

func TestTryStartServicesAsyncRollsBackOnPartialInitFailure(t *testing.T) {
	b := newBase(t)

	good := newMockService("good")
	bad := newMockService("bad")
	bad.initErr = errors.New("init boom")

	err := b.TryStartServicesAsync(context.Background(), []registry.StartRecord{
		{ServiceName: "good", Factory: &mockFactory{svc: good}},
		{ServiceName: "bad", Factory: &mockFactory{svc: bad}},
	}, 100)

	require.Error(t, err)

	var agg *aggerr.Aggregate
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Causes(), 1)

	assert.True(t, good.shutdownCalled, "successfully initialized service must be rolled back")
	assert.False(t, bad.shutdownCalled, "a service that failed to init is never shut down")

	_, getErr := b.Provider().GetService(widgetType)
	assert.ErrorIs(t, getErr, provider.ErrUnknownService, "rolled-back group must not be registered")
}

func TestTryShutdownServicesAsyncAbsentGroupIsNoop(t *testing.T) {
	b := newBase(t)

	errs, err := b.TryShutdownServicesAsync(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestTryShutdownServicesAsyncShutsDownEveryService(t *testing.T) {
	b := newBase(t)

	a := newMockService("a")
	bSvc := newMockService("b")

	require.NoError(t, b.TryStartServicesAsync(context.Background(), []registry.StartRecord{
		{ServiceName: "a", Factory: &mockFactory{svc: a}},
		{ServiceName: "b", Factory: &mockFactory{svc: bSvc}},
	}, 100))

	errs, err := b.TryShutdownServicesAsync(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.True(t, a.shutdownCalled)
	assert.True(t, bSvc.shutdownCalled)
}

func TestTryShutdownServicesAsyncCollectsPerServiceErrors(t *testing.T) {
	b := newBase(t)

	a := newMockService("a")
	a.shutdownErr = errors.New("shutdown boom")

	require.NoError(t, b.TryStartServicesAsync(context.Background(), []registry.StartRecord{
		{ServiceName: "a", Factory: &mockFactory{svc: a}},
	}, 100))

	errs, err := b.TryShutdownServicesAsync(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, errs, 1)
}

func TestProcessServicesMergesResults(t *testing.T) {
	b := newBase(t)

	fast := newMockService("fast")
	fast.processResult = proc.Sleep(10)

	slow := newMockService("slow")
	slow.processResult = proc.Sleep(50)

	require.NoError(t, b.TryStartServicesAsync(context.Background(), []registry.StartRecord{
		{ServiceName: "fast", Factory: &mockFactory{svc: fast}},
		{ServiceName: "slow", Factory: &mockFactory{svc: slow}},
	}, 100))

	result := b.ProcessServices()
	assert.Equal(t, proc.SleepLimit, result.Status)
	assert.Equal(t, proc.Sleep(10).Duration, result.Duration)
}

func TestProcessServicesRecoversPanickingService(t *testing.T) {
	b := newBase(t)

	panicky := newMockService("panicky")
	panicky.processPanic = true

	require.NoError(t, b.TryStartServicesAsync(context.Background(), []registry.StartRecord{
		{ServiceName: "panicky", Factory: &mockFactory{svc: panicky}},
	}, 100))

	assert.NotPanics(t, func() {
		result := b.ProcessServices()
		assert.Equal(t, proc.Quit, result.Status)
	})
}
