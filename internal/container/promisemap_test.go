package container

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPromiseMap_GetThenResolve(t *testing.T) {
	m := NewPromiseMap[int](0)
	f := m.Get("k")
	done := make(chan struct{})
	var got int
	var err error
	go func() {
		got, err = f.Wait(context.Background())
		close(done)
	}()

	created := m.Resolve("k", 42)
	require.True(t, created)

	<-done
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestPromiseMap_ResolveThenGet(t *testing.T) {
	m := NewPromiseMap[string](0)
	m.Resolve("k", "hello")

	v, err := m.Wait(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestPromiseMap_RejectIsSymmetric(t *testing.T) {
	m := NewPromiseMap[int](0)
	wantErr := errors.New("boom")
	created := m.Reject("k", wantErr)
	require.True(t, created)

	_, err := m.Wait(context.Background(), "k")
	require.ErrorIs(t, err, wantErr)
}

func TestPromiseMap_GetAfterDeleteOnNeverSettledKeyRejects(t *testing.T) {
	m := NewPromiseMap[int](0)
	f := m.Get("k")
	cancelReason := errors.New("deleted")
	ok := m.Delete("k", cancelReason)
	require.True(t, ok)

	_, err := f.Wait(context.Background())
	require.ErrorIs(t, err, cancelReason)
}

func TestPromiseMap_RejectAllDoesNotDisturbSettled(t *testing.T) {
	m := NewPromiseMap[int](0)
	m.Resolve("settled", 1)
	m.Get("pending")

	m.RejectAll(errors.New("all gone"))

	v, err := m.Wait(context.Background(), "settled")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	_, err = m.Wait(context.Background(), "pending")
	require.Error(t, err)
}

func TestPromiseMap_ClearRejectsPendingWithClearedReason(t *testing.T) {
	m := NewPromiseMap[int](0)
	f := m.Get("k")
	clearedErr := errors.New("cleared")

	m.Clear(clearedErr)

	_, err := f.Wait(context.Background())
	require.ErrorIs(t, err, clearedErr)
	require.False(t, m.Has("k"))
}

func TestPromiseMap_ResolveWithRejectingFutureEndsRejected(t *testing.T) {
	m := NewPromiseMap[int](0)
	src := NewFuture[int]()
	m.ResolveFuture("k", src)

	wantErr := errors.New("downstream failed")
	src.Reject(wantErr)

	_, err := m.Wait(context.Background(), "k")
	require.ErrorIs(t, err, wantErr)
}

func TestPromiseMap_EntryExpiresAfterSettlement(t *testing.T) {
	m := NewPromiseMap[int](10 * time.Millisecond)
	m.Resolve("k", 1)
	require.True(t, m.Has("k"))

	require.Eventually(t, func() bool {
		return !m.Has("k")
	}, 50*time.Millisecond, time.Millisecond)
}

func TestPromiseMap_OverwriteDoesNotRenotifyExistingWaiters(t *testing.T) {
	m := NewPromiseMap[int](0)
	f := m.Get("k")
	m.Resolve("k", 1)

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)

	m.Resolve("k", 2)

	v2, err := m.Wait(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, 2, v2)
}
