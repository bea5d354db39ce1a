package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromiseQueue_PushThenResolveOneIsFIFO(t *testing.T) {
	q := NewPromiseQueue[int]()
	f0 := q.Push()
	f1 := q.Push()

	require.True(t, q.ResolveOne(0))
	require.True(t, q.ResolveOne(1))
	require.False(t, q.ResolveOne(2))

	v0, err := f0.Wait(context.Background())
	require.NoError(t, err)
	v1, err := f1.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, []int{v0, v1})
}

func TestPromiseQueue_ResolveAllSettlesEveryPending(t *testing.T) {
	q := NewPromiseQueue[string]()
	const n = 5
	futures := make([]*Future[string], n)
	for i := range futures {
		futures[i] = q.Push()
	}

	count := q.ResolveAll("done")
	require.Equal(t, n, count)

	for _, f := range futures {
		v, err := f.Wait(context.Background())
		require.NoError(t, err)
		require.Equal(t, "done", v)
	}
}

func TestPromiseQueue_RejectOneSettlesHead(t *testing.T) {
	q := NewPromiseQueue[int]()
	f := q.Push()
	wantErr := errors.New("nope")

	require.True(t, q.RejectOne(wantErr))

	_, err := f.Wait(context.Background())
	require.ErrorIs(t, err, wantErr)
}

func TestPromiseQueue_FollowOneTracksSource(t *testing.T) {
	q := NewPromiseQueue[int]()
	f := q.Push()
	src := NewFuture[int]()

	require.True(t, q.FollowOne(src))
	src.Resolve(7)

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}
