package container

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sequentialIntPool(capacity int) *ResourcePool[int] {
	var next int64 = -1
	create := func(context.Context) (int, error) {
		return int(atomic.AddInt64(&next, 1)), nil
	}
	destroy := func(int) (string, error) {
		return "destroyed", nil
	}
	return NewResourcePool[int](capacity, create, destroy)
}

func TestResourcePool_ReturnOrderDeterminesFIFOReuse(t *testing.T) {
	p := sequentialIntPool(4)
	ctx := context.Background()

	r0, err := p.Get(ctx)
	require.NoError(t, err)
	r1, err := p.Get(ctx)
	require.NoError(t, err)
	r2, err := p.Get(ctx)
	require.NoError(t, err)
	_, err = p.Get(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Return(r1))
	require.NoError(t, p.Return(r0))
	require.NoError(t, p.Return(r2))

	got := make([]int, 3)
	for i := range got {
		v, err := p.Get(ctx)
		require.NoError(t, err)
		got[i] = v
	}
	require.Equal(t, []int{1, 0, 2}, got)
}

func TestResourcePool_FifthGetBlocksUntilReturn(t *testing.T) {
	p := sequentialIntPool(4)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := p.Get(ctx)
		require.NoError(t, err)
	}

	resultCh := make(chan int, 1)
	go func() {
		v, err := p.Get(context.Background())
		require.NoError(t, err)
		resultCh <- v
	}()

	select {
	case <-resultCh:
		t.Fatal("5th Get should have blocked with all 4 resources in use")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, p.Return(3))

	select {
	case v := <-resultCh:
		require.Equal(t, 3, v)
	case <-time.After(time.Second):
		t.Fatal("5th Get never unblocked after Return")
	}
}

func TestResourcePool_ReturnForeignResourceErrors(t *testing.T) {
	p := sequentialIntPool(2)
	err := p.Return(999)
	require.Error(t, err)
}

func TestResourcePool_UseReturnsResourceEvenOnError(t *testing.T) {
	p := sequentialIntPool(1)
	wantErr := errors.New("handler failed")

	err := p.Use(context.Background(), func(r int) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 1, p.NumUnused())
}

func TestResourcePool_UseReturnsResourceOnPanic(t *testing.T) {
	p := sequentialIntPool(1)

	func() {
		defer func() { recover() }()
		_ = p.Use(context.Background(), func(r int) error {
			panic("boom")
		})
	}()

	require.Equal(t, 1, p.NumUnused())
}

func TestResourcePool_DestroyAllDefersInUseResources(t *testing.T) {
	p := sequentialIntPool(2)
	ctx := context.Background()
	r0, err := p.Get(ctx)
	require.NoError(t, err)
	r1, err := p.Get(ctx)
	require.NoError(t, err)

	destroyed := p.DestroyAll()
	require.False(t, destroyed.Settled())

	require.NoError(t, p.Return(r0))
	require.False(t, destroyed.Settled())
	require.NoError(t, p.Return(r1))

	require.Eventually(t, func() bool { return destroyed.Settled() }, time.Second, time.Millisecond)
	outcomes, err := destroyed.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"destroyed", "destroyed"}, outcomes)
}

func TestResourcePool_GetAfterDestroyAllIsDisconnected(t *testing.T) {
	p := sequentialIntPool(1)
	p.DestroyAll()

	_, err := p.Get(context.Background())
	require.Error(t, err)
}
