package redis

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/celeryq/gocelery/internal/base"
)

// setup dials a real local Redis, mirroring the teacher's rdb_test.go
// precedent of testing against localhost:6379 rather than a mock, on a
// dedicated DB flushed before each test.
func setup(t *testing.T) (*Backend, redislib.UniversalClient) {
	t.Helper()
	client := redislib.NewClient(&redislib.Options{Addr: "localhost:6379", DB: 13})
	ctx := context.Background()
	require.NoError(t, client.FlushDB(ctx).Err())
	return New("redis://localhost:6379/13", client, DefaultExpiry), client
}

func TestGet_PreExistingKeyResolvesWithin20ms(t *testing.T) {
	b, client := setup(t)
	defer client.Close()
	ctx := context.Background()

	msg := base.ResultMessage{TaskID: "task-1", Status: base.StateSuccess, Result: float64(4)}
	require.NoError(t, b.Put(ctx, msg))

	start := time.Now()
	got, err := b.Get(ctx, "task-1", time.Second)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, base.StateSuccess, got.Status)
	require.Less(t, elapsed, 20*time.Millisecond)
}

func TestGet_BeginsBeforePublishStillResolvesAfterPublish(t *testing.T) {
	b, client := setup(t)
	defer client.Close()
	ctx := context.Background()

	msg := base.ResultMessage{TaskID: "task-2", Status: base.StateSuccess, Result: float64(9)}

	resultCh := make(chan base.ResultMessage, 1)
	errCh := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		close(started)
		got, err := b.Get(ctx, "task-2", time.Second)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- got
	}()

	<-started
	// Give Get time to subscribe before the value ever exists.
	time.Sleep(20 * time.Millisecond)

	publishedAt := time.Now()
	require.NoError(t, b.Put(ctx, msg))

	select {
	case err := <-errCh:
		t.Fatalf("Get failed: %v", err)
	case got := <-resultCh:
		require.Less(t, time.Since(publishedAt), 5*time.Millisecond+50*time.Millisecond)
		require.Equal(t, base.StateSuccess, got.Status)
	case <-time.After(time.Second):
		t.Fatal("Get did not resolve after publish landed")
	}
}

func TestPut_SetsTTLAtLeast86400MinusTwoSeconds(t *testing.T) {
	b, client := setup(t)
	defer client.Close()
	ctx := context.Background()

	msg := base.ResultMessage{TaskID: "task-3", Status: base.StateSuccess, Result: float64(1)}
	require.NoError(t, b.Put(ctx, msg))

	ttl, err := client.TTL(ctx, base.ResultKey("task-3")).Result()
	require.NoError(t, err)
	require.GreaterOrEqual(t, ttl, 86400*time.Second-2*time.Second)
}

func TestDelete_ReturnsTrueAndRemovesKey(t *testing.T) {
	b, client := setup(t)
	defer client.Close()
	ctx := context.Background()

	msg := base.ResultMessage{TaskID: "task-4", Status: base.StateSuccess, Result: float64(1)}
	require.NoError(t, b.Put(ctx, msg))

	existed, err := b.Delete(ctx, "task-4")
	require.NoError(t, err)
	require.True(t, existed)

	n, err := client.Exists(ctx, base.ResultKey("task-4")).Result()
	require.NoError(t, err)
	require.Zero(t, n)

	goneAgain, err := b.Delete(ctx, "task-4")
	require.NoError(t, err)
	require.False(t, goneAgain)
}

func TestBackend_EndClosesClient(t *testing.T) {
	b, client := setup(t)
	defer func() { _ = client.Close() }()

	require.NoError(t, b.End())
	require.Error(t, b.End())
}
