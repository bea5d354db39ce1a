package redis

import (
	"testing"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestNewUniversalClient_ClusterAddrsSelectsClusterClient(t *testing.T) {
	c := NewUniversalClient(Options{ClusterAddrs: []string{"a:6379", "b:6379"}})
	_, ok := c.(*redislib.ClusterClient)
	require.True(t, ok)
}

func TestNewUniversalClient_SentinelsSelectsFailoverClient(t *testing.T) {
	c := NewUniversalClient(Options{Sentinels: []string{"s1:26379"}, MasterName: "mymaster"})
	_, ok := c.(*redislib.Client)
	require.True(t, ok)
}

func TestNewUniversalClient_PathSelectsUnixSocketClient(t *testing.T) {
	c := NewUniversalClient(Options{Path: "/tmp/redis.sock"})
	client, ok := c.(*redislib.Client)
	require.True(t, ok)
	require.Equal(t, "/tmp/redis.sock", client.Options().Addr)
	require.Equal(t, "unix", client.Options().Network)
}

func TestNewUniversalClient_DefaultsToTCPClient(t *testing.T) {
	c := NewUniversalClient(Options{Addr: "localhost:6379"})
	client, ok := c.(*redislib.Client)
	require.True(t, ok)
	require.Equal(t, "localhost:6379", client.Options().Addr)
}

func TestNewUniversalClient_NoDelaySetInstallsCustomDialer(t *testing.T) {
	noDelay := false
	c := NewUniversalClient(Options{Addr: "localhost:6379", NoDelay: &noDelay})
	client, ok := c.(*redislib.Client)
	require.True(t, ok)
	require.NotNil(t, client.Options().Dialer)
}

func TestNewUniversalClient_NoDelayUnsetLeavesDefaultDialer(t *testing.T) {
	c := NewUniversalClient(Options{Addr: "localhost:6379"})
	client, ok := c.(*redislib.Client)
	require.True(t, ok)
	// No custom dialer is supplied, so go-redis falls back to its own.
	require.Nil(t, noDelayDialer(nil))
}
