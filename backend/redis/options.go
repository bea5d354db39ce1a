// Package redis implements backend.ResultBackend over Redis using
// redis/go-redis/v9, with support for plain TCP, unix-socket, Sentinel and
// Cluster topologies behind a single redis.UniversalClient.
package redis

import (
	"context"
	"net"

	redislib "github.com/redis/go-redis/v9"
)

// Options configures NewUniversalClient. Exactly one of ClusterAddrs,
// Sentinels, or Path is expected to be set for a Sentinel/Cluster/socket
// deployment; if none are set a plain TCP client dialing Addr is built.
type Options struct {
	Addr     string
	Password string
	DB       int

	Sentinels  []string
	MasterName string

	ClusterAddrs []string

	Path string

	NoDelay *bool
}

// NewUniversalClient builds the go-redis client matching the topology
// implied by which Options fields are set: ClusterAddrs present selects a
// Cluster client, Sentinels present selects a Sentinel (Failover) client,
// Path present selects a TCP client dialing a unix socket, otherwise a
// plain TCP client dialing Addr.
func NewUniversalClient(opts Options) redislib.UniversalClient {
	dialer := noDelayDialer(opts.NoDelay)

	switch {
	case len(opts.ClusterAddrs) > 0:
		return redislib.NewClusterClient(&redislib.ClusterOptions{
			Addrs:    opts.ClusterAddrs,
			Password: opts.Password,
			Dialer:   dialer,
		})
	case len(opts.Sentinels) > 0:
		return redislib.NewFailoverClient(&redislib.FailoverOptions{
			MasterName:    opts.MasterName,
			SentinelAddrs: opts.Sentinels,
			Password:      opts.Password,
			DB:            opts.DB,
			Dialer:        dialer,
		})
	case opts.Path != "":
		return redislib.NewClient(&redislib.Options{
			Network:  "unix",
			Addr:     opts.Path,
			Password: opts.Password,
			DB:       opts.DB,
			Dialer:   dialer,
		})
	default:
		return redislib.NewClient(&redislib.Options{
			Network:  "tcp",
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
			Dialer:   dialer,
		})
	}
}

// noDelayDialer returns a Dialer that explicitly sets TCP_NODELAY on the
// connection to noDelay's value once it's established, or nil (letting
// go-redis use its own default dialer) when noDelay is unset.
func noDelayDialer(noDelay *bool) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if noDelay == nil {
		return nil
	}
	value := *noDelay
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := (&net.Dialer{}).DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(value)
		}
		return conn, nil
	}
}
