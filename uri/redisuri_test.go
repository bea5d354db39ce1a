package uri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRedisTCPUri_PasswordAndDB(t *testing.T) {
	o, err := ParseRedisTCPUri("redis://:super%20secure@localhost/0")
	require.NoError(t, err)
	require.NotNil(t, o.Password)
	require.Equal(t, "super secure", *o.Password)
	require.NotNil(t, o.DB)
	require.Equal(t, 0, *o.DB)
}

func TestParseRedisTCPUri_QueryPasswordBeatsUserinfo(t *testing.T) {
	o, err := ParseRedisTCPUri("redis://:frompass@host/0?password=fromquery")
	require.NoError(t, err)
	require.NotNil(t, o.Password)
	require.Equal(t, "fromquery", *o.Password)
}

func TestParseRedisTCPUri_BadPortFails(t *testing.T) {
	_, err := ParseRedisTCPUri("redis://host:badport")
	require.Error(t, err)
}

func TestParseRedisSocketUri_Path(t *testing.T) {
	o, err := ParseRedisSocketUri("redis+socket:///tmp/redis.sock?password=x&noDelay=true")
	require.NoError(t, err)
	require.Equal(t, "/tmp/redis.sock", o.Path)
	require.NotNil(t, o.Password)
	require.Equal(t, "x", *o.Password)
	require.NotNil(t, o.NoDelay)
	require.True(t, *o.NoDelay)
}

func TestParseSentinelOrClusterUri_Unimplemented(t *testing.T) {
	_, err := ParseSentinelOrClusterUri("sentinel://host:26379")
	require.Error(t, err)
}
