package uri

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/celeryq/gocelery/internal/errors"
)

// RedisTCPOptions is the typed result of parsing a redis/rediss URI.
type RedisTCPOptions struct {
	Host     string
	Port     *int
	Password *string
	DB       *int
	NoDelay  *bool
}

// RedisSocketOptions is the typed result of parsing a redis+socket/
// rediss+socket URI.
type RedisSocketOptions struct {
	Path     string
	Password *string
	NoDelay  *bool
}

var redisDBPath = regexp.MustCompile(`^/0*(\d+)$`)

// ParseRedisTCPUri parses a redis/rediss URI. A password supplied via the
// "password" query key takes precedence over one carried in userinfo; db
// is read from a path matching /^\/0*(\d+)$/.
func ParseRedisTCPUri(s string) (*RedisTCPOptions, error) {
	const op = "uri.ParseRedisTCPUri"

	scheme, err := GetScheme(s)
	if err != nil {
		return nil, err
	}
	if scheme != SchemeRedis && scheme != SchemeRediss {
		return nil, errors.E(errors.Op(op), errors.ParseError, "not a redis TCP scheme: "+string(scheme))
	}

	parsed, err := ParseUri(s)
	if err != nil {
		return nil, err
	}

	opts := &RedisTCPOptions{}
	if parsed.Authority != nil {
		opts.Host = parsed.Authority.Host
		opts.Port = parsed.Authority.Port
		if ui := parsed.Authority.UserInfo; ui != nil && ui.Pass != nil {
			opts.Password = ui.Pass
		}
	}

	if m := redisDBPath.FindStringSubmatch(parsed.Path); m != nil {
		db, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, errors.E(errors.Op(op), errors.ParseError, err)
		}
		opts.DB = &db
	}

	if raw, ok := parsed.Query["password"]; ok {
		s, _ := AsScalar(raw).(string)
		opts.Password = &s
	}
	if raw, ok := parsed.Query["noDelay"]; ok {
		s, _ := AsScalar(raw).(string)
		nd, err := boolFromQuery(s)
		if err != nil {
			return nil, err
		}
		opts.NoDelay = &nd
	}

	return opts, nil
}

// ParseRedisSocketUri parses a redis+socket/rediss+socket URI. Path must
// not contain a NUL byte.
func ParseRedisSocketUri(s string) (*RedisSocketOptions, error) {
	const op = "uri.ParseRedisSocketUri"

	scheme, err := GetScheme(s)
	if err != nil {
		return nil, err
	}
	if scheme != SchemeRedisSocket && scheme != SchemeRedissSocket {
		return nil, errors.E(errors.Op(op), errors.ParseError, "not a redis socket scheme: "+string(scheme))
	}

	parsed, err := ParseUri(s)
	if err != nil {
		return nil, err
	}
	if strings.ContainsRune(parsed.Path, 0) {
		return nil, errors.E(errors.Op(op), errors.ParseError, "socket path must not contain NUL")
	}

	opts := &RedisSocketOptions{Path: parsed.Path}
	if raw, ok := parsed.Query["password"]; ok {
		s, _ := AsScalar(raw).(string)
		opts.Password = &s
	}
	if raw, ok := parsed.Query["noDelay"]; ok {
		s, _ := AsScalar(raw).(string)
		nd, err := boolFromQuery(s)
		if err != nil {
			return nil, err
		}
		opts.NoDelay = &nd
	}

	return opts, nil
}

func boolFromQuery(s string) (bool, error) {
	v, err := BooleanParser(s)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// ParseSentinelOrClusterUri recognizes the sentinel/sentinels schemes for
// routing purposes only; detailed URI emission for Sentinel/Cluster
// topologies is a Non-goal, so this always reports Unimplemented.
func ParseSentinelOrClusterUri(s string) (*Uri, error) {
	const op = "uri.ParseSentinelOrClusterUri"
	scheme, err := GetScheme(s)
	if err != nil {
		return nil, err
	}
	if scheme != SchemeSentinel && scheme != SchemeSentinels {
		return nil, errors.E(errors.Op(op), errors.ParseError, "not a sentinel scheme: "+string(scheme))
	}
	return nil, errors.E(errors.Op(op), errors.Unimplemented, "sentinel/cluster URI emission is not implemented; parse the host list out-of-band")
}
