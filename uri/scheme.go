// Package uri implements the connection-string parsing and query
// descriptor layer used to normalize broker/backend URIs across every
// scheme gocelery supports.
package uri

import (
	"regexp"
	"strings"

	"github.com/celeryq/gocelery/internal/errors"
)

// Scheme is one of the URI schemes recognized by the Celery transports.
type Scheme string

const (
	SchemeAMQP          Scheme = "amqp"
	SchemeAMQPS         Scheme = "amqps"
	SchemeRPC           Scheme = "rpc"
	SchemeRPCS          Scheme = "rpcs"
	SchemeRedis         Scheme = "redis"
	SchemeRediss        Scheme = "rediss"
	SchemeRedisSocket   Scheme = "redis+socket"
	SchemeRedissSocket  Scheme = "rediss+socket"
	SchemeSentinel      Scheme = "sentinel"
	SchemeSentinels     Scheme = "sentinels"
)

var knownSchemes = map[Scheme]bool{
	SchemeAMQP: true, SchemeAMQPS: true, SchemeRPC: true, SchemeRPCS: true,
	SchemeRedis: true, SchemeRediss: true,
	SchemeRedisSocket: true, SchemeRedissSocket: true,
	SchemeSentinel: true, SchemeSentinels: true,
}

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// GetScheme extracts and lowercases the leading scheme of s, failing only
// if the leading token does not match the generic URI scheme grammar
// ([A-Za-z][A-Za-z0-9+.-]*:). It does not restrict the result to the set
// of schemes gocelery's transports understand — that restriction is
// applied by the per-scheme parsers (ParseAMQPUri, ParseRedisTCPUri, ...),
// not by this generic extraction step.
func GetScheme(s string) (Scheme, error) {
	const op = "uri.GetScheme"
	m := schemePattern.FindString(s)
	if m == "" {
		return "", errors.E(errors.Op(op), errors.ParseError, "no URI scheme found in "+s)
	}
	return Scheme(strings.ToLower(strings.TrimSuffix(m, ":"))), nil
}

// Recognized reports whether scheme is one of the schemes gocelery's
// transports understand. The AMQP and Redis URI parsers do not call it;
// each checks for its own scheme family directly.
func Recognized(scheme Scheme) bool {
	return knownSchemes[scheme]
}

// IsAMQP reports whether scheme is one of the amqp/amqps/rpc/rpcs family,
// all of which the AMQP parser treats as aliases.
func (s Scheme) IsAMQP() bool {
	switch s {
	case SchemeAMQP, SchemeAMQPS, SchemeRPC, SchemeRPCS:
		return true
	default:
		return false
	}
}

// IsTLS reports whether scheme names the TLS variant of its transport.
func (s Scheme) IsTLS() bool {
	switch s {
	case SchemeAMQPS, SchemeRPCS, SchemeRediss, SchemeRedissSocket, SchemeSentinels:
		return true
	default:
		return false
	}
}

// Protocol resolves rpc/rpcs aliases to amqp/amqps, and is otherwise the
// identity. This is the "protocol" field emitted alongside a parsed AMQP
// URI.
func (s Scheme) Protocol() Scheme {
	switch s {
	case SchemeRPC:
		return SchemeAMQP
	case SchemeRPCS:
		return SchemeAMQPS
	default:
		return s
	}
}
