package uri

import (
	"strings"

	"github.com/celeryq/gocelery/internal/errors"
)

// AMQPOptions is the typed result of parsing an amqp/amqps/rpc/rpcs URI.
// rpc/rpcs are aliases recognized at parse time; Protocol always reports
// the resolved amqp/amqps form.
type AMQPOptions struct {
	Protocol   Scheme
	Hostname   string
	Port       *int
	Username   string
	Password   string
	Vhost      *string
	ChannelMax *int64
	FrameMax   *int64
	Heartbeat  *int64
	Locale     string
}

var amqpDescriptors = []Descriptor[AMQPOptions]{
	{Source: "channel_max", Parser: IntegerParser, Assign: func(o *AMQPOptions, v interface{}) {
		n := v.(int64)
		o.ChannelMax = &n
	}},
	{Source: "frame_max", Parser: IntegerParser, Assign: func(o *AMQPOptions, v interface{}) {
		n := v.(int64)
		o.FrameMax = &n
	}},
	{Source: "heartbeat", Parser: IntegerParser, Assign: func(o *AMQPOptions, v interface{}) {
		n := v.(int64)
		o.Heartbeat = &n
	}},
	{Source: "locale", Parser: StringParser, Assign: func(o *AMQPOptions, v interface{}) {
		o.Locale, _ = v.(string)
	}},
}

// ParseAMQPUri parses an amqp/amqps/rpc/rpcs URI into AMQPOptions. Missing
// authority fails. Vhost extraction follows "...//host[/vhost]": no
// trailing slash means "default vhost" (Vhost left nil); a trailing slash
// with no following segment means vhost "".
func ParseAMQPUri(s string) (*AMQPOptions, error) {
	const op = "uri.ParseAMQPUri"

	scheme, err := GetScheme(s)
	if err != nil {
		return nil, err
	}
	if !scheme.IsAMQP() {
		return nil, errors.E(errors.Op(op), errors.ParseError, "not an amqp-family scheme: "+string(scheme))
	}

	parsed, err := ParseUri(s)
	if err != nil {
		return nil, err
	}
	if parsed.Authority == nil {
		return nil, errors.E(errors.Op(op), errors.ParseError, "amqp URI is missing an authority: "+s)
	}

	opts := &AMQPOptions{
		Protocol: scheme.Protocol(),
		Hostname: parsed.Authority.Host,
	}
	opts.Port = parsed.Authority.Port
	if ui := parsed.Authority.UserInfo; ui != nil {
		opts.Username = ui.User
		if ui.Pass != nil {
			opts.Password = *ui.Pass
		}
	}

	switch parsed.Path {
	case "":
		// no trailing slash at all: default vhost, left unset.
	case "/":
		empty := ""
		opts.Vhost = &empty
	default:
		trimmed := strings.TrimPrefix(parsed.Path, "/")
		decoded, err := percentDecode(trimmed)
		if err != nil {
			return nil, errors.E(errors.Op(op), errors.ParseError, err)
		}
		opts.Vhost = &decoded
	}

	result, err := Parse(amqpDescriptors, parsed.Query, *opts)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
