package amqp

import (
	"time"

	amqplib "github.com/rabbitmq/amqp091-go"

	"github.com/celeryq/gocelery/uri"
)

// ConfigFromOptions translates a parsed AMQPOptions into the amqp091-go
// dial configuration. Vhost/Username/Password are carried on the
// connection URL itself (see connectionUrl); this only covers the
// negotiated tuning parameters.
func ConfigFromOptions(opts *uri.AMQPOptions) (amqplib.Config, error) {
	config := amqplib.Config{
		Locale: opts.Locale,
	}
	if config.Locale == "" {
		config.Locale = "en_US"
	}
	if opts.ChannelMax != nil {
		config.ChannelMax = uint16(*opts.ChannelMax)
	}
	if opts.FrameMax != nil {
		config.FrameSize = int(*opts.FrameMax)
	}
	if opts.Heartbeat != nil {
		config.Heartbeat = time.Duration(*opts.Heartbeat) * time.Second
	}
	return config, nil
}
