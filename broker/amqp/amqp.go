// Package amqp implements broker.MessageBroker over RabbitMQ using
// rabbitmq/amqp091-go.
package amqp

import (
	"context"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/celeryq/gocelery/internal/base"
	"github.com/celeryq/gocelery/internal/container"
	"github.com/celeryq/gocelery/internal/errors"
	"github.com/celeryq/gocelery/uri"
)

// DefaultChannelPoolCapacity is the number of concurrently-open channels
// an AMQP broker maintains when no explicit capacity is given.
const DefaultChannelPoolCapacity = 2

// Broker publishes task messages over an AMQP connection, borrowing
// channels from a bounded pool so concurrent publishers never block on a
// single shared channel.
type Broker struct {
	uri     string
	conn    *amqp.Connection
	pool    *container.ResourcePool[*amqp.Channel]
	ended   bool
}

// DialConnection opens a plain *amqp.Connection to rawUri, applying the
// channelMax/frameMax/heartbeat/locale query options ParseAMQPUri
// understands. Exported so other packages needing their own AMQP
// connection (the RPC result backend, notably) don't have to reimplement
// the URI-to-dial-config translation.
func DialConnection(rawUri string) (*amqp.Connection, error) {
	const op = "amqp.DialConnection"

	opts, err := uri.ParseAMQPUri(rawUri)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	config, err := ConfigFromOptions(opts)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}

	conn, err := amqp.DialConfig(connectionUrl(opts), config)
	if err != nil {
		return nil, errors.E(errors.Op(op), errors.Broker, err)
	}
	return conn, nil
}

// Dial opens a connection to rawUri and returns a Broker backed by a
// channel pool of the given capacity (DefaultChannelPoolCapacity if <= 0).
func Dial(rawUri string, capacity int) (*Broker, error) {
	const op = "amqp.Dial"

	conn, err := DialConnection(rawUri)
	if err != nil {
		return nil, err
	}

	if capacity <= 0 {
		capacity = DefaultChannelPoolCapacity
	}

	b := &Broker{uri: rawUri, conn: conn}
	b.pool = container.NewResourcePool(capacity,
		func(context.Context) (*amqp.Channel, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, errors.E(errors.Op(op), errors.Broker, err)
			}
			return ch, nil
		},
		func(ch *amqp.Channel) (string, error) {
			if err := ch.Close(); err != nil {
				return "errored", err
			}
			return "destroyed", nil
		},
	)
	return b, nil
}

// Uri returns the URI this broker was dialed with.
func (b *Broker) Uri() string { return b.uri }

// Publish asserts the destination queue (and, if an exchange is named,
// the exchange) and publishes msg, retrying on the AMQP flow-control
// "drain" handshake until the write is accepted.
func (b *Broker) Publish(msg base.TaskMessage, taskID string) error {
	const op = "amqp.Broker.Publish"

	return b.pool.Use(context.Background(), func(ch *amqp.Channel) error {
		routingKey := msg.Properties.DeliveryInfo.RoutingKey
		exchange := msg.Properties.DeliveryInfo.Exchange

		if _, err := ch.QueueDeclare(routingKey, true, false, false, false, nil); err != nil {
			return errors.E(errors.Op(op), errors.Broker, err)
		}
		if exchange != "" {
			if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
				return errors.E(errors.Op(op), errors.Broker, err)
			}
		}

		publishing := amqp.Publishing{
			ContentEncoding: msg.ContentEncoding,
			ContentType:     msg.ContentType,
			CorrelationId:   msg.Properties.CorrelationID,
			DeliveryMode:    uint8(msg.Properties.DeliveryMode),
			Priority:        uint8(msg.Properties.Priority),
			ReplyTo:         msg.Properties.ReplyTo,
			Body:            []byte(msg.Body),
		}
		if len(msg.Headers) > 0 {
			table := amqp.Table{}
			for k, v := range msg.Headers {
				table[k] = v
			}
			publishing.Headers = table
		}

		return publishWithDrainRetry(ch, exchange, routingKey, publishing)
	})
}

// publishWithDrainRetry mirrors the drain handshake: amqp091-go's
// PublishWithContext blocks internally for blocked/unblocked flow, but a
// channel put into TCP-backpressure flow-control still reports itself via
// NotifyFlow(false); wait for the matching true before giving up.
func publishWithDrainRetry(ch *amqp.Channel, exchange, routingKey string, publishing amqp.Publishing) error {
	const op = "amqp.publishWithDrainRetry"

	flow := ch.NotifyFlow(make(chan bool, 1))
	for {
		err := ch.PublishWithContext(context.Background(), exchange, routingKey, false, false, publishing)
		if err == nil {
			return nil
		}
		drained := false
		for active := range flow {
			if active {
				drained = true
				break
			}
		}
		if !drained {
			return errors.E(errors.Op(op), errors.Broker, err)
		}
	}
}

// End destroys the channel pool and closes the connection. A second call
// returns an error.
func (b *Broker) End() error {
	const op = "amqp.Broker.End"
	if b.ended {
		return errors.E(errors.Op(op), "broker already ended")
	}
	b.ended = true

	b.pool.DestroyAll()
	if err := b.conn.Close(); err != nil {
		return errors.E(errors.Op(op), errors.Broker, err)
	}
	return nil
}

func connectionUrl(opts *uri.AMQPOptions) string {
	vhost := ""
	if opts.Vhost != nil {
		vhost = *opts.Vhost
	}
	port := 5672
	if opts.Port != nil {
		port = *opts.Port
	}
	scheme := "amqp"
	if opts.Protocol == uri.SchemeAMQPS {
		scheme = "amqps"
	}
	userinfo := ""
	if opts.Username != "" || opts.Password != "" {
		userinfo = opts.Username + ":" + opts.Password + "@"
	}
	return scheme + "://" + userinfo + opts.Hostname + ":" + strconv.Itoa(port) + "/" + vhost
}
