// Package rpc implements backend.ResultBackend over an AMQP reply queue,
// correlating published results to waiting Get calls by correlation ID.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqplib "github.com/rabbitmq/amqp091-go"

	"github.com/celeryq/gocelery/broker/amqp"
	"github.com/celeryq/gocelery/internal/base"
	"github.com/celeryq/gocelery/internal/container"
	"github.com/celeryq/gocelery/internal/errors"
)

// DefaultChannelPoolCapacity mirrors broker/amqp's default; the RPC
// backend borrows channels from its own pool for Put, separate from the
// one permanently-held consumer channel.
const DefaultChannelPoolCapacity = 2

// DefaultPendingTimeout is the per-entry PromiseMap timeout: results are
// expected to be collected long before this, but a client that never
// calls Get should not pin memory forever.
const DefaultPendingTimeout = 365 * 24 * time.Hour

// Backend implements backend.ResultBackend by publishing results to, and
// consuming them from, a reply queue addressed by routingKey.
type Backend struct {
	uri        string
	routingKey string
	conn       *amqplib.Connection
	pool       *container.ResourcePool[*amqplib.Channel]

	consumerChannel *amqplib.Channel
	consumerTag     string

	pending *container.PromiseMap[amqplib.Delivery]
	ended   bool
}

// DialNew opens its own AMQP connection to rawUri and delegates to Dial.
// Use this when the RPC backend should not share a connection with a
// broker the same client also holds.
func DialNew(rawUri string, routingKey string, capacity int) (*Backend, error) {
	const op = "rpc.DialNew"
	conn, err := amqp.DialConnection(rawUri)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	return Dial(rawUri, conn, routingKey, capacity)
}

// Dial asserts routingKey as a non-durable,
// non-auto-deleted reply queue expiring after one idle day, and starts a
// no-ack consumer on it.
func Dial(rawUri string, conn *amqplib.Connection, routingKey string, capacity int) (*Backend, error) {
	const op = "rpc.Dial"

	if capacity <= 0 {
		capacity = DefaultChannelPoolCapacity
	}

	b := &Backend{
		uri:        rawUri,
		routingKey: routingKey,
		conn:       conn,
		pending:    container.NewPromiseMap[amqplib.Delivery](DefaultPendingTimeout),
	}
	b.pool = container.NewResourcePool(capacity,
		func(context.Context) (*amqplib.Channel, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, errors.E(errors.Op(op), errors.Broker, err)
			}
			return ch, nil
		},
		func(ch *amqplib.Channel) (string, error) {
			if err := ch.Close(); err != nil {
				return "errored", err
			}
			return "destroyed", nil
		},
	)

	consumerChannel, err := b.pool.Get(context.Background())
	if err != nil {
		return nil, errors.E(errors.Op(op), errors.Broker, err)
	}
	args := amqplib.Table{"x-expires": int32((24 * time.Hour).Milliseconds())}
	if _, err := consumerChannel.QueueDeclare(routingKey, false, false, false, false, args); err != nil {
		return nil, errors.E(errors.Op(op), errors.Broker, err)
	}
	tag := "gocelery-rpc-" + uuid.NewString()
	deliveries, err := consumerChannel.Consume(routingKey, tag, true, false, false, false, nil)
	if err != nil {
		return nil, errors.E(errors.Op(op), errors.Broker, err)
	}

	b.consumerChannel = consumerChannel
	b.consumerTag = tag
	go b.consumeLoop(deliveries)

	return b, nil
}

func (b *Backend) consumeLoop(deliveries <-chan amqplib.Delivery) {
	for d := range deliveries {
		b.onMessage(&d)
	}
	b.onMessage(nil)
}

// onMessage resolves the pending PromiseMap entry named by a delivery's
// correlation ID, or — when msg is nil, signalling the broker cancelled
// this consumer — rejects every pending entry.
func (b *Backend) onMessage(msg *amqplib.Delivery) {
	if msg == nil {
		b.pending.RejectAll(errors.ErrConsumerCancelled)
		return
	}
	b.pending.Resolve(msg.CorrelationId, *msg)
}

// Uri returns the connection URI this backend was constructed from.
func (b *Backend) Uri() string { return b.uri }

// Put serializes msg as UTF-8 JSON and sends it to the reply queue named
// by routingKey, retrying on the drain handshake.
func (b *Backend) Put(ctx context.Context, msg base.ResultMessage) error {
	const op = "rpc.Backend.Put"

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.E(errors.Op(op), errors.ParseError, err)
	}

	return b.pool.Use(ctx, func(ch *amqplib.Channel) error {
		flow := ch.NotifyFlow(make(chan bool, 1))
		publishing := amqplib.Publishing{
			ContentType:     "application/json",
			ContentEncoding: "utf-8",
			CorrelationId:   msg.TaskID,
			Body:            payload,
		}
		for {
			err := ch.PublishWithContext(ctx, "", b.routingKey, false, false, publishing)
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
	})
}

// Get awaits the delivery correlated with taskID, racing against timeout
// when > 0.
func (b *Backend) Get(ctx context.Context, taskID string, timeout time.Duration) (base.ResultMessage, error) {
	const op = "rpc.Backend.Get"
	var zero base.ResultMessage

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	delivery, err := b.pending.Wait(ctx, taskID)
	if err != nil {
		return zero, errors.E(errors.Op(op), err)
	}

	var msg base.ResultMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		return zero, errors.E(errors.Op(op), errors.ParseError, err)
	}
	return msg, nil
}

// Delete drops taskID's pending entry, reporting whether one existed.
func (b *Backend) Delete(ctx context.Context, taskID string) (bool, error) {
	return b.pending.Delete(taskID, errors.ErrCleared), nil
}

// End rejects all pending Gets, cancels the consumer, returns the
// consumer channel to the pool, destroys the pool, and closes the
// connection. A second call returns an error.
func (b *Backend) End() error {
	const op = "rpc.Backend.End"
	if b.ended {
		return errors.E(errors.Op(op), "backend already ended")
	}
	b.ended = true

	b.pending.RejectAll(errors.ErrDisconnecting)
	if b.consumerTag != "" {
		_ = b.consumerChannel.Cancel(b.consumerTag, false)
	}
	_ = b.pool.Return(b.consumerChannel)
	b.pool.DestroyAll()
	if err := b.conn.Close(); err != nil {
		return errors.E(errors.Op(op), errors.Broker, err)
	}
	return nil
}
