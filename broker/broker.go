// Package broker defines the MessageBroker contract gocelery clients
// publish task messages through, and the transports (currently AMQP)
// implementing it.
package broker

import "github.com/celeryq/gocelery/internal/base"

// MessageBroker publishes task messages to a queue for a worker to
// consume. Implementations must be safe for concurrent use.
type MessageBroker interface {
	// Publish delivers msg, identified by taskID, to the broker's
	// queue/exchange and reports any failure to do so.
	Publish(msg base.TaskMessage, taskID string) error

	// Uri returns the connection URI this broker was constructed from, for
	// diagnostics and the dispatcher's failover bookkeeping.
	Uri() string

	// End releases the broker's connections. A second call returns an
	// error; brokers are not reusable after End.
	End() error
}
