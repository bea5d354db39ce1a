package celery

import (
	"sync"

	"github.com/celeryq/gocelery/broker"
	"github.com/celeryq/gocelery/internal/base"
	"github.com/celeryq/gocelery/internal/errors"
)

// FailoverStrategy selects the broker a dispatcher should attempt next,
// given the full ordered list of configured brokers.
type FailoverStrategy func(brokers []broker.MessageBroker) broker.MessageBroker

// RoundRobinStrategy returns the default FailoverStrategy: it cycles
// through brokers starting from index 0, advancing one position on every
// call and wrapping around.
func RoundRobinStrategy() FailoverStrategy {
	var mu sync.Mutex
	next := 0
	return func(brokers []broker.MessageBroker) broker.MessageBroker {
		mu.Lock()
		defer mu.Unlock()
		if len(brokers) == 0 {
			return nil
		}
		b := brokers[next%len(brokers)]
		next++
		return b
	}
}

// dispatcher fans a single MessageBroker-shaped publish out across an
// ordered set of brokers, retrying with a freshly-selected alternative on
// failure up to len(brokers) attempts before surfacing the failure.
type dispatcher struct {
	brokers  []broker.MessageBroker
	strategy FailoverStrategy
}

// newDispatcher wraps brokers behind a single MessageBroker, selecting
// among them via strategy (RoundRobinStrategy() if nil).
func newDispatcher(brokers []broker.MessageBroker, strategy FailoverStrategy) *dispatcher {
	if strategy == nil {
		strategy = RoundRobinStrategy()
	}
	return &dispatcher{brokers: brokers, strategy: strategy}
}

// Uri reports the first broker's URI, representative of the group.
func (d *dispatcher) Uri() string {
	if len(d.brokers) == 0 {
		return ""
	}
	return d.brokers[0].Uri()
}

// Publish attempts strategy-selected brokers in turn, skipping any broker
// that just failed in this call while alternatives remain, until one
// succeeds or every broker has been tried.
func (d *dispatcher) Publish(msg base.TaskMessage, taskID string) error {
	const op = "celery.dispatcher.Publish"

	if len(d.brokers) == 0 {
		return errors.E(errors.Op(op), errors.Broker, "no brokers configured")
	}

	failed := make(map[broker.MessageBroker]bool, len(d.brokers))
	var lastErr error

	for attempt := 0; attempt < len(d.brokers); attempt++ {
		candidates := d.brokers
		if len(failed) < len(d.brokers) {
			candidates = excluding(d.brokers, failed)
		}
		b := d.strategy(candidates)
		if b == nil {
			break
		}

		err := b.Publish(msg, taskID)
		if err == nil {
			return nil
		}
		lastErr = err
		failed[b] = true
	}

	return errors.E(errors.Op(op), errors.Broker, lastErr)
}

// End closes every broker in the group, returning the first error
// encountered (if any) after attempting all of them.
func (d *dispatcher) End() error {
	var firstErr error
	for _, b := range d.brokers {
		if err := b.End(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func excluding(brokers []broker.MessageBroker, failed map[broker.MessageBroker]bool) []broker.MessageBroker {
	out := make([]broker.MessageBroker, 0, len(brokers))
	for _, b := range brokers {
		if !failed[b] {
			out = append(out, b)
		}
	}
	return out
}
