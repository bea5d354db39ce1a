package celery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celeryq/gocelery/broker"
	"github.com/celeryq/gocelery/internal/base"
)

var errBrokerDown = errors.New("broker down")

type fakeBroker struct {
	uri     string
	fail    bool
	publish int
	ended   bool
}

func (f *fakeBroker) Publish(msg base.TaskMessage, taskID string) error {
	f.publish++
	if f.fail {
		return errBrokerDown
	}
	return nil
}
func (f *fakeBroker) Uri() string { return f.uri }
func (f *fakeBroker) End() error  { f.ended = true; return nil }

func TestDispatcher_FallsOverToNextBrokerOnFailure(t *testing.T) {
	a := &fakeBroker{uri: "amqp://a", fail: true}
	b := &fakeBroker{uri: "amqp://b"}

	d := newDispatcher([]broker.MessageBroker{a, b}, RoundRobinStrategy())
	err := d.Publish(base.TaskMessage{}, "task-1")
	require.NoError(t, err)
	require.Equal(t, 1, a.publish)
	require.Equal(t, 1, b.publish)
}

func TestDispatcher_SurfacesErrorOnlyAfterAllBrokersTried(t *testing.T) {
	a := &fakeBroker{uri: "amqp://a", fail: true}
	b := &fakeBroker{uri: "amqp://b", fail: true}

	d := newDispatcher([]broker.MessageBroker{a, b}, RoundRobinStrategy())
	err := d.Publish(base.TaskMessage{}, "task-1")
	require.Error(t, err)
	require.Equal(t, 1, a.publish)
	require.Equal(t, 1, b.publish)
}

func TestDispatcher_EndClosesEveryBroker(t *testing.T) {
	a := &fakeBroker{uri: "amqp://a"}
	b := &fakeBroker{uri: "amqp://b"}

	d := newDispatcher([]broker.MessageBroker{a, b}, RoundRobinStrategy())
	require.NoError(t, d.End())
	require.True(t, a.ended)
	require.True(t, b.ended)
}
