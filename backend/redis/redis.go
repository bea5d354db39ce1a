package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/celeryq/gocelery/internal/base"
	"github.com/celeryq/gocelery/internal/errors"
)

// DefaultExpiry is the TTL a stored result carries when none is given.
const DefaultExpiry = 24 * time.Hour

// Backend implements backend.ResultBackend over Redis.
type Backend struct {
	uri     string
	client  redislib.UniversalClient
	expiry  time.Duration
	ended   bool
}

// New wraps an already-constructed client (see NewUniversalClient) as a
// Backend reporting rawUri for diagnostics.
func New(rawUri string, client redislib.UniversalClient, expiry time.Duration) *Backend {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Backend{uri: rawUri, client: client, expiry: expiry}
}

// Uri returns the connection URI this backend was constructed from.
func (b *Backend) Uri() string { return b.uri }

// Put SETs the JSON-encoded result under its task-scoped key with this
// backend's expiry, then PUBLISHes the same payload to that key's channel
// so a concurrently-blocked Get's subscription wakes immediately.
func (b *Backend) Put(ctx context.Context, msg base.ResultMessage) error {
	const op = "redis.Backend.Put"

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.E(errors.Op(op), errors.ParseError, err)
	}
	key := base.ResultKey(msg.TaskID)

	if err := b.client.Set(ctx, key, payload, b.expiry).Err(); err != nil {
		return errors.E(errors.Op(op), errors.Broker, err)
	}
	if err := b.client.Publish(ctx, key, payload).Err(); err != nil {
		return errors.E(errors.Op(op), errors.Broker, err)
	}
	return nil
}

// Get subscribes to taskID's result channel before issuing the GET, so a
// Put racing between another goroutine's GET and SUBSCRIBE is never
// missed: this call either observes the value already written, or
// receives the PUBLISH that follows it.
func (b *Backend) Get(ctx context.Context, taskID string, timeout time.Duration) (base.ResultMessage, error) {
	const op = "redis.Backend.Get"
	var zero base.ResultMessage

	key := base.ResultKey(taskID)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sub := b.client.Subscribe(ctx, key)
	defer sub.Close()

	ready := sub.Channel()
	if _, err := sub.Receive(ctx); err != nil {
		return zero, errors.E(errors.Op(op), errors.Broker, err)
	}

	raw, err := b.client.Get(ctx, key).Result()
	if err == nil {
		var msg base.ResultMessage
		if jerr := json.Unmarshal([]byte(raw), &msg); jerr != nil {
			return zero, errors.E(errors.Op(op), errors.ParseError, jerr)
		}
		return msg, nil
	}
	if err != redislib.Nil {
		return zero, errors.E(errors.Op(op), errors.Broker, err)
	}

	select {
	case <-ctx.Done():
		return zero, errors.E(errors.Op(op), errors.Timeout, ctx.Err())
	case m, ok := <-ready:
		if !ok {
			return zero, errors.E(errors.Op(op), errors.Disconnected, "subscription closed before a result arrived")
		}
		var msg base.ResultMessage
		if jerr := json.Unmarshal([]byte(m.Payload), &msg); jerr != nil {
			return zero, errors.E(errors.Op(op), errors.ParseError, jerr)
		}
		return msg, nil
	}
}

// Delete removes taskID's stored result, reporting whether one existed.
func (b *Backend) Delete(ctx context.Context, taskID string) (bool, error) {
	const op = "redis.Backend.Delete"

	n, err := b.client.Del(ctx, base.ResultKey(taskID)).Result()
	if err != nil {
		return false, errors.E(errors.Op(op), errors.Broker, err)
	}
	return n > 0, nil
}

// End closes the underlying client. A second call returns an error.
func (b *Backend) End() error {
	const op = "redis.Backend.End"
	if b.ended {
		return errors.E(errors.Op(op), "backend already ended")
	}
	b.ended = true
	if err := b.client.Close(); err != nil {
		return errors.E(errors.Op(op), errors.Broker, err)
	}
	return nil
}
