// Package backend defines the ResultBackend contract and the transports
// (Redis, AMQP RPC) implementing it.
package backend

import (
	"context"
	"time"

	"github.com/celeryq/gocelery/internal/base"
)

// ResultBackend stores and retrieves task result messages keyed by task
// ID. Implementations must be safe for concurrent use.
type ResultBackend interface {
	// Put stores msg under msg.TaskID.
	Put(ctx context.Context, msg base.ResultMessage) error

	// Get awaits the result for taskID, racing against timeout when > 0.
	Get(ctx context.Context, taskID string, timeout time.Duration) (base.ResultMessage, error)

	// Delete removes taskID's stored result, if any, and reports whether
	// one was present ("deleted" vs "no result found" in spec terms,
	// surfaced here as a boolean).
	Delete(ctx context.Context, taskID string) (bool, error)

	// Uri returns the connection URI this backend was constructed from.
	Uri() string

	// End releases the backend's connections. A second call returns an
	// error; backends are not reusable after End.
	End() error
}
