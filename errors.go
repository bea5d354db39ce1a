package celery

import (
	"errors"

	internal "github.com/celeryq/gocelery/internal/errors"
)

// Public sentinel reasons callers can match against with errors.Is,
// mirroring the teacher's exposure of package-level Err* values.
var (
	// ErrDisconnected is returned by ApplyAsync and End once the client
	// has been ended.
	ErrDisconnected = errors.New("gocelery: client already ended")
	// ErrConsumerCancelled is the reason pending Gets are rejected with
	// when RabbitMQ drops the RPC backend's consumer.
	ErrConsumerCancelled = internal.ErrConsumerCancelled
	// ErrDisconnecting is the reason pending Gets are rejected with during
	// an in-progress End.
	ErrDisconnecting = internal.ErrDisconnecting
)

// CanonicalCode exposes the internal error taxonomy's canonical code for
// err, for callers that want to branch on error kind rather than match a
// sentinel value.
type CanonicalCode = internal.Code

// CodeOf returns err's canonical code, or CodeUnspecified if none is
// present.
func CodeOf(err error) CanonicalCode {
	return internal.CanonicalCode(err)
}
