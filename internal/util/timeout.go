package util

import (
	"context"
	"time"

	"github.com/celeryq/gocelery/internal/errors"
)

// WaitWithTimeout blocks on ch until it yields a value, ctx is done, or ms
// milliseconds elapse (ms <= 0 disables the timeout and is equivalent to
// waiting on ctx alone), mirroring createTimeoutPromise/createTimerPromise.
func WaitWithTimeout[T any](ctx context.Context, ch <-chan T, ms int64) (T, error) {
	const op = "util.WaitWithTimeout"
	var zero T
	if ms <= 0 {
		select {
		case v := <-ch:
			return v, nil
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, errors.E(errors.Op(op), errors.Timeout, "timed out after waiting")
	}
}
