package util

import "context"

// WaitForFirst resolves with the first value delivered on ch, or the zero
// value and ctx.Err() if ctx is done first. This is the channel-based
// analogue of promisifyEvent(emitter, name): a single-shot listener.
func WaitForFirst[T any](ctx context.Context, ch <-chan T) (T, error) {
	var zero T
	select {
	case v, ok := <-ch:
		if !ok {
			return zero, context.Canceled
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// WaitForMatch re-reads ch until filterMap reports ok, returning the mapped
// value. This is the channel-based analogue of filterMapEvent: it keeps
// listening past non-matching deliveries instead of resolving on the first.
func WaitForMatch[T, R any](ctx context.Context, ch <-chan T, filterMap func(T) (R, bool)) (R, error) {
	var zero R
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return zero, context.Canceled
			}
			if mapped, ok := filterMap(v); ok {
				return mapped, nil
			}
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
