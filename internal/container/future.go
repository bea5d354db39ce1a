// Package container holds the coordination primitives the correlation
// engine and the resource pool are built from: a generic settle-once
// Future, a FIFO deque, a keyed future registry (PromiseMap), an ordered
// future queue (PromiseQueue), and a bounded borrow/return pool.
package container

import (
	"context"
	"sync"
)

// Future is a settle-once value gate: Resolve/Reject close the gate on
// their first call, unblocking every current and future Wait call. Calls
// after the gate is closed update the stored value/error without
// reopening the gate or disturbing waiters that already observed the
// prior outcome — this is the "overwrite, don't re-notify" rule the
// PromiseMap contract requires.
type Future[T any] struct {
	mu     sync.Mutex
	done   chan struct{}
	closed bool
	val    T
	err    error
}

// NewFuture returns a new pending Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns an already-settled Future holding v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Rejected returns an already-settled Future holding err.
func Rejected[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Reject(err)
	return f
}

// Resolve settles f with v, or overwrites the stored value if f was
// already settled. It returns true only if this call settled f.
func (f *Future[T]) Resolve(v T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.val = v
	f.err = nil
	first := !f.closed
	if first {
		f.closed = true
		close(f.done)
	}
	return first
}

// Reject settles f with err, or overwrites the stored error if f was
// already settled. It returns true only if this call settled f.
func (f *Future[T]) Reject(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	first := !f.closed
	if first {
		f.closed = true
		close(f.done)
	}
	return first
}

// Settled reports whether f has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Wait blocks until f settles or ctx is done, returning the most recently
// stored value/error.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Follow links f's eventual settlement to src's: when src settles, f is
// resolved or rejected with the same outcome. This realizes "resolve(k, p)
// where p is itself pending" from the PromiseMap contract. Follow starts a
// goroutine and returns immediately.
func (f *Future[T]) Follow(src *Future[T]) {
	go func() {
		v, err := src.Wait(context.Background())
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
}
