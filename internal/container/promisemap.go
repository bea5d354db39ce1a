package container

import (
	"context"
	"sync"
	"time"
)

// PromiseMap is a keyed registry of settle-once futures, used by the AMQP
// RPC backend to correlate task UUIDs with eventually-delivered result
// messages.
//
// Every key observable through Has is in exactly one of {pending,
// fulfilled, rejected}. If timeout > 0, a settled key auto-deletes that
// long after it settles; the timer starts on settlement and is cancelled
// by Delete/Clear.
type PromiseMap[T any] struct {
	mu      sync.Mutex
	entries map[string]*Future[T]
	timers  map[string]*time.Timer
	timeout time.Duration
}

// NewPromiseMap returns an empty PromiseMap. timeout of 0 disables
// entry expiry.
func NewPromiseMap[T any](timeout time.Duration) *PromiseMap[T] {
	return &PromiseMap[T]{
		entries: make(map[string]*Future[T]),
		timers:  make(map[string]*time.Timer),
		timeout: timeout,
	}
}

// Get returns the Future registered for k, creating a pending one if none
// exists.
func (m *PromiseMap[T]) Get(k string) *Future[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(k)
}

// Wait is sugar for Get(k).Wait(ctx).
func (m *PromiseMap[T]) Wait(ctx context.Context, k string) (T, error) {
	return m.Get(k).Wait(ctx)
}

func (m *PromiseMap[T]) getOrCreateLocked(k string) *Future[T] {
	f, ok := m.entries[k]
	if !ok {
		f = NewFuture[T]()
		m.entries[k] = f
	}
	return f
}

// Resolve settles k with v and returns whether the record was newly
// created by this call (true) as opposed to already existing, pending or
// settled (false). To make k track another future's eventual outcome
// instead, use ResolveFuture.
func (m *PromiseMap[T]) Resolve(k string, v T) bool {
	m.mu.Lock()
	f, existed := m.entries[k]
	if !existed {
		f = NewFuture[T]()
		m.entries[k] = f
	}
	m.mu.Unlock()
	f.Resolve(v)
	m.startExpiry(k)
	return !existed
}

// ResolveFuture settles k to track src's eventual outcome: if src is
// already settled this resolves/rejects k immediately, otherwise k
// remains pending until src settles. It returns whether the record was
// newly created by this call.
func (m *PromiseMap[T]) ResolveFuture(k string, src *Future[T]) bool {
	m.mu.Lock()
	f, existed := m.entries[k]
	if !existed {
		f = NewFuture[T]()
		m.entries[k] = f
	}
	m.mu.Unlock()
	f.Follow(src)
	go func() {
		src.Wait(context.Background())
		m.startExpiry(k)
	}()
	return !existed
}

// Reject settles k with err and returns whether the record was newly
// created by this call.
func (m *PromiseMap[T]) Reject(k string, err error) bool {
	m.mu.Lock()
	f, existed := m.entries[k]
	if !existed {
		f = NewFuture[T]()
		m.entries[k] = f
	}
	m.mu.Unlock()
	f.Reject(err)
	m.startExpiry(k)
	return !existed
}

func (m *PromiseMap[T]) startExpiry(k string) {
	if m.timeout <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k]; !ok {
		return
	}
	if t, ok := m.timers[k]; ok {
		t.Stop()
	}
	m.timers[k] = time.AfterFunc(m.timeout, func() {
		m.mu.Lock()
		delete(m.entries, k)
		delete(m.timers, k)
		m.mu.Unlock()
	})
}

// Delete removes k, rejecting any still-pending waiter with errCancelled,
// and reports whether a record existed.
func (m *PromiseMap[T]) Delete(k string, errCancelled error) bool {
	m.mu.Lock()
	f, ok := m.entries[k]
	if ok {
		delete(m.entries, k)
		if t, tok := m.timers[k]; tok {
			t.Stop()
			delete(m.timers, k)
		}
	}
	m.mu.Unlock()
	if ok && !f.Settled() {
		f.Reject(errCancelled)
	}
	return ok
}

// RejectAll rejects every currently-pending key with err, leaving settled
// keys intact.
func (m *PromiseMap[T]) RejectAll(err error) {
	m.mu.Lock()
	pending := make([]*Future[T], 0, len(m.entries))
	for _, f := range m.entries {
		if !f.Settled() {
			pending = append(pending, f)
		}
	}
	m.mu.Unlock()
	for _, f := range pending {
		f.Reject(err)
	}
}

// Clear rejects every pending key with err and drops all records,
// cancelling any expiry timers.
func (m *PromiseMap[T]) Clear(err error) {
	m.mu.Lock()
	entries := m.entries
	timers := m.timers
	m.entries = make(map[string]*Future[T])
	m.timers = make(map[string]*time.Timer)
	m.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	for _, f := range entries {
		if !f.Settled() {
			f.Reject(err)
		}
	}
}

// Has reports whether k has a record, pending or settled.
func (m *PromiseMap[T]) Has(k string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[k]
	return ok
}

// IsPending reports whether k exists and is not yet settled.
func (m *PromiseMap[T]) IsPending(k string) bool {
	m.mu.Lock()
	f, ok := m.entries[k]
	m.mu.Unlock()
	return ok && !f.Settled()
}

// IsFulfilled reports whether k exists, is settled, and holds no error.
func (m *PromiseMap[T]) IsFulfilled(k string) bool {
	m.mu.Lock()
	f, ok := m.entries[k]
	m.mu.Unlock()
	if !ok || !f.Settled() {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err == nil
}

// IsRejected reports whether k exists, is settled, and holds an error.
func (m *PromiseMap[T]) IsRejected(k string) bool {
	m.mu.Lock()
	f, ok := m.entries[k]
	m.mu.Unlock()
	if !ok || !f.Settled() {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err != nil
}

// Len returns the number of records currently held, pending or settled.
func (m *PromiseMap[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
