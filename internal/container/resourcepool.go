package container

import (
	"context"
	"sync"

	"github.com/celeryq/gocelery/internal/errors"
)

// ResourcePool bounds concurrent use of a comparable resource type R (a
// channel, a connection handle, ...) behind a factory and destructor,
// with FIFO fairness for both borrowers and, if Capacity is exhausted,
// waiters on Get.
//
// Invariants: numOwned = numInUse + numUnused; numOwned <= capacity; a
// Return on a resource this pool did not issue is an error; every Get is
// matched by exactly one later Return, delivered either explicitly, via
// Use, via ReturnAfter, or via DestroyAll.
type ResourcePool[R comparable] struct {
	mu       sync.Mutex
	capacity int
	create   func(context.Context) (R, error)
	destroy  func(R) (string, error)

	unused   *List[R]
	issued   map[R]bool
	waiters  *List[*Future[R]]
	numOwned int

	destroying     bool
	destroyResults []string
	destroyFuture  *Future[[]string]
}

// NewResourcePool returns a pool bounded at capacity, using create to
// mint new resources and destroy to tear them down. capacity must be >= 1.
func NewResourcePool[R comparable](capacity int, create func(context.Context) (R, error), destroy func(R) (string, error)) *ResourcePool[R] {
	if capacity < 1 {
		panic("container: ResourcePool capacity must be >= 1")
	}
	return &ResourcePool[R]{
		capacity: capacity,
		create:   create,
		destroy:  destroy,
		unused:   NewList[R](),
		issued:   make(map[R]bool),
		waiters:  NewList[*Future[R]](),
	}
}

// Get returns the FIFO-oldest unused resource, creating a new one if the
// pool is under capacity, or blocking FIFO over other waiters otherwise.
func (p *ResourcePool[R]) Get(ctx context.Context) (R, error) {
	const op = "container.ResourcePool.Get"
	var zero R

	p.mu.Lock()
	if p.destroying {
		p.mu.Unlock()
		return zero, errors.E(errors.Op(op), errors.Disconnected, "pool is being destroyed")
	}
	if r, ok := p.unused.PopFront(); ok {
		p.issued[r] = true
		p.mu.Unlock()
		return r, nil
	}
	if p.numOwned < p.capacity {
		p.numOwned++
		p.mu.Unlock()
		r, err := p.create(ctx)
		if err != nil {
			p.mu.Lock()
			p.numOwned--
			p.mu.Unlock()
			return zero, err
		}
		p.mu.Lock()
		p.issued[r] = true
		p.mu.Unlock()
		return r, nil
	}
	f := NewFuture[R]()
	p.waiters.PushBack(f)
	p.mu.Unlock()
	return f.Wait(ctx)
}

// Return pushes r back to the unused deque, or hands it directly to the
// oldest waiting Get, or — if DestroyAll is in progress — destroys it
// immediately. It is an error to Return a resource this pool did not
// issue.
func (p *ResourcePool[R]) Return(r R) error {
	const op = "container.ResourcePool.Return"
	p.mu.Lock()
	if !p.issued[r] {
		p.mu.Unlock()
		return errors.E(errors.Op(op), "resource was not issued by this pool")
	}
	delete(p.issued, r)

	if p.destroying {
		p.mu.Unlock()
		outcome, _ := p.destroy(r)
		p.mu.Lock()
		p.numOwned--
		p.destroyResults = append(p.destroyResults, outcome)
		done := p.numOwned == 0
		snapshot := append([]string(nil), p.destroyResults...)
		future := p.destroyFuture
		p.mu.Unlock()
		if done {
			future.Resolve(snapshot)
		}
		return nil
	}

	if w, ok := p.waiters.PopFront(); ok {
		p.issued[r] = true
		p.mu.Unlock()
		w.Resolve(r)
		return nil
	}
	p.unused.PushBack(r)
	p.mu.Unlock()
	return nil
}

// Use scopes a borrow: it acquires a resource, runs fn with it, and
// returns the resource on both the success and failure path (including
// if fn panics), propagating fn's error.
func (p *ResourcePool[R]) Use(ctx context.Context, fn func(R) error) error {
	r, err := p.Get(ctx)
	if err != nil {
		return err
	}
	defer p.Return(r)
	return fn(r)
}

// ReturnAfter returns r once src settles, forwarding src's outcome on the
// returned Future.
func ReturnAfter[R comparable, X any](p *ResourcePool[R], src *Future[X], r R) *Future[X] {
	out := NewFuture[X]()
	go func() {
		v, err := src.Wait(context.Background())
		p.Return(r)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(v)
	}()
	return out
}

// DestroyAll refuses further Gets, destroys every currently-unused
// resource immediately, and defers destruction of in-use resources until
// their Return. The returned Future settles with the ordered sequence of
// destroy outcomes only once every owned resource has been destroyed.
func (p *ResourcePool[R]) DestroyAll() *Future[[]string] {
	p.mu.Lock()
	if p.destroying {
		f := p.destroyFuture
		p.mu.Unlock()
		return f
	}
	p.destroying = true
	p.destroyFuture = NewFuture[[]string]()
	future := p.destroyFuture

	toDestroy := p.unused.Drain()
	cancelledWaiters := p.waiters.Drain()
	allDone := p.numOwned == 0
	p.mu.Unlock()

	for _, w := range cancelledWaiters {
		w.Reject(errors.E(errors.Op("container.ResourcePool.DestroyAll"), errors.Disconnected, "pool is being destroyed"))
	}

	if allDone {
		future.Resolve([]string{})
		return future
	}

	for _, r := range toDestroy {
		outcome, _ := p.destroy(r)
		p.mu.Lock()
		p.numOwned--
		p.destroyResults = append(p.destroyResults, outcome)
		done := p.numOwned == 0
		snapshot := append([]string(nil), p.destroyResults...)
		p.mu.Unlock()
		if done {
			future.Resolve(snapshot)
		}
	}
	return future
}

// NumOwned returns the current number of resources this pool has created
// and not yet destroyed.
func (p *ResourcePool[R]) NumOwned() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numOwned
}

// NumUnused returns the number of idle resources available for an
// immediate Get.
func (p *ResourcePool[R]) NumUnused() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unused.Len()
}
