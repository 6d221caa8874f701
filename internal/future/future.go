// Package future provides a single-assignment asynchronous result
// cell. A Future completes exactly once, with either a value or an
// error, and completion callbacks run synchronously on the completing
// goroutine in registration order.
package future

import (
	"context"
	"sync"
)

// Future holds the eventual result of an asynchronous operation.
// Create one with New, or spawn work directly with Go.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	value     T
	err       error
	completed bool
	callbacks []func(T, error)
}

// New returns an incomplete Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a Future that completes
// with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		v, err := fn()
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(v)
	}()
	return f
}

// Complete resolves the future with a value. Panics if the future has
// already been completed or failed.
func (f *Future[T]) Complete(v T) {
	f.settle(v, nil)
}

// Fail resolves the future with an error. Panics if err is nil or the
// future has already been completed or failed.
func (f *Future[T]) Fail(err error) {
	if err == nil {
		panic("future: Fail called with nil error")
	}
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		panic("future: already completed")
	}
	f.value, f.err = v, err
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)
	for _, fn := range callbacks {
		fn(v, err)
	}
}

// Completed reports whether the future has resolved.
func (f *Future[T]) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Done returns a channel closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Value returns the resolved result. Panics if the future has not
// completed; use Wait or Done to block first.
func (f *Future[T]) Value() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.completed {
		panic("future: value read before completion")
	}
	return f.value, f.err
}

// Wait blocks until the future resolves or ctx is cancelled.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Value()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to run when the future resolves. If the
// future has already resolved, fn runs inline. Callbacks registered
// before completion run on the completing goroutine in registration
// order.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Then returns a Future resolving with fn applied to f's value. An
// error from f or from fn fails the returned future instead.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			out.Fail(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Fail(err)
			return
		}
		out.Complete(u)
	})
	return out
}
