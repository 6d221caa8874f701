// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package future provides the public API for asynchronous results in the
// Stride framework.
//
// A Future resolves exactly once with either a value or an error.
// Callbacks registered with OnComplete run after resolution; Wait blocks
// until resolution or context cancellation.
//
// Example:
//
//	f := future.Go(func() (int, error) { return 42, nil })
//	v, err := f.Wait(context.Background())
package future

import (
	"github.com/stride-ml/stride/internal/future"
)

// Future is a single-assignment container for an asynchronous result.
type Future[T any] = future.Future[T]

// New creates an unresolved future. Resolve it with Complete or Fail.
func New[T any]() *Future[T] {
	return future.New[T]()
}

// Go runs fn on a new goroutine and returns a future that resolves with
// its result.
//
// Example:
//
//	f := future.Go(func() (*tensor.RawTensor, error) {
//	    return ops.AdaptiveAvgPool2D(x, []int{1, 1})
//	})
func Go[T any](fn func() (T, error)) *Future[T] {
	return future.Go(fn)
}

// Then chains a transformation onto a future, returning a new future
// that resolves with the transformed value. Errors pass through
// untransformed.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return future.Then(f, fn)
}
