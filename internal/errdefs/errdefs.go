// Package errdefs defines the error kinds shared by the operator and
// profiler packages. Callers classify failures with errors.Is.
package errdefs

import "errors"

var (
	// ErrInvalidArgument marks malformed operator arguments: wrong rank,
	// wrong output-size arity, empty non-batch dimensions.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTypeMismatch marks dtype disagreement between paired tensors.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupported marks requests no registered implementation can
	// serve, such as a device without pooling kernels.
	ErrUnsupported = errors.New("unsupported")

	// ErrInternal marks usage contract violations by the caller, such as
	// exiting a profiling scope that was never entered.
	ErrInternal = errors.New("internal error")
)
