package profiler

import (
	"fmt"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/future"
)

// ExitOnComplete defers a scope's exit until f resolves. It returns a
// new future carrying f's value or error unchanged, resolved only
// after the scope has reached Ended, so an awaiter never observes the
// result of a still-open scope.
//
// The continuation runs on whichever goroutine resolves f. For its
// duration the diagnostic context captured at the time of this call is
// installed, and the previous context is restored afterward, so end
// callbacks are attributed to the caller that opened the scope rather
// than to the worker that happened to finish the computation.
//
// The scope is retained until the continuation runs. If f never
// resolves, the returned future never resolves and the scope never
// exits; no timeout is imposed here.
func ExitOnComplete[T any](s *Scope, f *future.Future[T]) *future.Future[T] {
	if s == nil {
		panic("profiler: nil scope handle")
	}
	s.Retain()
	captured := Current()

	out := future.New[T]()
	f.OnComplete(func(v T, err error) {
		prev := Install(captured)
		defer Install(prev)

		if !s.Alive() {
			out.Fail(fmt.Errorf("%w: scope %q released before its continuation ran", errdefs.ErrInternal, s.Name()))
			return
		}
		exitErr := s.Exit()
		s.Release()

		// An out-of-order exit surfaces as ErrInternal in place of
		// the computation's result.
		if exitErr != nil {
			out.Fail(exitErr)
			return
		}
		if err != nil {
			out.Fail(err)
			return
		}
		out.Complete(v)
	})
	return out
}
