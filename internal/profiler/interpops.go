package profiler

import (
	"fmt"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/future"
	"github.com/stride-ml/stride/internal/interp"
)

// Interpreter-facing operators. The orchestration layer passes boxed
// stack values, so these wrap the typed API in ordinary functions over
// any. Futures cross this boundary as Future[any].
func init() {
	interp.Register("profiler.enter", opEnter)
	interp.Register("profiler.exit", opExit)
	interp.Register("profiler.exit_on_complete", opExitOnComplete)
}

func opEnter(args []any) ([]any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: profiler.enter: expected 1 argument, got %d",
			errdefs.ErrInvalidArgument, len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: profiler.enter: expected a scope name string, got %T",
			errdefs.ErrInvalidArgument, args[0])
	}
	return []any{Enter(name)}, nil
}

func opExit(args []any) ([]any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: profiler.exit: expected 1 argument, got %d",
			errdefs.ErrInvalidArgument, len(args))
	}
	s, ok := args[0].(*Scope)
	if !ok {
		return nil, fmt.Errorf("%w: profiler.exit: expected a scope handle, got %T",
			errdefs.ErrInvalidArgument, args[0])
	}
	if err := s.Exit(); err != nil {
		return nil, err
	}
	return nil, nil
}

func opExitOnComplete(args []any) ([]any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: profiler.exit_on_complete: expected 2 arguments, got %d",
			errdefs.ErrInvalidArgument, len(args))
	}
	s, ok := args[0].(*Scope)
	if !ok {
		return nil, fmt.Errorf("%w: profiler.exit_on_complete: expected a scope handle, got %T",
			errdefs.ErrInvalidArgument, args[0])
	}
	f, ok := args[1].(*future.Future[any])
	if !ok {
		return nil, fmt.Errorf("%w: profiler.exit_on_complete: expected a future, got %T",
			errdefs.ErrInvalidArgument, args[1])
	}
	return []any{ExitOnComplete(s, f)}, nil
}
