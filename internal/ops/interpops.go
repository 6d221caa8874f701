package ops

import (
	"fmt"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/interp"
	"github.com/stride-ml/stride/internal/tensor"
)

func init() {
	interp.Register("ops.adaptive_avg_pool2d", opForward)
	interp.Register("ops.adaptive_avg_pool2d_backward", opBackward)
}

func tensorArg(op string, args []any, i int) (*tensor.RawTensor, error) {
	t, ok := args[i].(*tensor.RawTensor)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected a tensor at argument %d, got %T",
			errdefs.ErrInvalidArgument, op, i, args[i])
	}
	return t, nil
}

func opForward(args []any) ([]any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%w: ops.adaptive_avg_pool2d: expected 3 arguments, got %d",
			errdefs.ErrInvalidArgument, len(args))
	}
	input, err := tensorArg("ops.adaptive_avg_pool2d", args, 0)
	if err != nil {
		return nil, err
	}
	outH, okH := args[1].(int)
	outW, okW := args[2].(int)
	if !okH || !okW {
		return nil, fmt.Errorf("%w: ops.adaptive_avg_pool2d: expected integer output sizes, got %T and %T",
			errdefs.ErrInvalidArgument, args[1], args[2])
	}
	out, err := AdaptiveAvgPool2D(input, []int{outH, outW})
	if err != nil {
		return nil, err
	}
	return []any{out}, nil
}

func opBackward(args []any) ([]any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: ops.adaptive_avg_pool2d_backward: expected 2 arguments, got %d",
			errdefs.ErrInvalidArgument, len(args))
	}
	gradOutput, err := tensorArg("ops.adaptive_avg_pool2d_backward", args, 0)
	if err != nil {
		return nil, err
	}
	input, err := tensorArg("ops.adaptive_avg_pool2d_backward", args, 1)
	if err != nil {
		return nil, err
	}
	gradInput, err := AdaptiveAvgPool2DBackward(gradOutput, input)
	if err != nil {
		return nil, err
	}
	return []any{gradInput}, nil
}
