package ops

import (
	"fmt"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/kernel"
	"github.com/stride-ml/stride/internal/tensor"
)

// AdaptiveAvgPool2DBackward computes the input gradient for an
// adaptive average pool: each output gradient is spread uniformly over
// the window that produced it. The returned tensor has input's shape
// and preferred layout.
func AdaptiveAvgPool2DBackward(gradOutput, input *tensor.RawTensor) (*tensor.RawTensor, error) {
	if gradOutput.Layout() == tensor.Packed || input.Layout() == tensor.Packed {
		return nil, fmt.Errorf("%w: adaptive_avg_pool2d_backward: packed tensors not supported",
			errdefs.ErrUnsupported)
	}
	gradInput, err := tensor.NewRaw(tensor.Shape{0}, input.DType(), input.Device())
	if err != nil {
		return nil, err
	}
	if err := adaptiveAvgPool2DBackwardInto(gradInput, gradOutput, input); err != nil {
		return nil, err
	}
	return gradInput, nil
}

// AdaptiveAvgPool2DBackwardOut accumulates into a caller-supplied
// gradient tensor, which is resized to input's shape and zero-filled
// first. All three tensors must share a dtype.
func AdaptiveAvgPool2DBackwardOut(gradInput, gradOutput, input *tensor.RawTensor) error {
	if gradOutput.Layout() == tensor.Packed || input.Layout() == tensor.Packed {
		return fmt.Errorf("%w: adaptive_avg_pool2d_backward: packed tensors not supported",
			errdefs.ErrUnsupported)
	}
	return adaptiveAvgPool2DBackwardInto(gradInput, gradOutput, input)
}

func adaptiveAvgPool2DBackwardInto(gradInput, gradOutput, input *tensor.RawTensor) error {
	ndim := len(gradOutput.Shape())
	for i := 1; i < ndim; i++ {
		if gradOutput.Dim(i) == 0 {
			return fmt.Errorf("%w: adaptive_avg_pool2d_backward(): Expected grad_output to have non-zero size for non-batch dimensions, but grad_output has sizes %v with dimension %d being empty",
				errdefs.ErrInvalidArgument, gradOutput.Shape(), i)
		}
	}
	if ndim != 3 && ndim != 4 {
		return fmt.Errorf("%w: adaptive_avg_pool2d_backward(): Expected 3D or 4D tensor, but got %v",
			errdefs.ErrInvalidArgument, gradOutput.Shape())
	}
	if input.DType() != gradOutput.DType() {
		return fmt.Errorf("%w: expected dtype %s for `grad_output` but got dtype %s",
			errdefs.ErrTypeMismatch, input.DType(), gradOutput.DType())
	}
	if input.DType() != gradInput.DType() {
		return fmt.Errorf("%w: expected dtype %s for `grad_input` but got dtype %s",
			errdefs.ErrTypeMismatch, input.DType(), gradInput.DType())
	}

	// The gradient accumulates into a zeroed buffer shaped and laid
	// out like the forward input.
	if err := gradInput.Resize(input.Shape(), input.SuggestMemoryFormat()); err != nil {
		return err
	}
	gradInput.Zero()
	if gradInput.NumElements() == 0 {
		return nil
	}

	k, err := kernel.Lookup(input.Device())
	if err != nil {
		return err
	}
	return k.AdaptiveAvgPool2DBackward(gradInput, gradOutput)
}
