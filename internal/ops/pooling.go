// Package ops implements the operator facades: argument validation,
// output shape inference and layout handling live here, while the
// numeric reductions are reached through the kernel dispatch table.
package ops

import (
	"fmt"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/kernel"
	"github.com/stride-ml/stride/internal/kernel/packed"
	"github.com/stride-ml/stride/internal/kernel/vecpool"
	"github.com/stride-ml/stride/internal/tensor"
)

func checkOutputSize(outputSize []int) error {
	if len(outputSize) != 2 {
		return fmt.Errorf("%w: adaptive_avg_pool2d: output_size must be 2", errdefs.ErrInvalidArgument)
	}
	if outputSize[0] < 0 || outputSize[1] < 0 {
		return fmt.Errorf("%w: adaptive_avg_pool2d: elements of output_size must be greater than or equal to 0",
			errdefs.ErrInvalidArgument)
	}
	return nil
}

func checkForwardInput(input *tensor.RawTensor) error {
	ndim := len(input.Shape())
	if ndim != 3 && ndim != 4 {
		return fmt.Errorf("%w: adaptive_avg_pool2d(): Expected 3D or 4D tensor, but got %v",
			errdefs.ErrInvalidArgument, input.Shape())
	}
	for i := -2; i <= -1; i++ {
		if input.Dim(i) == 0 {
			return fmt.Errorf("%w: adaptive_avg_pool2d(): Expected input to have non-zero size for non-batch dimensions, but input has sizes %v with dimension %d being empty",
				errdefs.ErrInvalidArgument, input.Shape(), i+ndim)
		}
	}
	return nil
}

// AdaptiveAvgPool2D pools the two innermost dimensions of a rank-3 or
// rank-4 tensor down to outputSize, choosing per window the averaging
// region start = a*in/out, end = ceil((a+1)*in/out).
//
// A 1x1 output on a non-quantized, non-WebGPU tensor short-circuits to
// a keepdim global mean, which is bit-identical to the general path.
// Channel-blocked inputs forward to the packed implementation.
func AdaptiveAvgPool2D(input *tensor.RawTensor, outputSize []int) (*tensor.RawTensor, error) {
	if err := checkOutputSize(outputSize); err != nil {
		return nil, err
	}
	osz := [2]int{outputSize[0], outputSize[1]}

	if input.Layout() == tensor.Packed {
		return packed.AdaptiveAvgPool2D(input, osz)
	}
	if err := checkForwardInput(input); err != nil {
		return nil, err
	}

	if osz[0] == 1 && osz[1] == 1 && !input.DType().IsQuantized() && input.Device() != tensor.WebGPU {
		if vecpool.Usable(input) {
			return vecpool.GlobalAvgPool(input)
		}
		k, err := kernel.Lookup(input.Device())
		if err != nil {
			return nil, err
		}
		out, err := k.GlobalAvgPool(input)
		if err != nil {
			return nil, err
		}
		if len(input.Shape()) == 4 && input.SuggestMemoryFormat() == tensor.ChannelsLast {
			// Re-stride over the same storage to keep the layout
			// without a copy.
			n, c := input.Dim(0), input.Dim(1)
			out = out.AsStrided(tensor.Shape{n, c, 1, 1}, []int{c, 1, c, c})
		}
		return out, nil
	}

	out, err := tensor.NewRaw(tensor.Shape{0}, input.DType(), input.Device())
	if err != nil {
		return nil, err
	}
	if err := adaptiveAvgPool2DInto(out, input, osz); err != nil {
		return nil, err
	}
	return out, nil
}

// AdaptiveAvgPool2DOut pools into a caller-supplied tensor, resizing
// it to the inferred output shape. The explicit output must match the
// input's dtype. This entry always takes the general kernel path.
func AdaptiveAvgPool2DOut(out, input *tensor.RawTensor, outputSize []int) error {
	if err := checkOutputSize(outputSize); err != nil {
		return err
	}
	if input.Layout() == tensor.Packed {
		return fmt.Errorf("%w: adaptive_avg_pool2d: explicit output not supported for packed tensors",
			errdefs.ErrUnsupported)
	}
	return adaptiveAvgPool2DInto(out, input, [2]int{outputSize[0], outputSize[1]})
}

// adaptiveAvgPool2DInto validates, infers the output shape, resizes
// out in the input's preferred layout and dispatches. A zero-element
// output returns before any kernel lookup.
func adaptiveAvgPool2DInto(out, input *tensor.RawTensor, outputSize [2]int) error {
	if err := checkForwardInput(input); err != nil {
		return err
	}
	if out.DType() != input.DType() {
		return fmt.Errorf("%w: expected dtype %s for `output` but got dtype %s",
			errdefs.ErrTypeMismatch, input.DType(), out.DType())
	}

	outH, outW := outputSize[0], outputSize[1]
	var outShape tensor.Shape
	format := tensor.Contiguous
	if len(input.Shape()) == 3 {
		outShape = tensor.Shape{input.Dim(-3), outH, outW}
	} else {
		outShape = tensor.Shape{input.Dim(-4), input.Dim(-3), outH, outW}
		format = input.SuggestMemoryFormat()
	}
	if err := out.Resize(outShape, format); err != nil {
		return err
	}
	if out.NumElements() == 0 {
		return nil
	}

	k, err := kernel.Lookup(input.Device())
	if err != nil {
		return err
	}
	return k.AdaptiveAvgPool2D(out, input, outputSize)
}

// GlobalAvgPool2D is the keepdim spatial mean: equivalent to
// AdaptiveAvgPool2D with a 1x1 output size.
func GlobalAvgPool2D(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	return AdaptiveAvgPool2D(input, []int{1, 1})
}
