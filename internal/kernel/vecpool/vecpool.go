// Package vecpool provides the lightweight global pooling path used on
// embedded targets. It handles exactly one case, a dense float32 NCHW
// CPU tensor reduced to 1x1, with a single pass and no dispatch-table
// indirection.
package vecpool

import (
	"fmt"
	"slices"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/tensor"
)

// supportedShape reports whether GlobalAvgPool can handle the tensor:
// a strided rank-4 float32 CPU tensor in standard contiguous layout.
func supportedShape(t *tensor.RawTensor) bool {
	if t.Layout() != tensor.Strided || t.Device() != tensor.CPU {
		return false
	}
	if t.DType() != tensor.Float32 || len(t.Shape()) != 4 {
		return false
	}
	return slices.Equal(t.Strides(), t.Shape().ComputeStrides())
}

// GlobalAvgPool reduces each [H, W] plane of a dense NCHW float32
// tensor to its mean, returning an [N, C, 1, 1] tensor.
func GlobalAvgPool(in *tensor.RawTensor) (*tensor.RawTensor, error) {
	if !supportedShape(in) {
		return nil, fmt.Errorf("%w: global_avg_pool: expected a dense NCHW float32 CPU tensor, but got %s %v",
			errdefs.ErrUnsupported, in.DType(), in.Shape())
	}

	shape := in.Shape()
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	out, err := tensor.NewRaw(tensor.Shape{n, c, 1, 1}, tensor.Float32, in.Device())
	if err != nil {
		return nil, fmt.Errorf("global_avg_pool: %w", err)
	}
	if out.NumElements() == 0 {
		return out, nil
	}
	plane := h * w
	if plane == 0 {
		return nil, fmt.Errorf("%w: global_avg_pool: input has empty spatial dimensions %v",
			errdefs.ErrInvalidArgument, shape)
	}

	src := in.AsFloat32()
	dst := out.AsFloat32()
	for p := 0; p < n*c; p++ {
		sum := float32(0)
		for _, v := range src[p*plane : (p+1)*plane] {
			sum += v
		}
		dst[p] = sum / float32(plane)
	}
	return out, nil
}
