// Package cpu implements the CPU pooling kernels.
package cpu

import (
	"github.com/stride-ml/stride/internal/kernel"
	"github.com/stride-ml/stride/internal/tensor"
)

func init() {
	kernel.Register(tensor.CPU, kernel.Kernels{
		AdaptiveAvgPool2D:         adaptiveAvgPool2D,
		AdaptiveAvgPool2DBackward: adaptiveAvgPool2DBackward,
		GlobalAvgPool:             globalAvgPool,
	})
}

// geom captures the strided iteration space of a pooling call. The
// "input" side carries the full spatial extents, the "output" side the
// pooled extents. Rank-3 tensors run as a single batch with stride 0.
type geom struct {
	n, c, h, w int // batch, channels, input spatial extents
	oh, ow     int // output spatial extents

	inN, inC, inH, inW     int // input strides in elements
	outN, outC, outH, outW int // output strides in elements
}

// makeGeom derives the iteration space from an input-shaped and an
// output-shaped tensor of equal rank.
func makeGeom(out, in *tensor.RawTensor) geom {
	ishape, oshape := in.Shape(), out.Shape()
	ndim := len(ishape)

	g := geom{
		n:  1,
		c:  ishape.Dim(-3),
		h:  ishape.Dim(-2),
		w:  ishape.Dim(-1),
		oh: oshape.Dim(-2),
		ow: oshape.Dim(-1),
	}

	is, os := in.Strides(), out.Strides()
	g.inC, g.inH, g.inW = is[ndim-3], is[ndim-2], is[ndim-1]
	g.outC, g.outH, g.outW = os[ndim-3], os[ndim-2], os[ndim-1]
	if ndim == 4 {
		g.n = ishape[0]
		g.inN = is[0]
		g.outN = os[0]
	}
	return g
}

// startIndex and endIndex split an input extent of size in into out
// adaptive windows; window a covers [startIndex, endIndex).
func startIndex(a, out, in int) int {
	return a * in / out
}

func endIndex(a, out, in int) int {
	return ((a+1)*in + out - 1) / out
}
