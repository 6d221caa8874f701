package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/parallel"
	"github.com/stride-ml/stride/internal/tensor"
)

// adaptiveAvgPool2DBackward distributes each gradOutput cell evenly over
// its forward pooling window, accumulating into gradInput. The facade
// zero-fills gradInput before dispatch; this kernel only adds.
func adaptiveAvgPool2DBackward(gradInput, gradOutput *tensor.RawTensor) error {
	if len(gradInput.Shape()) != len(gradOutput.Shape()) {
		panic(fmt.Sprintf("adaptive_avg_pool2d_backward: rank mismatch between grad_input %v and grad_output %v",
			gradInput.Shape(), gradOutput.Shape()))
	}

	g := makeGeom(gradOutput, gradInput)
	cfg := parallel.DefaultConfig()

	switch gradInput.DType() {
	case tensor.Float32:
		poolBackwardF32(gradInput.AsFloat32(), gradOutput.AsFloat32(), g, cfg)
	case tensor.Float64:
		poolBackwardF64(gradInput.AsFloat64(), gradOutput.AsFloat64(), g, cfg)
	case tensor.Float16:
		poolBackwardF16(gradInput.AsUint16(), gradOutput.AsUint16(), g, cfg)
	default:
		return fmt.Errorf("%w: adaptive_avg_pool2d_backward: unsupported dtype %s",
			errdefs.ErrUnsupported, gradInput.DType())
	}
	return nil
}

func poolBackwardF32(gin, gout []float32, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		ginBase := n*g.inN + c*g.inC
		goutBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				grad := gout[goutBase+oh*g.outH+ow*g.outW] / float32((h1-h0)*(w1-w0))
				for h := h0; h < h1; h++ {
					row := ginBase + h*g.inH
					for w := w0; w < w1; w++ {
						gin[row+w*g.inW] += grad
					}
				}
			}
		}
	}, cfg)
}

func poolBackwardF64(gin, gout []float64, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		ginBase := n*g.inN + c*g.inC
		goutBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				grad := gout[goutBase+oh*g.outH+ow*g.outW] / float64((h1-h0)*(w1-w0))
				for h := h0; h < h1; h++ {
					row := ginBase + h*g.inH
					for w := w0; w < w1; w++ {
						gin[row+w*g.inW] += grad
					}
				}
			}
		}
	}, cfg)
}

func poolBackwardF16(gin, gout []uint16, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		ginBase := n*g.inN + c*g.inC
		goutBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				grad := float16.Frombits(gout[goutBase+oh*g.outH+ow*g.outW]).Float32() /
					float32((h1-h0)*(w1-w0))
				for h := h0; h < h1; h++ {
					row := ginBase + h*g.inH
					for w := w0; w < w1; w++ {
						idx := row + w*g.inW
						v := float16.Frombits(gin[idx]).Float32() + grad
						gin[idx] = float16.Fromfloat32(v).Bits()
					}
				}
			}
		}
	}, cfg)
}
