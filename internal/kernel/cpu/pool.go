package cpu

import (
	"fmt"

	"github.com/x448/float16"
	"gonum.org/v1/gonum/floats"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/parallel"
	"github.com/stride-ml/stride/internal/tensor"
)

// adaptiveAvgPool2D writes the adaptive mean reduction of in into out.
// The facade validates ranks, sizes and dtypes and resizes out before
// dispatch; a geometry mismatch reaching this point is a dispatch bug.
func adaptiveAvgPool2D(out, in *tensor.RawTensor, outputSize [2]int) error {
	if len(out.Shape()) != len(in.Shape()) {
		panic(fmt.Sprintf("adaptive_avg_pool2d: rank mismatch between output %v and input %v",
			out.Shape(), in.Shape()))
	}
	if out.Dim(-2) != outputSize[0] || out.Dim(-1) != outputSize[1] {
		panic(fmt.Sprintf("adaptive_avg_pool2d: output %v does not match requested size %v",
			out.Shape(), outputSize))
	}

	g := makeGeom(out, in)
	cfg := parallel.DefaultConfig()

	switch in.DType() {
	case tensor.Float32:
		poolForwardF32(out.AsFloat32(), in.AsFloat32(), g, cfg)
	case tensor.Float64:
		poolForwardF64(out.AsFloat64(), in.AsFloat64(), g, cfg)
	case tensor.Float16:
		poolForwardF16(out.AsUint16(), in.AsUint16(), g, cfg)
	case tensor.Quint8:
		poolForwardQ8(out.AsUint8(), in.AsUint8(), g, cfg)
	default:
		return fmt.Errorf("%w: adaptive_avg_pool2d: unsupported dtype %s",
			errdefs.ErrUnsupported, in.DType())
	}
	return nil
}

func poolForwardF32(dst, src []float32, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		inBase := n*g.inN + c*g.inC
		outBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				sum := float32(0)
				for h := h0; h < h1; h++ {
					row := inBase + h*g.inH
					for w := w0; w < w1; w++ {
						sum += src[row+w*g.inW]
					}
				}

				count := float32((h1 - h0) * (w1 - w0))
				dst[outBase+oh*g.outH+ow*g.outW] = sum / count
			}
		}
	}, cfg)
}

func poolForwardF64(dst, src []float64, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		inBase := n*g.inN + c*g.inC
		outBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				sum := 0.0
				for h := h0; h < h1; h++ {
					row := inBase + h*g.inH
					if g.inW == 1 {
						sum += floats.Sum(src[row+w0 : row+w1])
					} else {
						for w := w0; w < w1; w++ {
							sum += src[row+w*g.inW]
						}
					}
				}

				count := float64((h1 - h0) * (w1 - w0))
				dst[outBase+oh*g.outH+ow*g.outW] = sum / count
			}
		}
	}, cfg)
}

func poolForwardF16(dst, src []uint16, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		inBase := n*g.inN + c*g.inC
		outBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				// Accumulate in float32: summing raw binary16 loses too
				// many bits for even modest windows.
				sum := float32(0)
				for h := h0; h < h1; h++ {
					row := inBase + h*g.inH
					for w := w0; w < w1; w++ {
						sum += float16.Frombits(src[row+w*g.inW]).Float32()
					}
				}

				count := float32((h1 - h0) * (w1 - w0))
				dst[outBase+oh*g.outH+ow*g.outW] = float16.Fromfloat32(sum / count).Bits()
			}
		}
	}, cfg)
}

func poolForwardQ8(dst, src []uint8, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		inBase := n*g.inN + c*g.inC
		outBase := n*g.outN + c*g.outC

		for oh := 0; oh < g.oh; oh++ {
			h0, h1 := startIndex(oh, g.oh, g.h), endIndex(oh, g.oh, g.h)
			for ow := 0; ow < g.ow; ow++ {
				w0, w1 := startIndex(ow, g.ow, g.w), endIndex(ow, g.ow, g.w)

				sum := 0
				for h := h0; h < h1; h++ {
					row := inBase + h*g.inH
					for w := w0; w < w1; w++ {
						sum += int(src[row+w*g.inW])
					}
				}

				// Round half up; quantized scale and zero point carry over
				// unchanged for mean pooling.
				count := (h1 - h0) * (w1 - w0)
				dst[outBase+oh*g.outH+ow*g.outW] = uint8((sum + count/2) / count)
			}
		}
	}, cfg)
}
