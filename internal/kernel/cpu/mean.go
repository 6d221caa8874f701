package cpu

import (
	"fmt"

	"github.com/x448/float16"
	"gonum.org/v1/gonum/floats"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/parallel"
	"github.com/stride-ml/stride/internal/tensor"
)

// globalAvgPool computes the mean over the two trailing spatial
// dimensions, keeping them as size-1 dimensions. The result is a fresh
// contiguous tensor. Accumulation order matches the forward kernel's
// 1x1 case, so both paths produce identical bits.
func globalAvgPool(in *tensor.RawTensor) (*tensor.RawTensor, error) {
	shape := in.Shape()
	ndim := len(shape)
	if ndim != 3 && ndim != 4 {
		return nil, fmt.Errorf("%w: global_avg_pool: expected 3D or 4D tensor, but got %v",
			errdefs.ErrInvalidArgument, shape)
	}

	var outShape tensor.Shape
	if ndim == 3 {
		outShape = tensor.Shape{shape[0], 1, 1}
	} else {
		outShape = tensor.Shape{shape[0], shape[1], 1, 1}
	}

	out, err := tensor.NewRaw(outShape, in.DType(), in.Device())
	if err != nil {
		return nil, fmt.Errorf("global_avg_pool: %w", err)
	}
	if out.NumElements() == 0 {
		return out, nil
	}

	g := makeGeom(out, in)
	cfg := parallel.DefaultConfig()

	switch in.DType() {
	case tensor.Float32:
		meanPlanesF32(out.AsFloat32(), in.AsFloat32(), g, cfg)
	case tensor.Float64:
		meanPlanesF64(out.AsFloat64(), in.AsFloat64(), g, cfg)
	case tensor.Float16:
		meanPlanesF16(out.AsUint16(), in.AsUint16(), g, cfg)
	case tensor.Quint8:
		meanPlanesQ8(out.AsUint8(), in.AsUint8(), g, cfg)
	default:
		return nil, fmt.Errorf("%w: global_avg_pool: unsupported dtype %s",
			errdefs.ErrUnsupported, in.DType())
	}
	return out, nil
}

func meanPlanesF32(dst, src []float32, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		base := n*g.inN + c*g.inC

		sum := float32(0)
		for h := 0; h < g.h; h++ {
			row := base + h*g.inH
			for w := 0; w < g.w; w++ {
				sum += src[row+w*g.inW]
			}
		}
		dst[n*g.outN+c*g.outC] = sum / float32(g.h*g.w)
	}, cfg)
}

func meanPlanesF64(dst, src []float64, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		base := n*g.inN + c*g.inC

		sum := 0.0
		for h := 0; h < g.h; h++ {
			row := base + h*g.inH
			if g.inW == 1 {
				sum += floats.Sum(src[row : row+g.w])
			} else {
				for w := 0; w < g.w; w++ {
					sum += src[row+w*g.inW]
				}
			}
		}
		dst[n*g.outN+c*g.outC] = sum / float64(g.h*g.w)
	}, cfg)
}

func meanPlanesF16(dst, src []uint16, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		base := n*g.inN + c*g.inC

		sum := float32(0)
		for h := 0; h < g.h; h++ {
			row := base + h*g.inH
			for w := 0; w < g.w; w++ {
				sum += float16.Frombits(src[row+w*g.inW]).Float32()
			}
		}
		dst[n*g.outN+c*g.outC] = float16.Fromfloat32(sum / float32(g.h*g.w)).Bits()
	}, cfg)
}

func meanPlanesQ8(dst, src []uint8, g geom, cfg parallel.Config) {
	parallel.ForBatch(g.n, g.c, func(n, c int) {
		base := n*g.inN + c*g.inC

		sum := 0
		for h := 0; h < g.h; h++ {
			row := base + h*g.inH
			for w := 0; w < g.w; w++ {
				sum += int(src[row+w*g.inW])
			}
		}
		count := g.h * g.w
		dst[n*g.outN+c*g.outC] = uint8((sum + count/2) / count)
	}, cfg)
}
