// Package packed implements adaptive pooling over channel-blocked
// tensors. The blocked layout stores [N, C, H, W] data physically as
// [N, ceil(C/ChannelBlock), H, W, ChannelBlock], so the innermost loop
// always runs over a full lane group regardless of the window shape.
package packed

import (
	"fmt"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/tensor"
)

// ChannelBlock is the number of channel lanes per block.
const ChannelBlock = 8

func startIndex(a, out, in int) int {
	return a * in / out
}

func endIndex(a, out, in int) int {
	return ((a+1)*in + out - 1) / out
}

// Pack converts a strided 4D float32 tensor into the channel-blocked
// layout. Lanes past the true channel count stay zero.
func Pack(in *tensor.RawTensor) (*tensor.RawTensor, error) {
	if in.Layout() != tensor.Strided || len(in.Shape()) != 4 {
		return nil, fmt.Errorf("%w: pack: expected a strided 4D tensor, but got %v",
			errdefs.ErrInvalidArgument, in.Shape())
	}
	if in.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: pack: unsupported dtype %s",
			errdefs.ErrUnsupported, in.DType())
	}

	shape := in.Shape()
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	out, err := tensor.NewPacked(shape, tensor.Float32, in.Device(), ChannelBlock)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	if out.NumElements() == 0 {
		return out, nil
	}

	blocks := (c + ChannelBlock - 1) / ChannelBlock
	src := in.AsFloat32()
	dst := out.AsFloat32()
	st := in.Strides()
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			cb, lane := ci/ChannelBlock, ci%ChannelBlock
			for hi := 0; hi < h; hi++ {
				row := ni*st[0] + ci*st[1] + hi*st[2]
				dstRow := (((ni*blocks+cb)*h+hi)*w)*ChannelBlock + lane
				for wi := 0; wi < w; wi++ {
					dst[dstRow+wi*ChannelBlock] = src[row+wi*st[3]]
				}
			}
		}
	}
	return out, nil
}

// Unpack converts a channel-blocked float32 tensor back into a
// contiguous strided tensor, dropping the padding lanes.
func Unpack(in *tensor.RawTensor) (*tensor.RawTensor, error) {
	if in.Layout() != tensor.Packed {
		return nil, fmt.Errorf("%w: unpack: expected a packed tensor, but got layout %s",
			errdefs.ErrInvalidArgument, in.Layout())
	}
	if in.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: unpack: unsupported dtype %s",
			errdefs.ErrUnsupported, in.DType())
	}

	shape := in.Shape()
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	out, err := tensor.NewRaw(shape, tensor.Float32, in.Device())
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}
	if out.NumElements() == 0 {
		return out, nil
	}

	blocks := (c + ChannelBlock - 1) / ChannelBlock
	src := in.AsFloat32()
	dst := out.AsFloat32()
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			cb, lane := ci/ChannelBlock, ci%ChannelBlock
			for hi := 0; hi < h; hi++ {
				srcRow := (((ni*blocks+cb)*h+hi)*w)*ChannelBlock + lane
				dstRow := ((ni*c+ci)*h + hi) * w
				for wi := 0; wi < w; wi++ {
					dst[dstRow+wi] = src[srcRow+wi*ChannelBlock]
				}
			}
		}
	}
	return out, nil
}

// AdaptiveAvgPool2D pools a channel-blocked tensor directly in blocked
// form and returns a channel-blocked result. Window scan order matches
// the strided CPU kernel, so per-lane results are bit-identical to
// pooling the unpacked tensor.
func AdaptiveAvgPool2D(in *tensor.RawTensor, outputSize [2]int) (*tensor.RawTensor, error) {
	if in.Layout() != tensor.Packed {
		return nil, fmt.Errorf("%w: adaptive_avg_pool2d: expected a packed tensor, but got layout %s",
			errdefs.ErrInvalidArgument, in.Layout())
	}
	if in.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: adaptive_avg_pool2d: unsupported packed dtype %s",
			errdefs.ErrUnsupported, in.DType())
	}

	shape := in.Shape()
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	oh, ow := outputSize[0], outputSize[1]
	out, err := tensor.NewPacked(tensor.Shape{n, c, oh, ow}, tensor.Float32, in.Device(), ChannelBlock)
	if err != nil {
		return nil, fmt.Errorf("adaptive_avg_pool2d: %w", err)
	}
	if out.NumElements() == 0 {
		return out, nil
	}

	blocks := (c + ChannelBlock - 1) / ChannelBlock
	src := in.AsFloat32()
	dst := out.AsFloat32()
	for ni := 0; ni < n; ni++ {
		for cb := 0; cb < blocks; cb++ {
			base := (ni*blocks + cb) * h * w * ChannelBlock
			outBase := (ni*blocks + cb) * oh * ow * ChannelBlock

			for i := 0; i < oh; i++ {
				h0, h1 := startIndex(i, oh, h), endIndex(i, oh, h)
				for j := 0; j < ow; j++ {
					w0, w1 := startIndex(j, ow, w), endIndex(j, ow, w)

					var sum [ChannelBlock]float32
					for hi := h0; hi < h1; hi++ {
						row := base + (hi*w+w0)*ChannelBlock
						for wi := w0; wi < w1; wi++ {
							px := src[row : row+ChannelBlock : row+ChannelBlock]
							for lane := range px {
								sum[lane] += px[lane]
							}
							row += ChannelBlock
						}
					}

					count := float32((h1 - h0) * (w1 - w0))
					o := outBase + (i*ow+j)*ChannelBlock
					for lane := 0; lane < ChannelBlock; lane++ {
						dst[o+lane] = sum[lane] / count
					}
				}
			}
		}
	}
	return out, nil
}
