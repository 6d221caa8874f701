package tensor

import "fmt"

// FromSlice creates a contiguous RawTensor on the given device holding a
// copy of data. The element type determines the dtype.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	var zero T
	dtype := inferDataType(zero)
	t, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}

	switch dtype {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range data {
			dst[i] = float32(v)
		}
	case Float64:
		dst := t.AsFloat64()
		for i, v := range data {
			dst[i] = float64(v)
		}
	case Uint8:
		dst := t.AsUint8()
		for i, v := range data {
			dst[i] = uint8(v)
		}
	}
	return t, nil
}
