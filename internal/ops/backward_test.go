package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/kernel"
	"github.com/stride-ml/stride/internal/kernel/packed"
	"github.com/stride-ml/stride/internal/tensor"
)

func TestBackwardOverlappingWindows(t *testing.T) {
	input := ramp(t, tensor.Shape{1, 1, 3, 3})
	gradOutput, err := tensor.FromSlice(
		[]float32{4, 4, 4, 4}, tensor.Shape{1, 1, 2, 2}, tensor.CPU)
	require.NoError(t, err)

	gradInput, err := AdaptiveAvgPool2DBackward(gradOutput, input)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, gradInput.Shape())
	assert.Equal(t, []float32{1, 2, 1, 2, 4, 2, 1, 2, 1}, gradInput.AsFloat32())
}

func TestForwardBackwardRoundTrip(t *testing.T) {
	input := ramp(t, tensor.Shape{1, 2, 4, 4})

	out, err := AdaptiveAvgPool2D(input, []int{2, 2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())

	ones := make([]float32, out.NumElements())
	for i := range ones {
		ones[i] = 1
	}
	gradOutput, err := tensor.FromSlice(ones, out.Shape(), tensor.CPU)
	require.NoError(t, err)

	gradInput, err := AdaptiveAvgPool2DBackward(gradOutput, input)
	require.NoError(t, err)

	assert.Equal(t, input.Shape(), gradInput.Shape())
	for _, g := range gradInput.AsFloat32() {
		assert.Equal(t, float32(0.25), g, "each 2x2 window spreads unit gradient evenly")
	}
}

func TestBackwardFollowsInputLayout(t *testing.T) {
	input, err := tensor.NewRawWithFormat(tensor.Shape{2, 3, 4, 4}, tensor.Float32, tensor.CPU, tensor.ChannelsLast)
	require.NoError(t, err)
	gradOutput, err := tensor.NewRaw(tensor.Shape{2, 3, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	gradInput, err := AdaptiveAvgPool2DBackward(gradOutput, input)
	require.NoError(t, err)

	assert.Equal(t, input.Shape(), gradInput.Shape())
	assert.Equal(t, tensor.ChannelsLast, gradInput.SuggestMemoryFormat())
}

func TestBackwardZeroFillsBeforeDispatch(t *testing.T) {
	prev := kernel.Swap(tensor.CPU, kernel.Kernels{
		AdaptiveAvgPool2DBackward: func(gradInput, gradOutput *tensor.RawTensor) error {
			return nil
		},
	})
	defer kernel.Swap(tensor.CPU, prev)

	input := ramp(t, tensor.Shape{1, 1, 3, 3})
	gradOutput, err := tensor.FromSlice(
		[]float32{4, 4, 4, 4}, tensor.Shape{1, 1, 2, 2}, tensor.CPU)
	require.NoError(t, err)

	gradInput, err := AdaptiveAvgPool2DBackward(gradOutput, input)
	require.NoError(t, err)
	for _, g := range gradInput.AsFloat32() {
		assert.Zero(t, g, "buffer must be zeroed before the kernel accumulates")
	}
}

func TestBackwardEmptyBatch(t *testing.T) {
	spy := installSpy(t)
	input, err := tensor.NewRaw(tensor.Shape{0, 3, 4, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	gradOutput, err := tensor.NewRaw(tensor.Shape{0, 3, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	gradInput, err := AdaptiveAvgPool2DBackward(gradOutput, input)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{0, 3, 4, 4}, gradInput.Shape())
	assert.Equal(t, 0, spy.backward, "empty gradient must not dispatch")
}

func TestBackwardEmptyNonBatchDim(t *testing.T) {
	input, err := tensor.NewRaw(tensor.Shape{1, 3, 4, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	gradOutput, err := tensor.NewRaw(tensor.Shape{1, 0, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	_, err = AdaptiveAvgPool2DBackward(gradOutput, input)
	assert.ErrorIs(t, err, errdefs.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "Expected grad_output to have non-zero size")
	assert.Contains(t, err.Error(), "dimension 1 being empty")
}

func TestBackwardRankValidation(t *testing.T) {
	input, err := tensor.NewRaw(tensor.Shape{1, 1, 3, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	gradOutput, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	_, err = AdaptiveAvgPool2DBackward(gradOutput, input)
	assert.ErrorIs(t, err, errdefs.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "Expected 3D or 4D tensor")
}

func TestBackwardGradOutputDtypeMismatch(t *testing.T) {
	input := ramp(t, tensor.Shape{1, 1, 3, 3})
	gradOutput, err := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)

	_, err = AdaptiveAvgPool2DBackward(gradOutput, input)
	assert.ErrorIs(t, err, errdefs.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "expected dtype float32 for `grad_output` but got dtype float64")
}

func TestBackwardGradInputDtypeMismatch(t *testing.T) {
	input := ramp(t, tensor.Shape{1, 1, 3, 3})
	gradOutput, err := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	gradInput, err := tensor.NewRaw(tensor.Shape{0}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)

	err = AdaptiveAvgPool2DBackwardOut(gradInput, gradOutput, input)
	assert.ErrorIs(t, err, errdefs.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "expected dtype float32 for `grad_input` but got dtype float64")
}

func TestBackwardPackedUnsupported(t *testing.T) {
	strided := ramp(t, tensor.Shape{1, 1, 3, 3})
	blocked, err := packed.Pack(strided)
	require.NoError(t, err)
	gradOutput, err := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	_, err = AdaptiveAvgPool2DBackward(gradOutput, blocked)
	assert.ErrorIs(t, err, errdefs.ErrUnsupported)
	assert.Contains(t, err.Error(), "packed tensors not supported")
}
