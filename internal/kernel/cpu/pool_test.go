package cpu

import (
	"math"
	"testing"

	"github.com/stride-ml/stride/internal/tensor"
)

// seq fills a contiguous 3x3 plane with 1..9 row-major.
func seq3x3(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	data := make([]float32, 9)
	for i := range data {
		data[i] = float32(i + 1)
	}
	x, err := tensor.FromSlice(data, shape, tensor.CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return x
}

func TestAdaptiveAvgPool2D_Divisible(t *testing.T) {
	// 4x4 -> 2x2 with clean 2x2 windows.
	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i)
	}
	in, _ := tensor.FromSlice(data, tensor.Shape{1, 1, 4, 4}, tensor.CPU)
	out, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{2, 2}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	// Window means: (0+1+4+5)/4, (2+3+6+7)/4, (8+9+12+13)/4, (10+11+14+15)/4
	want := []float32{2.5, 4.5, 10.5, 12.5}
	got := out.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdaptiveAvgPool2D_OverlappingWindows(t *testing.T) {
	// 3x3 -> 2x2: adaptive windows overlap on the middle row/column.
	in := seq3x3(t, tensor.Shape{1, 1, 3, 3})
	out, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{2, 2}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	want := []float32{3, 4, 6, 7}
	got := out.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdaptiveAvgPool2D_SameSizeIsIdentity(t *testing.T) {
	in := seq3x3(t, tensor.Shape{1, 1, 3, 3})
	out, _ := tensor.NewRaw(tensor.Shape{1, 1, 3, 3}, tensor.Float32, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{3, 3}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	inData, outData := in.AsFloat32(), out.AsFloat32()
	for i := range inData {
		if outData[i] != inData[i] {
			t.Errorf("out[%d] = %v, want %v", i, outData[i], inData[i])
		}
	}
}

func TestAdaptiveAvgPool2D_Rank3(t *testing.T) {
	in := seq3x3(t, tensor.Shape{1, 3, 3})
	out, _ := tensor.NewRaw(tensor.Shape{1, 2, 2}, tensor.Float32, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{2, 2}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	want := []float32{3, 4, 6, 7}
	got := out.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdaptiveAvgPool2D_Float64(t *testing.T) {
	data := make([]float64, 9)
	for i := range data {
		data[i] = float64(i + 1)
	}
	in, _ := tensor.FromSlice(data, tensor.Shape{1, 1, 3, 3}, tensor.CPU)
	out, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float64, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{2, 2}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	want := []float64{3, 4, 6, 7}
	got := out.AsFloat64()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdaptiveAvgPool2D_Float16(t *testing.T) {
	in, _ := tensor.NewRaw(tensor.Shape{1, 1, 3, 3}, tensor.Float16, tensor.CPU)
	for h := 0; h < 3; h++ {
		for w := 0; w < 3; w++ {
			in.SetAt(float64(h*3+w+1), 0, 0, h, w)
		}
	}
	out, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float16, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{2, 2}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	// Small integers and their quarters are exact in binary16.
	want := []float64{3, 4, 6, 7}
	for i, exp := range want {
		if got := out.At(0, 0, i/2, i%2); got != exp {
			t.Errorf("out[%d] = %v, want %v", i, got, exp)
		}
	}
}

func TestAdaptiveAvgPool2D_Quint8(t *testing.T) {
	in, _ := tensor.NewRaw(tensor.Shape{1, 1, 3, 3}, tensor.Quint8, tensor.CPU)
	data := in.AsUint8()
	for i := range data[:9] {
		data[i] = uint8(i + 1)
	}
	out, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Quint8, tensor.CPU)

	if err := adaptiveAvgPool2D(out, in, [2]int{2, 2}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	want := []uint8{3, 4, 6, 7}
	got := out.AsUint8()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAdaptiveAvgPool2D_ChannelsLastInput(t *testing.T) {
	// The kernel walks strides, so NHWC input must give NCHW-identical
	// logical results.
	contig, _ := tensor.NewRaw(tensor.Shape{1, 2, 3, 3}, tensor.Float32, tensor.CPU)
	nhwc, _ := tensor.NewRawWithFormat(tensor.Shape{1, 2, 3, 3}, tensor.Float32, tensor.CPU, tensor.ChannelsLast)
	val := 1.0
	for c := 0; c < 2; c++ {
		for h := 0; h < 3; h++ {
			for w := 0; w < 3; w++ {
				contig.SetAt(val, 0, c, h, w)
				nhwc.SetAt(val, 0, c, h, w)
				val *= 1.25
			}
		}
	}

	outContig, _ := tensor.NewRaw(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU)
	outNHWC, _ := tensor.NewRawWithFormat(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU, tensor.ChannelsLast)

	if err := adaptiveAvgPool2D(outContig, contig, [2]int{2, 2}); err != nil {
		t.Fatalf("contiguous pool failed: %v", err)
	}
	if err := adaptiveAvgPool2D(outNHWC, nhwc, [2]int{2, 2}); err != nil {
		t.Fatalf("channels-last pool failed: %v", err)
	}

	for c := 0; c < 2; c++ {
		for h := 0; h < 2; h++ {
			for w := 0; w < 2; w++ {
				a, b := outContig.At(0, c, h, w), outNHWC.At(0, c, h, w)
				if math.Abs(a-b) > 1e-6 {
					t.Errorf("mismatch at (%d,%d,%d): contiguous %v vs channels-last %v", c, h, w, a, b)
				}
			}
		}
	}
}

func TestGlobalAvgPool(t *testing.T) {
	// Two planes with known means.
	data := []float32{
		1, 2, 3, 4, // plane 0: mean 2.5
		10, 20, 30, 40, // plane 1: mean 25
	}
	in, _ := tensor.FromSlice(data, tensor.Shape{1, 2, 2, 2}, tensor.CPU)

	out, err := globalAvgPool(in)
	if err != nil {
		t.Fatalf("globalAvgPool failed: %v", err)
	}

	if !out.Shape().Equal(tensor.Shape{1, 2, 1, 1}) {
		t.Fatalf("shape = %v, want [1 2 1 1]", out.Shape())
	}
	if out.At(0, 0, 0, 0) != 2.5 {
		t.Errorf("plane 0 mean = %v, want 2.5", out.At(0, 0, 0, 0))
	}
	if out.At(0, 1, 0, 0) != 25 {
		t.Errorf("plane 1 mean = %v, want 25", out.At(0, 1, 0, 0))
	}
}

func TestGlobalAvgPool_Rank3(t *testing.T) {
	in := seq3x3(t, tensor.Shape{1, 3, 3})

	out, err := globalAvgPool(in)
	if err != nil {
		t.Fatalf("globalAvgPool failed: %v", err)
	}

	if !out.Shape().Equal(tensor.Shape{1, 1, 1}) {
		t.Fatalf("shape = %v, want [1 1 1]", out.Shape())
	}
	if out.At(0, 0, 0) != 5 {
		t.Errorf("mean = %v, want 5", out.At(0, 0, 0))
	}
}

func TestGlobalAvgPool_MatchesForwardBits(t *testing.T) {
	// The 1x1 forward reduction and the keepdim mean accumulate in the
	// same order, so results are identical, not just close.
	data := make([]float32, 2*3*5*7)
	v := float32(0.1)
	for i := range data {
		data[i] = v
		v = v*1.13 + 0.31
	}
	in, _ := tensor.FromSlice(data, tensor.Shape{2, 3, 5, 7}, tensor.CPU)

	viaMean, err := globalAvgPool(in)
	if err != nil {
		t.Fatalf("globalAvgPool failed: %v", err)
	}

	viaPool, _ := tensor.NewRaw(tensor.Shape{2, 3, 1, 1}, tensor.Float32, tensor.CPU)
	if err := adaptiveAvgPool2D(viaPool, in, [2]int{1, 1}); err != nil {
		t.Fatalf("adaptiveAvgPool2D failed: %v", err)
	}

	a, b := viaMean.AsFloat32(), viaPool.AsFloat32()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("element %d: mean %v != pool %v", i, a[i], b[i])
		}
	}
}

func TestAdaptiveAvgPool2DBackward_Uniform(t *testing.T) {
	// 2x2 input pooled to 1x1: each input cell gets grad/4.
	gradInput, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)
	gradOutput, _ := tensor.FromSlice([]float32{4}, tensor.Shape{1, 1, 1, 1}, tensor.CPU)

	if err := adaptiveAvgPool2DBackward(gradInput, gradOutput); err != nil {
		t.Fatalf("backward failed: %v", err)
	}

	for i, v := range gradInput.AsFloat32() {
		if v != 1 {
			t.Errorf("gradInput[%d] = %v, want 1", i, v)
		}
	}
}

func TestAdaptiveAvgPool2DBackward_OverlappingWindows(t *testing.T) {
	// 3x3 <- 2x2 with every output grad 4: windows share the middle
	// row/column, so overlaps accumulate.
	gradInput, _ := tensor.NewRaw(tensor.Shape{1, 1, 3, 3}, tensor.Float32, tensor.CPU)
	gradOutput, _ := tensor.FromSlice([]float32{4, 4, 4, 4}, tensor.Shape{1, 1, 2, 2}, tensor.CPU)

	if err := adaptiveAvgPool2DBackward(gradInput, gradOutput); err != nil {
		t.Fatalf("backward failed: %v", err)
	}

	want := []float32{
		1, 2, 1,
		2, 4, 2,
		1, 2, 1,
	}
	got := gradInput.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gradInput[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdaptiveAvgPool2DBackward_AccumulatesOnTop(t *testing.T) {
	// The kernel adds into whatever is already there; zero-filling is
	// the caller's job.
	gradInput, _ := tensor.FromSlice([]float32{10, 10, 10, 10}, tensor.Shape{1, 1, 2, 2}, tensor.CPU)
	gradOutput, _ := tensor.FromSlice([]float32{4}, tensor.Shape{1, 1, 1, 1}, tensor.CPU)

	if err := adaptiveAvgPool2DBackward(gradInput, gradOutput); err != nil {
		t.Fatalf("backward failed: %v", err)
	}

	for i, v := range gradInput.AsFloat32() {
		if v != 11 {
			t.Errorf("gradInput[%d] = %v, want 11", i, v)
		}
	}
}

func TestAdaptiveAvgPool2DBackward_QuantizedUnsupported(t *testing.T) {
	gradInput, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Quint8, tensor.CPU)
	gradOutput, _ := tensor.NewRaw(tensor.Shape{1, 1, 1, 1}, tensor.Quint8, tensor.CPU)

	if err := adaptiveAvgPool2DBackward(gradInput, gradOutput); err == nil {
		t.Error("quantized backward should fail")
	}
}
