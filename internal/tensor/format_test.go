package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{2, 3, 2, 2}, []int{12, 4, 2, 1}},
		{Shape{3, 3}, []int{3, 1}},
		{Shape{5}, []int{1}},
		{Shape{1, 3, 0, 4}, []int{0, 0, 4, 1}},
	}
	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ComputeStrides(%v) mismatch (-want +got):\n%s", tt.shape, diff)
		}
	}
}

func TestChannelsLastStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{2, 3, 4, 5}, []int{60, 1, 15, 3}},
		{Shape{1, 1, 2, 2}, []int{4, 1, 2, 1}},
		{Shape{2, 8, 1, 1}, []int{8, 1, 8, 8}},
	}
	for _, tt := range tests {
		got := tt.shape.ChannelsLastStrides()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ChannelsLastStrides(%v) mismatch (-want +got):\n%s", tt.shape, diff)
		}
	}
}

func TestSuggestMemoryFormat(t *testing.T) {
	contig, err := NewRaw(Shape{2, 3, 4, 5}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if got := contig.SuggestMemoryFormat(); got != Contiguous {
		t.Errorf("contiguous tensor suggests %v, want Contiguous", got)
	}

	nhwc, err := NewRawWithFormat(Shape{2, 3, 4, 5}, Float32, CPU, ChannelsLast)
	if err != nil {
		t.Fatalf("NewRawWithFormat failed: %v", err)
	}
	if got := nhwc.SuggestMemoryFormat(); got != ChannelsLast {
		t.Errorf("channels-last tensor suggests %v, want ChannelsLast", got)
	}
}

func TestSuggestMemoryFormatSingletonSpatial(t *testing.T) {
	// A {n, c, 1, 1} view with strides {c, 1, c, c} reads as
	// channels-last even though every element layout coincides with
	// the contiguous one.
	base, err := NewRaw(Shape{2, 6}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	view := base.AsStrided(Shape{2, 6, 1, 1}, []int{6, 1, 6, 6})
	if got := view.SuggestMemoryFormat(); got != ChannelsLast {
		t.Errorf("singleton-spatial view suggests %v, want ChannelsLast", got)
	}
}

func TestAsStridedSharesStorage(t *testing.T) {
	base, err := NewRaw(Shape{2, 6}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	base.AsFloat32()[7] = 42

	view := base.AsStrided(Shape{2, 6, 1, 1}, []int{6, 1, 6, 6})
	if !view.SharesStorageWith(base) {
		t.Error("AsStrided view does not share storage with its base")
	}
	if diff := cmp.Diff([]int{6, 1, 6, 6}, view.Strides()); diff != "" {
		t.Errorf("view strides mismatch (-want +got):\n%s", diff)
	}
	if got := view.At(1, 1, 0, 0); got != 42 {
		t.Errorf("view At(1,1,0,0) = %v, want 42", got)
	}
}

func TestAsStridedRejectsOutOfBounds(t *testing.T) {
	base, err := NewRaw(Shape{2, 2}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("AsStrided with out-of-bounds geometry did not panic")
		}
	}()
	base.AsStrided(Shape{2, 4}, []int{4, 1})
}

func TestResize(t *testing.T) {
	x, err := tensorWithData(t, []float32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// Shrinking reuses storage and rewrites geometry.
	if err := x.Resize(Shape{1, 1, 2, 1}, Contiguous); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if !x.Shape().Equal(Shape{1, 1, 2, 1}) {
		t.Errorf("Shape() = %v after resize, want [1 1 2 1]", x.Shape())
	}

	// Growing reallocates.
	if err := x.Resize(Shape{2, 3, 4, 4}, ChannelsLast); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if diff := cmp.Diff(Shape{2, 3, 4, 4}.ChannelsLastStrides(), x.Strides()); diff != "" {
		t.Errorf("strides after channels-last resize mismatch (-want +got):\n%s", diff)
	}
}

func TestResizeChannelsLastNeedsRank4(t *testing.T) {
	x, err := NewRaw(Shape{4}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if err := x.Resize(Shape{2, 2}, ChannelsLast); err == nil {
		t.Error("Resize to 2D channels_last succeeded, want error")
	}
}

func tensorWithData(t *testing.T, data []float32) (*RawTensor, error) {
	t.Helper()
	return FromSlice(data, Shape{len(data)}, CPU)
}
