package tensor

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/x448/float16"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted shared buffer. Views created by
// Clone and AsStrided share it; the last Release detaches the data.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Clone operations).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the low-level tensor representation: a reference-counted
// byte buffer plus shape, strides, dtype, device and layout. Strided
// tensors expose their geometry; packed tensors expose only the logical
// shape and leave the blocked storage to the packed kernels.
type RawTensor struct {
	buffer *tensorBuffer // Shared reference-counted buffer
	shape  Shape         // Logical tensor dimensions
	stride []int         // Memory strides in elements (nil for packed)
	dtype  DataType      // Runtime type information
	device Device        // Compute device
	layout Layout        // Strided or Packed
	offset int           // Byte offset for slicing/views
}

// NewRaw creates a new contiguous RawTensor with the given shape and type.
// Memory is allocated and zero-initialized. Zero-size dimensions are
// legal and produce an empty tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return NewRawWithFormat(shape, dtype, device, Contiguous)
}

// NewRawWithFormat creates a RawTensor whose strides follow the requested
// memory format. ChannelsLast is valid only for rank-4 shapes.
func NewRawWithFormat(shape Shape, dtype DataType, device Device, format MemoryFormat) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if format == ChannelsLast && len(shape) != 4 {
		return nil, fmt.Errorf("channels_last requires a 4D shape, got %dD", len(shape))
	}

	numElements := shape.NumElements()
	byteSize := numElements * dtype.Size()

	stride := shape.ComputeStrides()
	if format == ChannelsLast {
		stride = shape.ChannelsLastStrides()
	}

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: stride,
		dtype:  dtype,
		device: device,
		layout: Strided,
		offset: 0,
	}, nil
}

// NewPacked allocates a packed channel-blocked tensor with the given
// logical [N, C, H, W] shape. Storage holds ceil(C/channelBlock) blocks
// of channelBlock channels each; only the packed kernels interpret it.
func NewPacked(shape Shape, dtype DataType, device Device, channelBlock int) (*RawTensor, error) {
	if len(shape) != 4 {
		return nil, fmt.Errorf("packed tensors must be 4D, got %dD", len(shape))
	}
	if channelBlock <= 0 {
		return nil, fmt.Errorf("invalid channel block %d", channelBlock)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	blocks := (c + channelBlock - 1) / channelBlock
	byteSize := n * blocks * channelBlock * h * w * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		stride: nil,
		dtype:  dtype,
		device: device,
		layout: Packed,
		offset: 0,
	}, nil
}

// Shape returns the tensor's logical shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Dim returns the size of dimension i, supporting negative indexing.
func (r *RawTensor) Dim(i int) int {
	return r.shape.Dim(i)
}

// Strides returns the tensor's memory strides in elements.
// Panics for packed tensors, which have no stride geometry.
func (r *RawTensor) Strides() []int {
	if r.layout == Packed {
		panic("packed tensors have no strides")
	}
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// Layout returns Strided or Packed.
func (r *RawTensor) Layout() Layout {
	return r.layout
}

// NumElements returns the total number of logical elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the logical memory size in bytes. For packed tensors
// the storage may be larger; use len(Data()) for the physical size.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// SuggestMemoryFormat derives the preferred memory format from the
// stride pattern: ChannelsLast for rank-4 tensors laid out NHWC,
// Contiguous otherwise.
func (r *RawTensor) SuggestMemoryFormat() MemoryFormat {
	if r.layout != Strided || len(r.shape) != 4 {
		return Contiguous
	}
	if slices.Equal(r.stride, r.shape.ComputeStrides()) {
		return Contiguous
	}
	if slices.Equal(r.stride, r.shape.ChannelsLastStrides()) {
		return ChannelsLast
	}
	return Contiguous
}

// Data returns the raw byte slice from the view's offset to the end of
// storage. WARNING: direct access to underlying memory.
func (r *RawTensor) Data() []byte {
	return r.buffer.data[r.offset:]
}

// storageElems is the number of elements physically addressable from the
// view's offset. For packed tensors this exceeds NumElements when the
// channel count is padded to a block boundary.
func (r *RawTensor) storageElems() int {
	return (len(r.buffer.data) - r.offset) / r.dtype.Size()
}

// AsFloat32 interprets the storage as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.buffer.data[r.offset:]
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by storageElems()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.storageElems())
}

// AsFloat64 interprets the storage as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.buffer.data[r.offset:]
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by storageElems()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.storageElems())
}

// AsUint16 interprets the storage as raw binary16 bits.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsUint16() []uint16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	data := r.buffer.data[r.offset:]
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by storageElems()
	return unsafe.Slice((*uint16)(unsafe.Pointer(&data[0])), r.storageElems())
}

// AsUint8 interprets the storage as []uint8.
// Panics if the tensor's dtype is neither Uint8 nor Quint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 && r.dtype != Quint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.buffer.data[r.offset:] // Already []byte = []uint8
}

// Clone creates a shallow copy of the RawTensor (shares buffer with
// reference counting). Cheap: only the refcount and the header move.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
		layout: r.layout,
		offset: r.offset,
	}
}

// Release decrements the reference count and deallocates if it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// SharesStorageWith reports whether two tensors view the same buffer.
func (r *RawTensor) SharesStorageWith(other *RawTensor) bool {
	return r.buffer == other.buffer
}

// AsStrided returns a view over the same storage with explicit shape and
// strides. The view shares the buffer (refcount +1). Geometry that could
// address elements outside the storage panics: this is internal plumbing
// for layout-preserving reshapes, not a user-facing slicing API.
func (r *RawTensor) AsStrided(shape Shape, strides []int) *RawTensor {
	if r.layout == Packed {
		panic("as_strided: packed tensors have no strides")
	}
	if len(shape) != len(strides) {
		panic(fmt.Sprintf("as_strided: shape rank %d does not match strides rank %d", len(shape), len(strides)))
	}
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("as_strided: %v", err))
	}

	maxIdx := 0
	empty := false
	for i, dim := range shape {
		if strides[i] < 0 {
			panic(fmt.Sprintf("as_strided: negative stride %d at dimension %d", strides[i], i))
		}
		if dim == 0 {
			empty = true
		}
		maxIdx += (dim - 1) * strides[i]
	}
	if !empty && maxIdx >= r.storageElems() {
		panic(fmt.Sprintf("as_strided: view shape %v strides %v exceeds storage of %d elements",
			shape, strides, r.storageElems()))
	}

	view := r.Clone()
	view.shape = shape.Clone()
	view.stride = append([]int(nil), strides...)
	return view
}

// Resize reallocates the tensor to the given shape, rewriting strides per
// the memory format. Storage is reused when it is large enough; contents
// are unspecified afterwards. The view offset resets on reallocation.
func (r *RawTensor) Resize(shape Shape, format MemoryFormat) error {
	if r.layout == Packed {
		return fmt.Errorf("resize: packed tensors cannot be resized")
	}
	if err := shape.Validate(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if format == ChannelsLast && len(shape) != 4 {
		return fmt.Errorf("resize: channels_last requires a 4D shape, got %dD", len(shape))
	}

	needed := shape.NumElements() * r.dtype.Size()
	if needed > len(r.buffer.data)-r.offset {
		r.buffer.release()
		r.buffer = newTensorBuffer(needed)
		r.offset = 0
	}

	r.shape = shape.Clone()
	if format == ChannelsLast {
		r.stride = shape.ChannelsLastStrides()
	} else {
		r.stride = shape.ComputeStrides()
	}
	return nil
}

// Zero fills the viewed region with zeros.
func (r *RawTensor) Zero() {
	data := r.buffer.data[r.offset:]
	n := r.NumElements() * r.dtype.Size()
	if r.layout == Packed || n > len(data) {
		n = len(data)
	}
	clear(data[:n])
}

// flatIndex converts logical indices to an element index relative to
// the view's offset, matching the slices the As* accessors return.
func (r *RawTensor) flatIndex(indices []int) int {
	if r.layout == Packed {
		panic("packed tensors do not support element access")
	}
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices for %dD tensor, got %d", len(r.shape), len(r.shape), len(indices)))
	}
	flat := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d of size %d", idx, i, r.shape[i]))
		}
		flat += idx * r.stride[i]
	}
	return flat
}

// At returns the element at the given indices converted to float64.
// Stride-aware; intended for validation and tests, not kernel loops.
func (r *RawTensor) At(indices ...int) float64 {
	flat := r.flatIndex(indices)
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[flat])
	case Float64:
		return r.AsFloat64()[flat]
	case Float16:
		return float64(float16.Frombits(r.AsUint16()[flat]).Float32())
	case Uint8, Quint8:
		return float64(r.AsUint8()[flat])
	default:
		panic(fmt.Sprintf("at: unsupported dtype %s", r.dtype))
	}
}

// SetAt stores the value at the given indices, converting to the
// tensor's dtype.
func (r *RawTensor) SetAt(value float64, indices ...int) {
	flat := r.flatIndex(indices)
	switch r.dtype {
	case Float32:
		r.AsFloat32()[flat] = float32(value)
	case Float64:
		r.AsFloat64()[flat] = value
	case Float16:
		r.AsUint16()[flat] = float16.Fromfloat32(float32(value)).Bits()
	case Uint8, Quint8:
		r.AsUint8()[flat] = uint8(value)
	default:
		panic(fmt.Sprintf("setat: unsupported dtype %s", r.dtype))
	}
}
