package tensor

// MemoryFormat describes the physical ordering of a dense tensor's
// elements. It is a property derived from strides, not an independent
// field: a tensor "is" channels-last when its strides say so.
type MemoryFormat int

// Supported memory formats.
const (
	// Contiguous is row-major order (for images: NCHW).
	Contiguous MemoryFormat = iota
	// ChannelsLast keeps the logical [N, C, H, W] shape but stores
	// elements with the channel axis fastest-varying (NHWC order).
	ChannelsLast
)

// String returns a human-readable format name.
func (f MemoryFormat) String() string {
	switch f {
	case Contiguous:
		return "contiguous"
	case ChannelsLast:
		return "channels_last"
	default:
		return "unknown"
	}
}

// Layout distinguishes ordinary strided tensors from opaque packed ones.
type Layout int

// Supported layouts.
const (
	// Strided tensors expose shape and strides; any kernel may read them.
	Strided Layout = iota
	// Packed tensors hold channel-blocked data that only the packed
	// kernels interpret. They expose a logical shape but no strides.
	Packed
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case Strided:
		return "strided"
	case Packed:
		return "packed"
	default:
		return "unknown"
	}
}
