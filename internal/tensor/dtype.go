// Package tensor provides the core tensor types for the Stride framework.
package tensor

// DType is a constraint for slice-convertible tensor element types.
// Float16 and Quint8 tensors have no native Go element type; construct
// them with NewRaw and fill through SetAt or the raw accessors.
type DType interface {
	~float32 | ~float64 | ~uint8
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16 // IEEE-754 binary16, stored as raw bits
	Uint8
	Quint8 // quantized 8-bit, excluded from the pooling fast path
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	case Float16:
		return 2
	case Uint8, Quint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Uint8:
		return "uint8"
	case Quint8:
		return "quint8"
	default:
		return "unknown"
	}
}

// IsQuantized reports whether the data type carries quantized values.
func (dt DataType) IsQuantized() bool {
	return dt == Quint8
}

// IsFloat reports whether the data type is a floating-point type.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float32, Float64, Float16:
		return true
	default:
		return false
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case uint8:
		return Uint8
	default:
		panic("unsupported type")
	}
}
