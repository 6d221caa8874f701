// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor data in the Stride framework.
//
// The package re-exports the core types used by the pooling operators:
//   - RawTensor: the low-level strided tensor representation
//   - Shape, DataType, Device: core type definitions
//   - MemoryFormat, Layout: physical-ordering descriptors
//
// Example:
//
//	x, err := tensor.NewRaw(tensor.Shape{1, 3, 8, 8}, tensor.Float32, tensor.CPU)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := x.AsFloat32()
package tensor

import (
	"github.com/stride-ml/stride/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for slice-convertible tensor element types.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Uint8   DataType = tensor.Uint8
	Quint8  DataType = tensor.Quint8
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// MemoryFormat describes the physical ordering of a dense tensor's elements.
type MemoryFormat = tensor.MemoryFormat

// Memory format constants.
const (
	Contiguous   MemoryFormat = tensor.Contiguous
	ChannelsLast MemoryFormat = tensor.ChannelsLast
)

// Layout distinguishes ordinary strided tensors from opaque packed ones.
type Layout = tensor.Layout

// Layout constants.
const (
	Strided Layout = tensor.Strided
	Packed  Layout = tensor.Packed
)

// RawTensor is defined in raw.go.

// Creation functions

// NewRaw creates a new contiguous raw tensor with the given shape, dtype,
// and device.
//
// Example:
//
//	x, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// NewRawWithFormat creates a new raw tensor laid out in the requested
// memory format.
//
// Example:
//
//	x, err := tensor.NewRawWithFormat(tensor.Shape{1, 3, 8, 8},
//	    tensor.Float32, tensor.CPU, tensor.ChannelsLast)
func NewRawWithFormat(shape Shape, dtype DataType, device Device, format MemoryFormat) (*RawTensor, error) {
	return tensor.NewRawWithFormat(shape, dtype, device, format)
}

// FromSlice creates a contiguous tensor from a Go slice.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}
