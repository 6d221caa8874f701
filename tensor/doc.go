// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides tensor data structures for the Stride ML framework.
//
// # Overview
//
// RawTensor is the fundamental data structure in Stride. This package provides:
//   - Strided tensors with explicit shape, strides, and memory format
//   - Packed channel-blocked tensors for vectorized CPU kernels
//   - Device abstraction (CPU, WebGPU)
//   - Reference-counted storage with copy-on-write Clone()
//
// # Basic Usage
//
//	import "github.com/stride-ml/stride/tensor"
//
//	func main() {
//	    x, err := tensor.NewRaw(tensor.Shape{1, 3, 8, 8}, tensor.Float32, tensor.CPU)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    data := x.AsFloat32()
//	    for i := range data {
//	        data[i] = float32(i)
//	    }
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types:
//   - float32, float64 (floating-point)
//   - float16 (IEEE-754 binary16, stored as raw bits)
//   - uint8 (unsigned integers, useful for images)
//   - quint8 (quantized 8-bit)
//
// # Memory Formats
//
// Dense tensors carry a memory format derived from their strides:
//   - Contiguous: row-major order (NCHW for images)
//   - ChannelsLast: logical [N, C, H, W] shape stored in NHWC order
//
// Operators preserve the input's format, so a channels-last network
// stays channels-last end to end:
//
//	x, _ := tensor.NewRawWithFormat(tensor.Shape{1, 3, 8, 8},
//	    tensor.Float32, tensor.CPU, tensor.ChannelsLast)
//	y, _ := ops.AdaptiveAvgPool2D(x, []int{4, 4})
//	y.SuggestMemoryFormat()  // ChannelsLast
//
// # Packed Layout
//
// Packed tensors hold channel-blocked data that only the packed kernels
// interpret. They expose a logical shape but no strides; convert with
// packed.Pack and packed.Unpack.
//
// # Device Support
//
// Tensors can reside on different devices:
//   - CPU: pure Go kernels
//   - WebGPU: zero-CGO GPU acceleration (Windows)
package tensor
