// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the public operator API for the Stride framework.
//
// Operators validate their arguments, infer output shapes, and dispatch
// to the kernel registered for the input's device. Importing this package
// registers the pure-Go CPU kernels; on Windows the WebGPU kernels
// register as well.
//
// Example:
//
//	x, _ := tensor.NewRaw(tensor.Shape{1, 3, 8, 8}, tensor.Float32, tensor.CPU)
//	y, err := ops.AdaptiveAvgPool2D(x, []int{4, 4})
package ops

import (
	"github.com/stride-ml/stride/internal/future"
	"github.com/stride-ml/stride/internal/ops"
	"github.com/stride-ml/stride/tensor"

	// Kernel packages register themselves with the dispatch table.
	_ "github.com/stride-ml/stride/internal/kernel/cpu"
	_ "github.com/stride-ml/stride/internal/kernel/webgpu"
)

// AdaptiveAvgPool2D applies 2D adaptive average pooling to a 3D or 4D
// input, producing the requested spatial output size. Window boundaries
// follow floor(a*in/out) to ceil((a+1)*in/out), so every input element
// belongs to at least one window.
//
// The result preserves the input's memory format.
//
// Example:
//
//	y, err := ops.AdaptiveAvgPool2D(x, []int{4, 4})
func AdaptiveAvgPool2D(input *tensor.RawTensor, outputSize []int) (*tensor.RawTensor, error) {
	return ops.AdaptiveAvgPool2D(input, outputSize)
}

// AdaptiveAvgPool2DOut is the out-variant of AdaptiveAvgPool2D: it resizes
// out to the inferred result shape and writes the pooled values into it.
func AdaptiveAvgPool2DOut(out, input *tensor.RawTensor, outputSize []int) error {
	return ops.AdaptiveAvgPool2DOut(out, input, outputSize)
}

// GlobalAvgPool2D reduces each spatial plane to its mean, equivalent to
// AdaptiveAvgPool2D with output size [1, 1].
func GlobalAvgPool2D(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ops.GlobalAvgPool2D(input)
}

// AdaptiveAvgPool2DBackward computes the input gradient for
// AdaptiveAvgPool2D. Each output gradient is split evenly across the
// input positions its forward window covered; overlapping windows
// accumulate.
//
// The gradient matches the forward input's shape and memory format.
func AdaptiveAvgPool2DBackward(gradOutput, input *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ops.AdaptiveAvgPool2DBackward(gradOutput, input)
}

// AdaptiveAvgPool2DBackwardOut is the out-variant of
// AdaptiveAvgPool2DBackward: it resizes gradInput to the forward input's
// shape and accumulates the gradient into it.
func AdaptiveAvgPool2DBackwardOut(gradInput, gradOutput, input *tensor.RawTensor) error {
	return ops.AdaptiveAvgPool2DBackwardOut(gradInput, gradOutput, input)
}

// AdaptiveAvgPool2DAsync runs AdaptiveAvgPool2D on a worker goroutine
// under a profiling scope that ends when the returned future completes.
func AdaptiveAvgPool2DAsync(input *tensor.RawTensor, outputSize []int) *future.Future[*tensor.RawTensor] {
	return ops.AdaptiveAvgPool2DAsync(input, outputSize)
}

// AdaptiveAvgPool2DBackwardAsync runs AdaptiveAvgPool2DBackward on a
// worker goroutine under a profiling scope that ends when the returned
// future completes.
func AdaptiveAvgPool2DBackwardAsync(gradOutput, input *tensor.RawTensor) *future.Future[*tensor.RawTensor] {
	return ops.AdaptiveAvgPool2DBackwardAsync(gradOutput, input)
}
