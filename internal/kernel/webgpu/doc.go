// Package webgpu registers GPU pooling kernels backed by WebGPU
// compute shaders. The native wgpu library currently ships for
// Windows only, so on other platforms this package compiles to
// nothing and the WebGPU device stays unregistered.
package webgpu
