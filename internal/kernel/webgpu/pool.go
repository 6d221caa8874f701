//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/kernel"
	"github.com/stride-ml/stride/internal/tensor"
)

func init() {
	kernel.Register(tensor.WebGPU, kernel.Kernels{
		AdaptiveAvgPool2D:         adaptiveAvgPool2D,
		AdaptiveAvgPool2DBackward: adaptiveAvgPool2DBackward,
		GlobalAvgPool:             globalAvgPool,
	})
}

// gpuContext owns the shared WebGPU instance, device and queue, plus a
// pipeline cache keyed by shader name.
type gpuContext struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu        sync.Mutex
	pipelines map[string]*wgpu.ComputePipeline
}

var (
	ctxOnce sync.Once
	ctx     *gpuContext
	ctxErr  error
)

// acquire initializes the shared GPU context on first use. Kernels are
// registered unconditionally; missing hardware surfaces here.
func acquire() (*gpuContext, error) {
	ctxOnce.Do(func() {
		ctx, ctxErr = newContext()
	})
	return ctx, ctxErr
}

func newContext() (c *gpuContext, err error) {
	// The wgpu loader panics when the native library is missing.
	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("%w: webgpu: native library not available: %v", errdefs.ErrUnsupported, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: webgpu: failed to request adapter: %v", errdefs.ErrUnsupported, adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: webgpu: failed to request device: %v", errdefs.ErrUnsupported, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: webgpu: failed to get queue", errdefs.ErrUnsupported)
	}

	return &gpuContext{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// pipeline returns a cached ComputePipeline or compiles one.
func (c *gpuContext) pipeline(name, code string) *wgpu.ComputePipeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[name]; ok {
		return p
	}
	shader := c.device.CreateShaderModuleWGSL(code)
	p := c.device.CreateComputePipelineSimple(nil, shader, "main")
	c.pipelines[name] = p
	return p
}

// createBuffer creates a GPU buffer and uploads initial data.
func (c *gpuContext) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer rounded up to the
// 16-byte alignment uniform bindings require.
func (c *gpuContext) createUniformBuffer(data []byte) (*wgpu.Buffer, uint64) {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15

	buffer := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer, alignedSize
}

// readBuffer copies a storage buffer back to CPU memory through a
// staging buffer, since storage buffers cannot be mapped directly.
func (c *gpuContext) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := c.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmdBuffer := encoder.Finish(nil)
	c.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(c.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	staging.Unmap()

	return result, nil
}

// poolParams packs the six u32 geometry fields of the Params uniform.
func poolParams(n, ch, h, w, oh, ow int) []byte {
	params := make([]byte, 32)
	for i, v := range []int{n, ch, h, w, oh, ow} {
		binary.LittleEndian.PutUint32(params[i*4:i*4+4], uint32(v))
	}
	return params
}

func dense(t *tensor.RawTensor) bool {
	if t.Layout() != tensor.Strided || t.DType() != tensor.Float32 {
		return false
	}
	return slices.Equal(t.Strides(), t.Shape().ComputeStrides())
}

// geometry splits a rank-3 or rank-4 shape into NCHW dims, with N=1
// for rank 3.
func geometry(s tensor.Shape) (n, c, h, w int) {
	if len(s) == 3 {
		return 1, s[0], s[1], s[2]
	}
	return s[0], s[1], s[2], s[3]
}

// runPool executes one of the pooling shaders: src is bound read-only,
// dst is bound read_write and copied back into dstData afterwards.
func runPool(name, code string, srcData, dstData []byte, params []byte, threads int) error {
	c, err := acquire()
	if err != nil {
		return err
	}

	pipeline := c.pipeline(name, code)

	bufferSrc := c.createBuffer(srcData, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferSrc.Release()

	bufferDst := c.createBuffer(dstData, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	defer bufferDst.Release()

	bufferParams, paramsSize := c.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := c.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferSrc, 0, uint64(len(srcData))),
		wgpu.BufferBindingEntry(1, bufferDst, 0, uint64(len(dstData))),
		wgpu.BufferBindingEntry(2, bufferParams, 0, paramsSize),
	})
	defer bindGroup.Release()

	encoder := c.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	workgroups := uint32((threads + workgroupSize - 1) / workgroupSize)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	c.queue.Submit(cmdBuffer)

	resultData, err := c.readBuffer(bufferDst, uint64(len(dstData)))
	if err != nil {
		return err
	}
	copy(dstData, resultData)
	return nil
}

func adaptiveAvgPool2D(out, in *tensor.RawTensor, outputSize [2]int) error {
	if !dense(in) || !dense(out) {
		return fmt.Errorf("%w: webgpu: adaptive_avg_pool2d supports dense float32 tensors only",
			errdefs.ErrUnsupported)
	}
	if out.NumElements() == 0 {
		return nil
	}

	n, ch, h, w := geometry(in.Shape())
	params := poolParams(n, ch, h, w, outputSize[0], outputSize[1])
	dstData := out.Data()[:out.ByteSize()]
	return runPool("adaptive_avg_pool2d", poolForwardShader, in.Data()[:in.ByteSize()], dstData, params, out.NumElements())
}

func adaptiveAvgPool2DBackward(gradInput, gradOutput *tensor.RawTensor) error {
	if !dense(gradInput) || !dense(gradOutput) {
		return fmt.Errorf("%w: webgpu: adaptive_avg_pool2d_backward supports dense float32 tensors only",
			errdefs.ErrUnsupported)
	}
	if gradInput.NumElements() == 0 {
		return nil
	}

	n, ch, h, w := geometry(gradInput.Shape())
	_, _, oh, ow := geometry(gradOutput.Shape())
	params := poolParams(n, ch, h, w, oh, ow)
	dstData := gradInput.Data()[:gradInput.ByteSize()]
	return runPool("adaptive_avg_pool2d_backward", poolBackwardShader, gradOutput.Data()[:gradOutput.ByteSize()], dstData, params, gradInput.NumElements())
}

func globalAvgPool(in *tensor.RawTensor) (*tensor.RawTensor, error) {
	shape := in.Shape()
	if len(shape) != 3 && len(shape) != 4 {
		return nil, fmt.Errorf("%w: global_avg_pool: expected 3D or 4D tensor, but got %v",
			errdefs.ErrInvalidArgument, shape)
	}

	outShape := tensor.Shape{shape[0], 1, 1}
	if len(shape) == 4 {
		outShape = tensor.Shape{shape[0], shape[1], 1, 1}
	}
	out, err := tensor.NewRaw(outShape, in.DType(), in.Device())
	if err != nil {
		return nil, fmt.Errorf("global_avg_pool: %w", err)
	}
	if out.NumElements() == 0 {
		return out, nil
	}
	if err := adaptiveAvgPool2D(out, in, [2]int{1, 1}); err != nil {
		return nil, err
	}
	return out, nil
}
