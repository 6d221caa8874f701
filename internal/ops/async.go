package ops

import (
	"github.com/stride-ml/stride/internal/future"
	"github.com/stride-ml/stride/internal/profiler"
	"github.com/stride-ml/stride/internal/tensor"
)

// AdaptiveAvgPool2DAsync runs the forward pool on a worker goroutine
// under a profiling scope. The scope ends when the computation
// resolves, and the returned future carries the pooled tensor only
// after the scope has ended.
func AdaptiveAvgPool2DAsync(input *tensor.RawTensor, outputSize []int) *future.Future[*tensor.RawTensor] {
	s := profiler.Enter("ops.adaptive_avg_pool2d")
	f := future.Go(func() (*tensor.RawTensor, error) {
		return AdaptiveAvgPool2D(input, outputSize)
	})
	return profiler.ExitOnComplete(s, f)
}

// AdaptiveAvgPool2DBackwardAsync is the asynchronous counterpart of
// AdaptiveAvgPool2DBackward, scoped the same way.
func AdaptiveAvgPool2DBackwardAsync(gradOutput, input *tensor.RawTensor) *future.Future[*tensor.RawTensor] {
	s := profiler.Enter("ops.adaptive_avg_pool2d_backward")
	f := future.Go(func() (*tensor.RawTensor, error) {
		return AdaptiveAvgPool2DBackward(gradOutput, input)
	})
	return profiler.ExitOnComplete(s, f)
}
