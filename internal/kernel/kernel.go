// Package kernel holds the process-wide dispatch table mapping compute
// devices to their pooling kernel implementations. Backend packages
// register themselves at init time; the operator facade resolves the
// entry for a tensor's device at call time.
package kernel

import (
	"fmt"
	"sync"

	"github.com/stride-ml/stride/internal/errdefs"
	"github.com/stride-ml/stride/internal/tensor"
)

// Kernels bundles the pooling entry points one device provides. Each
// kernel mutates its first tensor argument in place; geometry has been
// validated and allocated by the facade before dispatch.
type Kernels struct {
	// AdaptiveAvgPool2D writes the pooled reduction of in into out.
	AdaptiveAvgPool2D func(out, in *tensor.RawTensor, outputSize [2]int) error

	// AdaptiveAvgPool2DBackward accumulates gradient contributions into
	// the pre-zeroed gradInput.
	AdaptiveAvgPool2DBackward func(gradInput, gradOutput *tensor.RawTensor) error

	// GlobalAvgPool computes the mean over the two trailing spatial
	// dimensions with those dimensions kept at size 1.
	GlobalAvgPool func(in *tensor.RawTensor) (*tensor.RawTensor, error)
}

var (
	mu    sync.RWMutex
	table = make(map[tensor.Device]Kernels)
)

// Register installs the kernels for a device. Called from backend
// package init functions; registering a device twice is a wiring bug.
func Register(device tensor.Device, k Kernels) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := table[device]; ok {
		panic("kernel: kernels already registered for " + device.String())
	}
	table[device] = k
}

// Lookup returns the kernels registered for a device.
func Lookup(device tensor.Device) (Kernels, error) {
	mu.RLock()
	defer mu.RUnlock()
	k, ok := table[device]
	if !ok {
		return Kernels{}, fmt.Errorf("%w: no pooling kernels registered for device %s",
			errdefs.ErrUnsupported, device)
	}
	return k, nil
}

// Swap replaces the kernels for a device and returns the previous entry.
// Tests use it to install spies; restore the old entry when done.
func Swap(device tensor.Device, k Kernels) Kernels {
	mu.Lock()
	defer mu.Unlock()
	old := table[device]
	table[device] = k
	return old
}
