//go:build wasm

package vecpool

import "github.com/stride-ml/stride/internal/tensor"

// Usable reports whether the tensor qualifies for the embedded pooling
// path (wasm implementation).
func Usable(t *tensor.RawTensor) bool {
	return supportedShape(t)
}
