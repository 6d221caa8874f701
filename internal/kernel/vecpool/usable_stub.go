//go:build !wasm

package vecpool

import "github.com/stride-ml/stride/internal/tensor"

// Usable reports whether the tensor qualifies for the embedded pooling
// path. Non-wasm builds always route through the dispatch table.
func Usable(*tensor.RawTensor) bool {
	return false
}
