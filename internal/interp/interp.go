// Package interp exposes a minimal named-operator registry. Higher
// orchestration layers resolve operators by name and call them with a
// flat argument list, so anything registered here is reachable from
// scripted pipelines without compile-time linkage.
package interp

import (
	"fmt"
	"sync"

	"github.com/stride-ml/stride/internal/errdefs"
)

// OpFunc is a registered operator: it receives the popped arguments in
// call order and returns the values to push back.
type OpFunc func(args []any) ([]any, error)

// Registry maps operator names to implementations.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]OpFunc
}

// NewRegistry returns an empty operator registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]OpFunc)}
}

// Register adds an operator. Panics if the name is already taken;
// registration happens at init time where a duplicate is a bug.
func (r *Registry) Register(name string, fn OpFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[name]; ok {
		panic(fmt.Sprintf("interp: operator %q already registered", name))
	}
	r.ops[name] = fn
}

// Execute resolves an operator by name and invokes it.
func (r *Registry) Execute(name string, args ...any) ([]any, error) {
	r.mu.RLock()
	fn, ok := r.ops[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: interp: unsupported operator %q", errdefs.ErrUnsupported, name)
	}
	return fn(args)
}

// Names returns the registered operator names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	return names
}

// Default is the process-wide registry populated by package init
// functions.
var Default = NewRegistry()

// Register adds an operator to the default registry.
func Register(name string, fn OpFunc) {
	Default.Register(name, fn)
}

// Execute invokes an operator from the default registry.
func Execute(name string, args ...any) ([]any, error) {
	return Default.Execute(name, args...)
}
