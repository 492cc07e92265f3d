package nodes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/portflow/portflow/internal/core/flow"
)

// Factory builds a fresh node of one type with its ports declared and its
// run function attached.
type Factory func() *flow.Node

// Registry maps persisted type tags to node factories. Thread-safe.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry creates a registry with all builtin node types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeProcess, func() *flow.Node { return NewProcessNode().Def() })
	r.Register(TypeFileInput, func() *flow.Node { return NewFileInputNode().Def() })
	r.Register(TypeFileOutput, func() *flow.Node { return NewFileOutputNode().Def() })
	r.Register(TypeFileList, func() *flow.Node { return NewFileListNode().Def() })
	r.Register(TypeValue, func() *flow.Node { return NewValueInputNode().Def() })
	r.Register(TypeCLIParam, func() *flow.Node { return NewCLIParamNode().Def() })
	r.Register(TypeStdin, func() *flow.Node { return NewStdinNode().Def() })
	r.Register(TypeStdout, func() *flow.Node { return NewStdoutNode().Def() })
	return r
}

// Register adds a factory for a type tag, overwriting any previous one.
func (r *Registry) Register(typeTag string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeTag] = f
}

// New instantiates a node by type tag.
func (r *Registry) New(typeTag string) (*flow.Node, error) {
	r.mu.RLock()
	f, ok := r.factories[typeTag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, typeTag)
	}
	return f(), nil
}

// Has reports whether a type tag is registered.
func (r *Registry) Has(typeTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeTag]
	return ok
}

// Types returns all registered type tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
