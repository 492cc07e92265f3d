// Package portflow is the public facade: construct, load, save, and run
// flows without importing internal packages directly.
package portflow

import (
	"context"
	"fmt"
	"os"

	"github.com/portflow/portflow/internal/adapters/repository/flowrepo"
	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/core/runner"
	"github.com/portflow/portflow/internal/nodes"
	"github.com/portflow/portflow/pkg/serialization"
)

// Re-export core types for convenience.
type (
	Flow   = flow.Flow
	Node   = flow.Node
	Port   = flow.Port
	Report = runner.Report
)

// Runtime bundles a node registry with load/save/run operations. The zero
// configuration uses the builtin node types and an in-memory flow library.
type Runtime struct {
	registry *nodes.Registry
	store    flowrepo.Store
}

// NewRuntime constructs a runtime with the builtin node types.
func NewRuntime() *Runtime {
	return &Runtime{
		registry: nodes.DefaultRegistry(),
		store:    flowrepo.NewInMemoryStore(),
	}
}

// WithStore swaps the flow library, e.g. for the sqlite adapter.
func (rt *Runtime) WithStore(store flowrepo.Store) *Runtime {
	rt.store = store
	return rt
}

// Registry exposes the node registry so applications can register their own
// node types before loading flows that use them.
func (rt *Runtime) Registry() *nodes.Registry {
	return rt.registry
}

// NewFlow creates an empty flow.
func (rt *Runtime) NewFlow() *Flow {
	return flow.New()
}

// NewNode instantiates a registered node type.
func (rt *Runtime) NewNode(typeTag string) (*Node, error) {
	return rt.registry.New(typeTag)
}

// LoadFile reads a flow from its XML file form.
func (rt *Runtime) LoadFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow file: %w", err)
	}
	f, err := serialization.DecodeFlow(data, rt.registry)
	if err != nil {
		return nil, err
	}
	f.SetFilename(path)
	return f, nil
}

// SaveFile writes a flow to its XML file form and clears its modified flag.
func (rt *Runtime) SaveFile(f *Flow, path string) error {
	data, err := serialization.EncodeFlow(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write flow file: %w", err)
	}
	f.SetFilename(path)
	f.SetModified(false)
	return nil
}

// StoreFlow saves a flow into the runtime's flow library under a name.
func (rt *Runtime) StoreFlow(ctx context.Context, name string, f *Flow) error {
	if err := rt.store.Save(ctx, name, serialization.BuildDocument(f)); err != nil {
		return err
	}
	f.SetModified(false)
	return nil
}

// FetchFlow loads a named flow from the runtime's flow library.
func (rt *Runtime) FetchFlow(ctx context.Context, name string) (*Flow, error) {
	sf, err := rt.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return serialization.InstantiateDocument(sf.Document, rt.registry)
}

// Run validates and executes a flow to completion.
func (rt *Runtime) Run(ctx context.Context, f *Flow) (*Report, error) {
	return runner.NewRunner(f).Start(ctx)
}

// RunWithParams executes a flow with named parameters available to
// parameter-reading nodes.
func (rt *Runtime) RunWithParams(ctx context.Context, f *Flow, params map[string]string) (*Report, error) {
	return rt.Run(nodes.WithParams(ctx, params), f)
}
