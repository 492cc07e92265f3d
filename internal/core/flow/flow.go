package flow

import (
	"fmt"
)

// Flow is the graph: it owns nodes in insertion order, creates and removes
// connectors, and resolves nodes by identifier. Mutation is not safe for
// concurrent use; assemble the graph before handing it to a runner.
type Flow struct {
	nodes    []*Node
	modified bool
	filename string
}

// New creates an empty flow.
func New() *Flow {
	return &Flow{}
}

// AddNode registers a node. A blank identifier is auto-generated from the
// node's label; an explicit identifier must not collide with an existing
// node.
func (f *Flow) AddNode(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n.ID() == "" {
		n.SetID(f.RandomID(n))
	} else if existing, _ := f.FindNode(n.ID()); existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID())
	}
	n.flow = f
	f.nodes = append(f.nodes, n)
	f.modified = true
	return nil
}

// RandomID generates the first identifier of the form label, label-2,
// label-3, ... not already used by a node in the flow.
func (f *Flow) RandomID(n *Node) string {
	id := n.Label()
	for i := 2; f.hasNodeID(id); i++ {
		id = fmt.Sprintf("%s-%d", n.Label(), i)
	}
	return id
}

func (f *Flow) hasNodeID(id string) bool {
	for _, n := range f.nodes {
		if n.ID() == id {
			return true
		}
	}
	return false
}

// RemoveNode unregisters a node. Existing connectors are NOT severed;
// callers must RemoveConnector first. Kept strict deliberately so a
// dangling connector is an explicit caller bug, not a silent cleanup.
func (f *Flow) RemoveNode(n *Node) error {
	for i, cur := range f.nodes {
		if cur == n {
			f.nodes = append(f.nodes[:i], f.nodes[i+1:]...)
			n.flow = nil
			f.modified = true
			return nil
		}
	}
	id := ""
	if n != nil {
		id = n.ID()
	}
	return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
}

// FindNode resolves a node by identifier.
func (f *Flow) FindNode(id string) (*Node, error) {
	for _, n := range f.nodes {
		if n.ID() == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
}

// Nodes returns the registered nodes in insertion order.
func (f *Flow) Nodes() []*Node {
	out := make([]*Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// AddConnector wires an output-like port to an input-like port. Both
// endpoints must belong to nodes registered in this flow.
func (f *Flow) AddConnector(source, target *Port) error {
	if err := f.checkEndpoint(source); err != nil {
		return err
	}
	if err := f.checkEndpoint(target); err != nil {
		return err
	}
	if err := source.Connect(target); err != nil {
		return err
	}
	f.modified = true
	return nil
}

// RemoveConnector severs the connector between two ports.
func (f *Flow) RemoveConnector(source, target *Port) error {
	if err := source.Disconnect(target); err != nil {
		return err
	}
	f.modified = true
	return nil
}

func (f *Flow) checkEndpoint(p *Port) error {
	if p == nil || p.Node() == nil || p.Node().Flow() != f {
		return fmt.Errorf("%w: port %s does not belong to this flow", ErrNodeNotFound, p.FullName())
	}
	return nil
}

// StartNodes returns the nodes with no slot-fed input ports, the initial
// runnable set.
func (f *Flow) StartNodes() []*Node {
	var out []*Node
	for _, n := range f.nodes {
		if n.IsStart() {
			out = append(out, n)
		}
	}
	return out
}

// Modified reports whether the flow changed since the last save/load.
func (f *Flow) Modified() bool { return f.modified }

// SetModified overrides the modification flag; persistence clears it.
func (f *Flow) SetModified(m bool) { f.modified = m }

// Filename returns the optional backing file.
func (f *Flow) Filename() string { return f.filename }

// SetFilename records the backing file.
func (f *Flow) SetFilename(name string) { f.filename = name }
