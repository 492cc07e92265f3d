// Package flow provides the core dataflow domain entities: typed ports,
// nodes that own them, and the Flow graph that wires nodes together.
// PRINCIPLES:
// - KISS: plain structs, no hidden machinery
// - SRP: this file is only responsible for ports and connection rules
package flow

import (
	"fmt"
	"sync"

	"github.com/portflow/portflow/internal/infrastructure/metrics"
)

// Role is the direction of a port on its node.
type Role int8

const (
	// RoleParameter is an input-like port carrying a configuration value.
	RoleParameter Role = iota
	// RoleInput is an input-like port fed by predecessors.
	RoleInput
	// RoleOutput is an output-like port published after the node runs.
	RoleOutput
	// RoleResult is an output-like port carrying the node's outcome.
	RoleResult
)

// IsInput reports whether the role is input-like (Parameter or Input).
func (r Role) IsInput() bool {
	return r == RoleParameter || r == RoleInput
}

func (r Role) String() string {
	switch r {
	case RoleParameter:
		return "parameter"
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	case RoleResult:
		return "result"
	default:
		return "unknown"
	}
}

// Kind is the payload kind a port carries.
type Kind int8

const (
	// KindValue carries a single scalar value.
	KindValue Kind = iota
	// KindStream carries a finished byte sequence.
	KindStream
	// KindList carries an ordered list of values.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindStream:
		return "stream"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Port is a typed, named port on a node. A connector always runs from an
// output-like port to an input-like port of a different node. Input-like
// value ports that are not slots carry a literal instead of waiting on a
// predecessor.
type Port struct {
	node *Node
	name string
	role Role
	kind Kind

	mu           sync.Mutex
	slot         bool
	value        any
	list         []string
	stream       *Stream
	successors   []*Port
	predecessors []*Port

	// readiness bookkeeping, guarded by mu
	delivered int
	starved   int
	notified  bool
}

func newPort(n *Node, name string, role Role, kind Kind) *Port {
	return &Port{node: n, name: name, role: role, kind: kind, slot: true}
}

// Node returns the owning node. Ownership is set at construction and
// never changes.
func (p *Port) Node() *Node { return p.node }

// Name returns the port name, unique within its node.
func (p *Port) Name() string { return p.name }

// Role returns the port direction.
func (p *Port) Role() Role { return p.role }

// Kind returns the payload kind.
func (p *Port) Kind() Kind { return p.kind }

// IsInput reports whether the port is input-like.
func (p *Port) IsInput() bool { return p.role.IsInput() }

// Slot reports whether the port is fed by a connection rather than
// holding a literal default.
func (p *Port) Slot() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slot
}

// SetSlot marks the port as connection-fed (true) or literal-fed (false).
func (p *Port) SetSlot(slot bool) {
	p.mu.Lock()
	p.slot = slot
	p.mu.Unlock()
}

// WithLiteral sets a literal default and marks the port as not slot-fed.
// Returns the port for construction chaining.
func (p *Port) WithLiteral(v any) *Port {
	p.mu.Lock()
	p.slot = false
	p.value = v
	p.mu.Unlock()
	return p
}

// Value returns the current scalar payload.
func (p *Port) Value() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SetValue assigns the scalar payload.
func (p *Port) SetValue(v any) {
	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
}

// List returns the list payload.
func (p *Port) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list
}

// SetList assigns the list payload.
func (p *Port) SetList(items []string) {
	p.mu.Lock()
	p.list = items
	p.mu.Unlock()
}

// Stream returns the byte-stream payload, allocating it on first use for
// stream-kind ports. Returns nil for non-stream ports.
func (p *Port) Stream() *Stream {
	if p.kind != KindStream {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		p.stream = NewStream()
	}
	return p.stream
}

// Successors returns the connected downstream ports in connection order.
func (p *Port) Successors() []*Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Port, len(p.successors))
	copy(out, p.successors)
	return out
}

// Predecessors returns the connected upstream ports in connection order.
func (p *Port) Predecessors() []*Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Port, len(p.predecessors))
	copy(out, p.predecessors)
	return out
}

// CanConnect checks whether a connector from p to target would be valid:
// p must be output-like, target input-like, the ports must belong to
// different nodes and carry the same payload kind.
func (p *Port) CanConnect(target *Port) error {
	if target == nil || p == target {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConnection, p.FullName(), ErrSelfConnection)
	}
	if p.node == target.node {
		return fmt.Errorf("%w: %s -> %s: %w", ErrInvalidConnection, p.FullName(), target.FullName(), ErrSameNode)
	}
	if p.IsInput() || !target.IsInput() {
		return fmt.Errorf("%w: %s (%s) -> %s (%s): connector must run output to input",
			ErrInvalidConnection, p.FullName(), p.role, target.FullName(), target.role)
	}
	if p.kind != target.kind {
		return fmt.Errorf("%w: %s (%s) -> %s (%s): %w",
			ErrInvalidConnection, p.FullName(), p.kind, target.FullName(), target.kind, ErrKindMismatch)
	}
	return nil
}

// Connect registers target as a successor of p and p as a predecessor of
// target, and marks target as slot-fed.
func (p *Port) Connect(target *Port) error {
	if err := p.CanConnect(target); err != nil {
		return err
	}
	p.mu.Lock()
	p.successors = append(p.successors, target)
	p.mu.Unlock()

	target.mu.Lock()
	target.predecessors = append(target.predecessors, p)
	target.slot = true
	target.mu.Unlock()
	return nil
}

// Disconnect removes the connector from p to target. Both directions of
// the registration are removed symmetrically.
func (p *Port) Disconnect(target *Port) error {
	if target == nil || !p.connectedTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrNotConnected, p.FullName(), target.FullName())
	}
	p.mu.Lock()
	p.successors = removePort(p.successors, target)
	p.mu.Unlock()

	target.mu.Lock()
	target.predecessors = removePort(target.predecessors, p)
	target.mu.Unlock()
	return nil
}

func (p *Port) connectedTo(target *Port) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.successors {
		if s == target {
			return true
		}
	}
	return false
}

func removePort(ports []*Port, target *Port) []*Port {
	out := ports[:0]
	for _, p := range ports {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}

// deliver copies the predecessor's content into this port. Value and list
// ports copy the payload; stream ports adopt the predecessor's completed
// stream, which is immutable once published.
func (p *Port) deliver(from *Port) error {
	if !from.connectedTo(p) {
		return fmt.Errorf("%w: %s -> %s", ErrNotConnected, from.FullName(), p.FullName())
	}
	switch p.kind {
	case KindValue:
		p.SetValue(from.Value())
	case KindList:
		p.SetList(from.List())
	case KindStream:
		src := from.Stream()
		if !src.Closed() {
			return fmt.Errorf("deliver %s -> %s: %w", from.FullName(), p.FullName(), ErrStreamOpen)
		}
		p.mu.Lock()
		p.stream = src
		p.mu.Unlock()
	}
	metrics.IncDeliveries()
	return nil
}

// onPredecessorReady records a delivery from a finished predecessor and,
// once every predecessor has delivered, notifies the owning node exactly
// once that this port is ready. A delivery can also be the last event a
// partially-starved port is waiting for: when earlier skips already
// account for the remaining predecessors, the port resolves as starved
// here, so the outcome does not depend on whether skips or deliveries
// arrive first.
func (p *Port) onPredecessorReady(from *Port) error {
	if err := p.deliver(from); err != nil {
		return err
	}
	p.mu.Lock()
	p.delivered++
	fireReady := !p.notified && p.delivered >= len(p.predecessors)
	fireStarved := !p.notified && !fireReady && p.delivered+p.starved >= len(p.predecessors)
	if fireReady || fireStarved {
		p.notified = true
	}
	p.mu.Unlock()
	if fireReady {
		p.node.onPortReady(p)
	}
	if fireStarved {
		p.node.onPortStarved(p)
	}
	return nil
}

// onPredecessorSkipped records a predecessor that reached a terminal state
// without delivering. Once all predecessors are terminal and at least one
// never delivered, the port is starved and the owning node is told to skip.
func (p *Port) onPredecessorSkipped() {
	p.mu.Lock()
	p.starved++
	fire := !p.notified && p.delivered+p.starved >= len(p.predecessors)
	if fire {
		p.notified = true
	}
	p.mu.Unlock()
	if fire {
		p.node.onPortStarved(p)
	}
}

// FullName returns "nodeID.portName" for diagnostics.
func (p *Port) FullName() string {
	if p == nil {
		return "<nil>"
	}
	if p.node != nil {
		return p.node.ID() + "." + p.name
	}
	return p.name
}

func (p *Port) String() string {
	return fmt.Sprintf("%s(%s/%s)", p.FullName(), p.role, p.kind)
}
