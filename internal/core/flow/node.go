package flow

import (
	"context"
	"fmt"
	"sync"
)

// State is the lifecycle state of a node within one execution.
type State int32

const (
	// StateCreated means the node has not been handed to a runner yet.
	StateCreated State = iota
	// StateWaiting means the node's worker is blocked on its readiness gate.
	StateWaiting
	// StateRunning means run() is executing.
	StateRunning
	// StateFinished means run() completed successfully.
	StateFinished
	// StateFailed means run() returned an error or panicked.
	StateFailed
	// StateSkipped means an upstream failure starved the node's inputs.
	StateSkipped
	// StateCanceled means the execution was canceled before the node ran.
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is an end state.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed || s == StateSkipped || s == StateCanceled
}

// RunFunc is the business logic of a node. It is invoked only after all
// slot-fed input ports are ready, so it must not block on engine
// primitives; its own I/O (subprocesses, files) is opaque to the engine.
type RunFunc func(ctx context.Context) error

// Node is an execution unit owning a fixed set of ports. The engine-side
// lifecycle (readiness waiting, publishing) lives here; node authors only
// declare ports at construction and attach a RunFunc.
type Node struct {
	id      string
	typeTag string
	label   string
	flow    *Flow
	ports   []*Port
	props   map[string]string
	run     RunFunc

	gate     chan struct{}
	gateOnce sync.Once
	starve   chan struct{}
	skipOnce sync.Once

	mu         sync.Mutex
	state      State
	readyPorts map[*Port]bool
}

// NewNode creates a node of the given type tag. The label, used as the
// base for auto-generated identifiers, defaults to the type tag.
func NewNode(typeTag string) *Node {
	return &Node{
		typeTag:    typeTag,
		label:      typeTag,
		props:      make(map[string]string),
		gate:       make(chan struct{}),
		starve:     make(chan struct{}),
		readyPorts: make(map[*Port]bool),
	}
}

// ID returns the node identifier, unique within its flow.
func (n *Node) ID() string { return n.id }

// SetID assigns the identifier. Must happen before the node runs.
func (n *Node) SetID(id string) { n.id = id }

// Type returns the type tag used by the node registry and persistence.
func (n *Node) Type() string { return n.typeTag }

// Label returns the human label used as the base for auto-generated IDs.
func (n *Node) Label() string { return n.label }

// SetLabel overrides the default label.
func (n *Node) SetLabel(label string) { n.label = label }

// Flow returns the owning flow, or nil if the node is unregistered.
func (n *Node) Flow() *Flow { return n.flow }

// Props holds editor/layout key-value properties carried through
// persistence untouched by the engine.
func (n *Node) Props() map[string]string { return n.props }

// OnRun attaches the node's business logic.
func (n *Node) OnRun(fn RunFunc) { n.run = fn }

// AddValuePort declares a scalar port. Ports are fixed after construction.
func (n *Node) AddValuePort(name string, role Role) *Port {
	return n.addPort(name, role, KindValue)
}

// AddStreamPort declares a byte-stream port.
func (n *Node) AddStreamPort(name string, role Role) *Port {
	return n.addPort(name, role, KindStream)
}

// AddListPort declares a list port.
func (n *Node) AddListPort(name string, role Role) *Port {
	return n.addPort(name, role, KindList)
}

func (n *Node) addPort(name string, role Role, kind Kind) *Port {
	p := newPort(n, name, role, kind)
	n.ports = append(n.ports, p)
	return p
}

// Ports returns the node's ports in declaration order.
func (n *Node) Ports() []*Port {
	out := make([]*Port, len(n.ports))
	copy(out, n.ports)
	return out
}

// FindPort looks a port up by name.
func (n *Node) FindPort(name string) (*Port, error) {
	for _, p := range n.ports {
		if p.name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on node %q", ErrPortNotFound, name, n.id)
}

// InputPorts returns the input-like ports in declaration order.
func (n *Node) InputPorts() []*Port {
	var out []*Port
	for _, p := range n.ports {
		if p.IsInput() {
			out = append(out, p)
		}
	}
	return out
}

// SlotInputPorts returns the input-like ports that are fed by connections
// rather than literals. These must all become ready before the node runs.
func (n *Node) SlotInputPorts() []*Port {
	var out []*Port
	for _, p := range n.ports {
		if p.IsInput() && p.Slot() {
			out = append(out, p)
		}
	}
	return out
}

// OutputPorts returns the output-like ports in declaration order.
func (n *Node) OutputPorts() []*Port {
	var out []*Port
	for _, p := range n.ports {
		if !p.IsInput() {
			out = append(out, p)
		}
	}
	return out
}

// IsStart reports whether the node has no slot-fed inputs and is runnable
// without waiting.
func (n *Node) IsStart() bool {
	return len(n.SlotInputPorts()) == 0
}

// Successors returns the downstream nodes, deduplicated, in port order.
func (n *Node) Successors() []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	for _, p := range n.ports {
		for _, s := range p.Successors() {
			if !seen[s.node] {
				seen[s.node] = true
				out = append(out, s.node)
			}
		}
	}
	return out
}

// Predecessors returns the upstream nodes, deduplicated, in port order.
func (n *Node) Predecessors() []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	for _, p := range n.ports {
		for _, pre := range p.Predecessors() {
			if !seen[pre.node] {
				seen[pre.node] = true
				out = append(out, pre.node)
			}
		}
	}
	return out
}

// State returns the current lifecycle state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// SetState transitions the lifecycle state. The runner owns transitions;
// the graph model does not police them.
func (n *Node) SetState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

// Ready is closed once all slot-fed input ports are ready. The runner's
// worker blocks on it together with cancellation.
func (n *Node) Ready() <-chan struct{} { return n.gate }

// Starved is closed when an upstream terminal state guarantees the node's
// inputs can never all become ready.
func (n *Node) Starved() <-chan struct{} { return n.starve }

// SignalReady forces the readiness gate open. The runner uses it to kick
// start nodes; all other signals come from readiness propagation.
func (n *Node) SignalReady() {
	n.gateOnce.Do(func() { close(n.gate) })
}

func (n *Node) signalStarved() {
	n.skipOnce.Do(func() { close(n.starve) })
}

// onPortReady receives exactly-once readiness notifications from ports.
// When every slot-fed input port has fired, the gate opens.
func (n *Node) onPortReady(p *Port) {
	n.mu.Lock()
	n.readyPorts[p] = true
	ready := len(n.readyPorts) >= len(n.SlotInputPorts())
	n.mu.Unlock()
	if ready {
		n.SignalReady()
	}
}

// onPortStarved receives starvation notifications from ports.
func (n *Node) onPortStarved(_ *Port) {
	n.signalStarved()
}

// InvokeRun executes the node's business logic. A node without a RunFunc
// is a pass-through.
func (n *Node) InvokeRun(ctx context.Context) error {
	if n.run == nil {
		return nil
	}
	return n.run(ctx)
}

// Publish delivers every output-like port to its successors and advances
// their readiness counts. Unclosed output streams are sealed first so
// consumers only ever observe completed streams.
func (n *Node) Publish() error {
	for _, out := range n.OutputPorts() {
		if out.kind == KindStream {
			if err := out.Stream().Close(); err != nil {
				return fmt.Errorf("close %s: %w", out.FullName(), err)
			}
		}
		for _, succ := range out.Successors() {
			if err := succ.onPredecessorReady(out); err != nil {
				return err
			}
		}
	}
	return nil
}

// PropagateSkip tells every successor port that this node reached a
// terminal state without publishing, so downstream readiness can resolve
// to starvation instead of deadlock.
func (n *Node) PropagateSkip() {
	for _, out := range n.OutputPorts() {
		for _, succ := range out.Successors() {
			succ.onPredecessorSkipped()
		}
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.typeTag, n.id)
}
