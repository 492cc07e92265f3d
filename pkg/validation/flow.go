package validation

import (
	"fmt"

	coreflow "github.com/portflow/portflow/internal/core/flow"
)

// FlowValidationOptions controls optional validation checks.
type FlowValidationOptions struct {
	// CheckCycles enables detection of directed cycles in the connector
	// graph. A cyclic flow would deadlock every node on the cycle.
	CheckCycles bool

	// CheckConnections enables detection of slot-fed input ports without
	// a predecessor, which would block their node forever.
	CheckConnections bool
}

// ValidateFlow performs structural validation on a flow. It is intended
// to run before execution so malformed graphs fail fast instead of
// hanging a worker.
func ValidateFlow(f *coreflow.Flow, opts ...FlowValidationOptions) error {
	if f == nil {
		return ErrNilFlow
	}
	if len(f.Nodes()) == 0 {
		return ErrEmptyFlow
	}

	// Every connector endpoint must belong to a node registered in this
	// flow. In-method guards may have been bypassed for hand-built graphs.
	registered := make(map[*coreflow.Node]bool, len(f.Nodes()))
	for _, n := range f.Nodes() {
		registered[n] = true
	}
	for _, n := range f.Nodes() {
		for _, p := range n.Ports() {
			for _, succ := range p.Successors() {
				if !registered[succ.Node()] {
					return fmt.Errorf("%w: %s -> %s", ErrForeignEndpoint, p.FullName(), succ.FullName())
				}
			}
			for _, pre := range p.Predecessors() {
				if !registered[pre.Node()] {
					return fmt.Errorf("%w: %s -> %s", ErrForeignEndpoint, pre.FullName(), p.FullName())
				}
			}
		}
	}

	var cfg FlowValidationOptions
	if len(opts) > 0 {
		cfg = opts[0]
	}

	if cfg.CheckConnections {
		for _, n := range f.Nodes() {
			for _, p := range n.SlotInputPorts() {
				if len(p.Predecessors()) == 0 {
					return fmt.Errorf("%w: %s", ErrUnconnectedSlot, p.FullName())
				}
			}
		}
	}

	if cfg.CheckCycles {
		if hasCycle(f) {
			return ErrCyclicFlow
		}
	}

	return nil
}

// hasCycle detects any directed cycle over node-level successors using
// DFS with coloring.
func hasCycle(f *coreflow.Flow) bool {
	const (
		white = 0 // unvisited
		gray  = 1 // visiting
		black = 2 // visited
	)
	color := make(map[*coreflow.Node]int, len(f.Nodes()))
	var dfs func(*coreflow.Node) bool
	dfs = func(u *coreflow.Node) bool {
		color[u] = gray
		for _, v := range u.Successors() {
			if color[v] == gray {
				return true // back-edge
			}
			if color[v] == white {
				if dfs(v) {
					return true
				}
			}
		}
		color[u] = black
		return false
	}
	for _, n := range f.Nodes() {
		if color[n] == white {
			if dfs(n) {
				return true
			}
		}
	}
	return false
}
