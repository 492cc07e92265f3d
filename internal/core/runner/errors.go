package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrFlowNotRunnable — upfront validation rejected the flow (cycle,
	// unconnected slot, foreign endpoint).
	ErrFlowNotRunnable = errors.New("flow is not runnable")

	// ErrAlreadyRunning — Start was called while a run is in progress.
	ErrAlreadyRunning = errors.New("runner is already running")
)

// NodeError attributes a runtime fault to the node whose run() raised it.
type NodeError struct {
	NodeID string
	Err    error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying fault.
func (e *NodeError) Unwrap() error {
	return e.Err
}
