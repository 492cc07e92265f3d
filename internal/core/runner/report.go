package runner

import (
	"errors"
	"time"

	"github.com/portflow/portflow/internal/core/flow"
)

// NodeResult records the outcome of one node within a run.
type NodeResult struct {
	NodeID     string
	Type       string
	State      flow.State
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the node's wall-clock execution time.
func (r *NodeResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Report aggregates the outcome of a whole run. The runner always drives
// every worker to completion and reports the full set of failed nodes
// rather than the first one.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []*NodeResult

	byID map[string]*NodeResult
}

func newReport(runID string, nodes []*flow.Node) *Report {
	rep := &Report{
		RunID:   runID,
		Results: make([]*NodeResult, 0, len(nodes)),
		byID:    make(map[string]*NodeResult, len(nodes)),
	}
	for _, n := range nodes {
		res := &NodeResult{NodeID: n.ID(), Type: n.Type(), State: flow.StateCreated}
		rep.Results = append(rep.Results, res)
		rep.byID[n.ID()] = res
	}
	return rep
}

// Result returns the record for one node, or nil.
func (r *Report) Result(nodeID string) *NodeResult {
	return r.byID[nodeID]
}

// Failed returns the identifiers of nodes whose run() faulted, in flow
// order.
func (r *Report) Failed() []string {
	return r.inState(flow.StateFailed)
}

// Skipped returns the identifiers of nodes starved by upstream failures.
func (r *Report) Skipped() []string {
	return r.inState(flow.StateSkipped)
}

// Canceled returns the identifiers of nodes halted by cancellation.
func (r *Report) Canceled() []string {
	return r.inState(flow.StateCanceled)
}

func (r *Report) inState(s flow.State) []string {
	var out []string
	for _, res := range r.Results {
		if res.State == s {
			out = append(out, res.NodeID)
		}
	}
	return out
}

// OK reports whether every node finished successfully.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.State != flow.StateFinished {
			return false
		}
	}
	return true
}

// Err returns the joined faults of all failed nodes, or nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Duration returns the run's wall-clock time.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
