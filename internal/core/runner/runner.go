package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/infrastructure/metrics"
	"github.com/portflow/portflow/internal/infrastructure/telemetry"
	"github.com/portflow/portflow/pkg/validation"
)

// Config controls the runner's upfront validation. Malformed graphs
// (cycles, unconnected slots) would otherwise block a worker forever, so
// everything defaults to on.
type Config struct {
	ValidateFlow     bool
	CheckCycles      bool
	CheckConnections bool
}

// DefaultConfig enables all upfront checks.
func DefaultConfig() Config {
	return Config{ValidateFlow: true, CheckCycles: true, CheckConnections: true}
}

// Runner executes all nodes of a flow to completion. Nodes run exactly
// once per runner; create a fresh flow (or reload it) for another run.
type Runner struct {
	flow *flow.Flow
	cfg  Config

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewRunner creates a runner for a flow. Omitting cfg applies
// DefaultConfig.
func NewRunner(f *flow.Flow, cfg ...Config) *Runner {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &Runner{flow: f, cfg: c}
}

// Start launches one worker per node, kicks the start nodes, and blocks
// until every worker has returned. Per-node faults are recorded in the
// report and never abort sibling workers; the returned error covers only
// setup problems (validation, double start).
func (r *Runner) Start(ctx context.Context) (*Report, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if r.cfg.ValidateFlow {
		opts := validation.FlowValidationOptions{
			CheckCycles:      r.cfg.CheckCycles,
			CheckConnections: r.cfg.CheckConnections,
		}
		if err := validation.ValidateFlow(r.flow, opts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFlowNotRunnable, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	runID := uuid.NewString()
	logger := telemetry.WithRunID(telemetry.FromContext(ctx), runID)
	runCtx = telemetry.WithLogger(runCtx, logger)

	nodes := r.flow.Nodes()
	report := newReport(runID, nodes)
	report.StartedAt = time.Now()
	logger.Info("start flow execution", "nodes", len(nodes))

	var wg sync.WaitGroup
	metrics.AddActiveWorkers(len(nodes))
	for _, n := range nodes {
		wg.Add(1)
		go func(n *flow.Node) {
			defer wg.Done()
			defer metrics.AddActiveWorkers(-1)
			r.worker(runCtx, n, report.Result(n.ID()))
		}(n)
	}

	// The only external kick: open the gate of every node with no
	// slot-fed inputs. All other gates open via readiness propagation.
	for _, n := range r.flow.StartNodes() {
		n.SignalReady()
	}

	wg.Wait()
	report.FinishedAt = time.Now()
	metrics.IncRuns()
	logger.Info("flow execution done",
		"duration", report.Duration(),
		"failed", len(report.Failed()),
		"skipped", len(report.Skipped()))
	return report, nil
}

// Stop cancels the current run. Workers still waiting on their readiness
// gate halt as canceled; a node already inside run() finishes unless its
// implementation honors context cancellation.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// worker binds one goroutine to a node's lifecycle: wait, execute,
// publish. Every exit path resolves downstream readiness so join-all
// always terminates.
func (r *Runner) worker(ctx context.Context, n *flow.Node, res *NodeResult) {
	logger := telemetry.WithNodeID(telemetry.FromContext(ctx), n.ID())

	n.SetState(flow.StateWaiting)
	res.State = flow.StateWaiting
	logger.Debug("waiting for inputs")

	// An already-open gate wins over concurrent cancellation, so a node
	// whose inputs are complete is never reported canceled by a late Stop.
	select {
	case <-n.Ready():
	default:
		select {
		case <-n.Ready():
		case <-n.Starved():
			logger.Debug("inputs starved by upstream failure, skipping")
			r.finish(n, res, flow.StateSkipped, nil)
			metrics.IncNodesSkipped()
			n.PropagateSkip()
			return
		case <-ctx.Done():
			r.finish(n, res, flow.StateCanceled, nil)
			n.PropagateSkip()
			return
		}
	}

	res.StartedAt = time.Now()
	n.SetState(flow.StateRunning)
	res.State = flow.StateRunning
	logger.Debug("start")

	err := r.invoke(ctx, n)
	if err == nil {
		// Publishing delivers outputs and advances successor readiness;
		// delivery faults are attributed to this node.
		err = n.Publish()
	}
	metrics.IncNodeExecs()

	if err != nil {
		logger.Error("node failed", "error", err)
		r.finish(n, res, flow.StateFailed, &NodeError{NodeID: n.ID(), Err: err})
		metrics.IncNodeFailures()
		n.PropagateSkip()
		return
	}
	r.finish(n, res, flow.StateFinished, nil)
	logger.Debug("done")
}

func (r *Runner) finish(n *flow.Node, res *NodeResult, s flow.State, err error) {
	n.SetState(s)
	res.State = s
	res.Err = err
	res.FinishedAt = time.Now()
}

// invoke runs the node's business logic, converting panics into node
// faults so a misbehaving implementation never crashes the scheduler.
func (r *Runner) invoke(ctx context.Context, n *flow.Node) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return n.InvokeRun(ctx)
}
