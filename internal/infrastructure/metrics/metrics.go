package metrics

import (
	"expvar"
)

// Runner / node metrics.
var (
	runsTotal         = new(expvar.Int)
	nodeExecsTotal    = new(expvar.Int)
	nodeFailuresTotal = new(expvar.Int)
	nodesSkippedTotal = new(expvar.Int)
	deliveriesTotal   = new(expvar.Int)
	activeWorkers     = new(expvar.Int)
)

func init() {
	expvar.Publish("portflow_runs_total", runsTotal)
	expvar.Publish("portflow_node_executions_total", nodeExecsTotal)
	expvar.Publish("portflow_node_failures_total", nodeFailuresTotal)
	expvar.Publish("portflow_nodes_skipped_total", nodesSkippedTotal)
	expvar.Publish("portflow_deliveries_total", deliveriesTotal)
	expvar.Publish("portflow_active_workers", activeWorkers)
}

// Runner helpers
func IncRuns()               { runsTotal.Add(1) }
func IncNodeExecs()          { nodeExecsTotal.Add(1) }
func IncNodeFailures()       { nodeFailuresTotal.Add(1) }
func IncNodesSkipped()       { nodesSkippedTotal.Add(1) }
func AddActiveWorkers(n int) { activeWorkers.Add(int64(n)) }

// Port helpers
func IncDeliveries() { deliveriesTotal.Add(1) }
