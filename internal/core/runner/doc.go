// Package runner drives the concurrent execution of a flow: one worker
// goroutine per node, blocked on that node's readiness gate, with
// join-based completion detection. Progress is driven purely by local
// readiness propagation; the only external kick is the initial signal to
// start nodes.
package runner
