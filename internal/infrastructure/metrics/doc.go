// Package metrics exposes expvar-published counters used by the portflow
// engine (runner, nodes, and port deliveries). It intentionally avoids
// external dependencies and is readable through the standard /debug/vars
// endpoint of any embedding process.
package metrics
