// Package nodes provides the builtin node library and the registry that
// maps persisted type tags to node factories. Node implementations only
// declare their ports at construction and attach a run function; all
// engine-side behavior (readiness waiting, publishing) is supplied by the
// core node and must not be reimplemented here.
package nodes
