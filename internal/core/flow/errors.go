// Package flow defines domain-specific errors
package flow

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Connection errors
	ErrInvalidConnection = errors.New("invalid connection")
	ErrNotConnected      = errors.New("ports are not connected")
	ErrSelfConnection    = errors.New("cannot connect a port to itself")
	ErrSameNode          = errors.New("cannot connect ports of the same node")
	ErrKindMismatch      = errors.New("port payload kinds do not match")

	// Node errors
	ErrNilNode         = errors.New("node cannot be nil")
	ErrNodeNotFound    = errors.New("node not found")
	ErrDuplicateNodeID = errors.New("duplicate node ID")
	ErrPortNotFound    = errors.New("port not found")

	// Stream errors
	ErrStreamOpen   = errors.New("stream write side is still open")
	ErrStreamClosed = errors.New("stream write side already closed")
)
