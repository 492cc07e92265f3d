// Package validation provides structural validation for flows before
// execution and field-level validation for persisted flow documents.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Flow-level validation errors.
var (
	// ErrNilFlow — validation was asked about a nil flow.
	ErrNilFlow = errors.New("flow is nil")

	// ErrEmptyFlow — the flow contains no nodes.
	ErrEmptyFlow = errors.New("flow has no nodes")

	// ErrCyclicFlow — the connector graph contains a directed cycle.
	ErrCyclicFlow = errors.New("cyclic connector graph detected")

	// ErrUnconnectedSlot — a slot-fed input port has no predecessor, so
	// its node could never become ready.
	ErrUnconnectedSlot = errors.New("slot input port has no predecessor")

	// ErrForeignEndpoint — a connector endpoint belongs to a node that is
	// not registered in the flow.
	ErrForeignEndpoint = errors.New("connector endpoint outside flow")
)

// FieldError describes a single failed document field check.
type FieldError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors aggregates document field check failures.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}
