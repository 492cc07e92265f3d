// Package flowrepo defines the flow library abstraction: named flow
// documents with timestamps, persisted by the sqlite adapter or held in
// memory for tests and ephemeral use.
package flowrepo

import (
	"context"
	"errors"
	"time"

	"github.com/portflow/portflow/pkg/serialization"
)

var (
	// ErrFlowNotFound — no stored flow has the requested name.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrInvalidFlowName — the name is empty or otherwise unusable as a key.
	ErrInvalidFlowName = errors.New("invalid flow name")
)

// StoredFlow is one library entry: the persisted document plus bookkeeping.
type StoredFlow struct {
	Name      string
	Document  *serialization.Document
	UpdatedAt time.Time
}

// Store is a named flow library.
type Store interface {
	Save(ctx context.Context, name string, doc *serialization.Document) error
	Get(ctx context.Context, name string) (*StoredFlow, error)
	List(ctx context.Context) ([]*StoredFlow, error)
	Delete(ctx context.Context, name string) error
}
