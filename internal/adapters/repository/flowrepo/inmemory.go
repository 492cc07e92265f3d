package flowrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/portflow/portflow/pkg/serialization"
)

// InMemoryStore is a map-backed Store. Safe for concurrent use.
type InMemoryStore struct {
	mu    sync.RWMutex
	flows map[string]*StoredFlow
}

// NewInMemoryStore creates an empty in-memory flow library.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{flows: make(map[string]*StoredFlow)}
}

// Save stores or replaces the named flow document.
func (s *InMemoryStore) Save(_ context.Context, name string, doc *serialization.Document) error {
	if name == "" {
		return ErrInvalidFlowName
	}
	s.mu.Lock()
	s.flows[name] = &StoredFlow{Name: name, Document: doc, UpdatedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

// Get retrieves the named flow.
func (s *InMemoryStore) Get(_ context.Context, name string) (*StoredFlow, error) {
	if name == "" {
		return nil, ErrInvalidFlowName
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sf, ok := s.flows[name]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return sf, nil
}

// List returns all stored flows ordered by name.
func (s *InMemoryStore) List(_ context.Context) ([]*StoredFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*StoredFlow, 0, len(s.flows))
	for _, sf := range s.flows {
		out = append(out, sf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the named flow.
func (s *InMemoryStore) Delete(_ context.Context, name string) error {
	if name == "" {
		return ErrInvalidFlowName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flows[name]; !ok {
		return ErrFlowNotFound
	}
	delete(s.flows, name)
	return nil
}
