// Package sqlite persists the flow library in a local SQLite database.
// Documents are stored as compressed msgpack blobs via pkg/serialization.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/portflow/portflow/internal/adapters/repository/flowrepo"
	"github.com/portflow/portflow/pkg/serialization"
)

// FlowStore implements flowrepo.Store on SQLite.
type FlowStore struct {
	db         *sql.DB
	serializer *serialization.Serializer
}

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(ctx context.Context, path string) (*FlowStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := NewFlowStore(db, serialization.DefaultSerializer())
	if err := s.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewFlowStore wraps an existing connection.
func NewFlowStore(db *sql.DB, serializer *serialization.Serializer) *FlowStore {
	return &FlowStore{db: db, serializer: serializer}
}

// CreateTables bootstraps the schema.
func (s *FlowStore) CreateTables(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS flows (
			name       TEXT PRIMARY KEY,
			document   BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create flow tables: %w", err)
	}
	return nil
}

// Save stores or replaces the named flow document.
func (s *FlowStore) Save(ctx context.Context, name string, doc *serialization.Document) error {
	if name == "" {
		return flowrepo.ErrInvalidFlowName
	}
	blob, err := s.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("serialize flow document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO flows (name, document, updated_at) VALUES (?, ?, ?)`,
		name, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save flow %q: %w", name, err)
	}
	return nil
}

// Get retrieves the named flow.
func (s *FlowStore) Get(ctx context.Context, name string) (*flowrepo.StoredFlow, error) {
	if name == "" {
		return nil, flowrepo.ErrInvalidFlowName
	}
	var blob []byte
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT document, updated_at FROM flows WHERE name = ?`, name).
		Scan(&blob, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flowrepo.ErrFlowNotFound
		}
		return nil, fmt.Errorf("load flow %q: %w", name, err)
	}
	var doc serialization.Document
	if err := s.serializer.Deserialize(blob, &doc); err != nil {
		return nil, fmt.Errorf("deserialize flow %q: %w", name, err)
	}
	return &flowrepo.StoredFlow{
		Name:      name,
		Document:  &doc,
		UpdatedAt: time.Unix(updatedAt, 0),
	}, nil
}

// List returns all stored flows ordered by name.
func (s *FlowStore) List(ctx context.Context) ([]*flowrepo.StoredFlow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, document, updated_at FROM flows ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var out []*flowrepo.StoredFlow
	for rows.Next() {
		var name string
		var blob []byte
		var updatedAt int64
		if err := rows.Scan(&name, &blob, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan flow row: %w", err)
		}
		var doc serialization.Document
		if err := s.serializer.Deserialize(blob, &doc); err != nil {
			return nil, fmt.Errorf("deserialize flow %q: %w", name, err)
		}
		out = append(out, &flowrepo.StoredFlow{
			Name:      name,
			Document:  &doc,
			UpdatedAt: time.Unix(updatedAt, 0),
		})
	}
	return out, rows.Err()
}

// Delete removes the named flow.
func (s *FlowStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return flowrepo.ErrInvalidFlowName
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete flow %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return flowrepo.ErrFlowNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *FlowStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
