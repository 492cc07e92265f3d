package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portflow/portflow/internal/adapters/repository/flowrepo"
	"github.com/portflow/portflow/pkg/serialization"
)

func openTestStore(t *testing.T) *FlowStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "flows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDoc() *serialization.Document {
	slot := false
	cmd := "wc -w"
	return &serialization.Document{
		Nodes: []serialization.NodeRecord{
			{
				ID:   "count",
				Type: "process",
				Ports: []serialization.PortRecord{
					{Name: "cmd", Slot: &slot, Value: &cmd},
				},
			},
		},
	}
}

func TestFlowStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, "wordcount", sampleDoc()))

	sf, err := store.Get(ctx, "wordcount")
	require.NoError(t, err)
	assert.Equal(t, "wordcount", sf.Name)
	require.Len(t, sf.Document.Nodes, 1)
	assert.Equal(t, sampleDoc().Nodes, sf.Document.Nodes)
	assert.False(t, sf.UpdatedAt.IsZero())
}

func TestFlowStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, "wc", sampleDoc()))

	changed := sampleDoc()
	changed.Nodes[0].ID = "renamed"
	require.NoError(t, store.Save(ctx, "wc", changed))

	sf, err := store.Get(ctx, "wc")
	require.NoError(t, err)
	assert.Equal(t, "renamed", sf.Document.Nodes[0].ID)

	flows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, flows, 1, "replace must not create a second row")
}

func TestFlowStore_List(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Save(ctx, "zeta", sampleDoc()))
	require.NoError(t, store.Save(ctx, "alpha", sampleDoc()))

	flows, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "alpha", flows[0].Name)
	assert.Equal(t, "zeta", flows[1].Name)
}

func TestFlowStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Save(ctx, "wc", sampleDoc()))

	require.NoError(t, store.Delete(ctx, "wc"))
	_, err := store.Get(ctx, "wc")
	assert.ErrorIs(t, err, flowrepo.ErrFlowNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "wc"), flowrepo.ErrFlowNotFound)
}

func TestFlowStore_InvalidName(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	assert.ErrorIs(t, store.Save(ctx, "", sampleDoc()), flowrepo.ErrInvalidFlowName)
	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, flowrepo.ErrInvalidFlowName)
}
