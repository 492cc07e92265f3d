package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_AddNode(t *testing.T) {
	t.Run("nil node", func(t *testing.T) {
		f := New()
		assert.ErrorIs(t, f.AddNode(nil), ErrNilNode)
	})

	t.Run("auto identifier from label", func(t *testing.T) {
		f := New()
		n := NewNode("process")
		require.NoError(t, f.AddNode(n))
		assert.Equal(t, "process", n.ID())
		assert.Same(t, f, n.Flow())
	})

	t.Run("duplicate explicit identifier", func(t *testing.T) {
		f := New()
		a := NewNode("process")
		a.SetID("p1")
		b := NewNode("process")
		b.SetID("p1")
		require.NoError(t, f.AddNode(a))
		assert.ErrorIs(t, f.AddNode(b), ErrDuplicateNodeID)
	})

	t.Run("marks flow modified", func(t *testing.T) {
		f := New()
		f.SetModified(false)
		require.NoError(t, f.AddNode(NewNode("process")))
		assert.True(t, f.Modified())
	})
}

func TestFlow_RandomIDSequence(t *testing.T) {
	f := New()
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		n := NewNode("process")
		require.NoError(t, f.AddNode(n))
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []string{"process", "process-2", "process-3"}, ids)
}

func TestFlow_RemoveNode(t *testing.T) {
	f := New()
	n := NewNode("process")
	require.NoError(t, f.AddNode(n))

	t.Run("removes registered node", func(t *testing.T) {
		require.NoError(t, f.RemoveNode(n))
		assert.Nil(t, n.Flow())
		_, err := f.FindNode(n.ID())
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("unknown node", func(t *testing.T) {
		assert.ErrorIs(t, f.RemoveNode(NewNode("other")), ErrNodeNotFound)
	})
}

func TestFlow_RemoveNodeKeepsConnectors(t *testing.T) {
	f := New()
	a, b := twoNodes()
	require.NoError(t, f.AddNode(a))
	require.NoError(t, f.AddNode(b))
	out := a.AddValuePort("out", RoleOutput)
	in := b.AddValuePort("in", RoleInput)
	require.NoError(t, f.AddConnector(out, in))

	// Removal is strict: connectors stay until explicitly removed, so a
	// dangling connector is a visible caller bug.
	require.NoError(t, f.RemoveNode(a))
	assert.Equal(t, []*Port{out}, in.Predecessors())
}

func TestFlow_AddConnector(t *testing.T) {
	t.Run("both endpoints registered", func(t *testing.T) {
		f := New()
		a, b := twoNodes()
		require.NoError(t, f.AddNode(a))
		require.NoError(t, f.AddNode(b))
		out := a.AddValuePort("out", RoleOutput)
		in := b.AddValuePort("in", RoleInput)
		require.NoError(t, f.AddConnector(out, in))
	})

	t.Run("foreign endpoint", func(t *testing.T) {
		f := New()
		a, b := twoNodes()
		require.NoError(t, f.AddNode(a))
		out := a.AddValuePort("out", RoleOutput)
		in := b.AddValuePort("in", RoleInput)
		assert.ErrorIs(t, f.AddConnector(out, in), ErrNodeNotFound)
	})
}

func TestFlow_RemoveConnector(t *testing.T) {
	f := New()
	a, b := twoNodes()
	require.NoError(t, f.AddNode(a))
	require.NoError(t, f.AddNode(b))
	out := a.AddValuePort("out", RoleOutput)
	in := b.AddValuePort("in", RoleInput)
	require.NoError(t, f.AddConnector(out, in))

	f.SetModified(false)
	require.NoError(t, f.RemoveConnector(out, in))
	assert.True(t, f.Modified())
	assert.Empty(t, out.Successors())
}

func TestFlow_StartNodes(t *testing.T) {
	f := New()
	source := NewNode("source")
	source.AddValuePort("out", RoleOutput)
	sink := NewNode("sink")
	in := sink.AddValuePort("in", RoleInput)
	require.NoError(t, f.AddNode(source))
	require.NoError(t, f.AddNode(sink))
	require.NoError(t, f.AddConnector(source.Ports()[0], in))

	starts := f.StartNodes()
	require.Len(t, starts, 1)
	assert.Same(t, source, starts[0])
}
