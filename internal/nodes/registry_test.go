package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portflow/portflow/internal/core/flow"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	assert.Equal(t, []string{
		TypeCLIParam,
		TypeFileInput,
		TypeFileList,
		TypeFileOutput,
		TypeProcess,
		TypeStdin,
		TypeStdout,
		TypeValue,
	}, reg.Types())

	for _, tag := range reg.Types() {
		n, err := reg.New(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, n.Type())
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	reg := DefaultRegistry()
	assert.False(t, reg.Has("teleport"))
	_, err := reg.New("teleport")
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestRegistry_FreshInstances(t *testing.T) {
	reg := DefaultRegistry()
	a, err := reg.New(TypeProcess)
	require.NoError(t, err)
	b, err := reg.New(TypeProcess)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "every New call yields a fresh node")
}

func TestRegistry_RegisterCustomType(t *testing.T) {
	reg := NewRegistry()
	reg.Register("custom", func() *flow.Node { return flow.NewNode("custom") })

	require.True(t, reg.Has("custom"))
	n, err := reg.New("custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", n.Type())
}
