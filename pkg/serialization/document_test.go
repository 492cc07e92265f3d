package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/nodes"
)

// pipelineFlow builds the canonical three-node pipeline used across the
// persistence tests: literal text -> shell word count -> stdout.
func pipelineFlow(t *testing.T) *flow.Flow {
	t.Helper()
	reg := nodes.DefaultRegistry()
	f := flow.New()

	text, err := reg.New(nodes.TypeValue)
	require.NoError(t, err)
	text.SetID("text")
	count, err := reg.New(nodes.TypeProcess)
	require.NoError(t, err)
	count.SetID("count")
	show, err := reg.New(nodes.TypeStdout)
	require.NoError(t, err)
	show.SetID("show")

	require.NoError(t, f.AddNode(text))
	require.NoError(t, f.AddNode(count))
	require.NoError(t, f.AddNode(show))

	valuePort, err := text.FindPort("value")
	require.NoError(t, err)
	valuePort.SetValue("some words to count")
	cmdPort, err := count.FindPort("cmd")
	require.NoError(t, err)
	cmdPort.SetValue("wc -w")

	textStream, err := text.FindPort("stream")
	require.NoError(t, err)
	countStdin, err := count.FindPort("stdin")
	require.NoError(t, err)
	countStdout, err := count.FindPort("stdout")
	require.NoError(t, err)
	showInput, err := show.FindPort("input")
	require.NoError(t, err)

	require.NoError(t, f.AddConnector(textStream, countStdin))
	require.NoError(t, f.AddConnector(countStdout, showInput))

	text.Props()["x"] = "10"
	text.Props()["y"] = "20"
	return f
}

func TestEncodeDecodeFlow_RoundTrip(t *testing.T) {
	original := pipelineFlow(t)
	data, err := EncodeFlow(original)
	require.NoError(t, err)

	loaded, err := DecodeFlow(data, nodes.DefaultRegistry())
	require.NoError(t, err)

	require.Len(t, loaded.Nodes(), 3)
	assert.False(t, loaded.Modified(), "freshly loaded flow is unmodified")

	text, err := loaded.FindNode("text")
	require.NoError(t, err)
	assert.Equal(t, nodes.TypeValue, text.Type())
	assert.Equal(t, map[string]string{"x": "10", "y": "20"}, text.Props())

	valuePort, err := text.FindPort("value")
	require.NoError(t, err)
	assert.False(t, valuePort.Slot())
	assert.Equal(t, "some words to count", valuePort.Value())

	count, err := loaded.FindNode("count")
	require.NoError(t, err)
	cmdPort, err := count.FindPort("cmd")
	require.NoError(t, err)
	assert.Equal(t, "wc -w", cmdPort.Value())

	// Connectors restored symmetrically.
	stdin, err := count.FindPort("stdin")
	require.NoError(t, err)
	require.Len(t, stdin.Predecessors(), 1)
	assert.Equal(t, "text.stream", stdin.Predecessors()[0].FullName())
	assert.True(t, stdin.Slot(), "connected stream input becomes slot-fed")

	show, err := loaded.FindNode("show")
	require.NoError(t, err)
	input, err := show.FindPort("input")
	require.NoError(t, err)
	require.Len(t, input.Predecessors(), 1)
	assert.Equal(t, "count.stdout", input.Predecessors()[0].FullName())

	// Start set survives the round trip.
	var starts []string
	for _, n := range loaded.StartNodes() {
		starts = append(starts, n.ID())
	}
	assert.ElementsMatch(t, []string{"text"}, starts)
}

func TestDecodeFlow_UnknownNodeType(t *testing.T) {
	doc := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<flow>
  <node id="n1" type="teleport"></node>
</flow>`)
	_, err := DecodeFlow(doc, nodes.DefaultRegistry())
	assert.ErrorIs(t, err, nodes.ErrUnknownNodeType)
}

func TestDecodeFlow_InvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{
			name: "missing node id",
			xml:  `<flow><node type="process"></node></flow>`,
		},
		{
			name: "bad node id",
			xml:  `<flow><node id="has space" type="process"></node></flow>`,
		},
		{
			name: "uppercase type",
			xml:  `<flow><node id="n1" type="Process"></node></flow>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFlow([]byte(tt.xml), nodes.DefaultRegistry())
			assert.ErrorContains(t, err, "invalid flow document")
		})
	}
}

func TestDecodeFlow_DuplicateNodeID(t *testing.T) {
	doc := []byte(`<flow>
  <node id="n1" type="value"></node>
  <node id="n1" type="value"></node>
</flow>`)
	_, err := DecodeFlow(doc, nodes.DefaultRegistry())
	assert.ErrorIs(t, err, flow.ErrDuplicateNodeID)
}

func TestDecodeFlow_UnknownSuccessorPort(t *testing.T) {
	doc := []byte(`<flow>
  <node id="a" type="value">
    <interface name="stream">
      <successor node="b" interface="nonexistent"></successor>
    </interface>
  </node>
  <node id="b" type="stdout"></node>
</flow>`)
	_, err := DecodeFlow(doc, nodes.DefaultRegistry())
	assert.ErrorIs(t, err, flow.ErrPortNotFound)
}

func TestBuildDocument_OmitsEmptyCollections(t *testing.T) {
	f := flow.New()
	reg := nodes.DefaultRegistry()
	n, err := reg.New(nodes.TypeStdout)
	require.NoError(t, err)
	n.SetID("show")
	require.NoError(t, f.AddNode(n))

	doc := BuildDocument(f)
	require.Len(t, doc.Nodes, 1)
	assert.Empty(t, doc.Nodes[0].Props)
	require.Len(t, doc.Nodes[0].Ports, 1)
	assert.Empty(t, doc.Nodes[0].Ports[0].Successors)
}
