package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	slot := false
	value := "wc -w"
	return &Document{
		Nodes: []NodeRecord{
			{
				ID:   "count",
				Type: "process",
				Ports: []PortRecord{
					{Name: "cmd", Slot: &slot, Value: &value},
					{Name: "stdout", Successors: []SuccessorRecord{{Node: "show", Port: "input"}}},
				},
			},
			{
				ID:    "show",
				Type:  "stdout",
				Props: []PropertyRecord{{Name: "x", Value: "5"}},
				Ports: []PortRecord{{Name: "input"}},
			},
		},
	}
}

func TestSerializer_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	t.Run("default msgpack zstd", func(t *testing.T) {
		s := DefaultSerializer()
		blob, err := s.Serialize(doc)
		require.NoError(t, err)

		var out Document
		require.NoError(t, s.Deserialize(blob, &out))
		assert.Equal(t, doc.Nodes, out.Nodes)
	})

	t.Run("json gzip", func(t *testing.T) {
		s := NewSerializer(NewJSONCodec(), CompressionGzip)
		blob, err := s.Serialize(doc)
		require.NoError(t, err)

		var out Document
		require.NoError(t, s.Deserialize(blob, &out))
		assert.Equal(t, doc.Nodes, out.Nodes)
	})
}

func TestSerializer_CorruptInput(t *testing.T) {
	s := DefaultSerializer()
	var out Document
	err := s.Deserialize([]byte("not a zstd frame"), &out)
	assert.Error(t, err)
}

func TestCodecNames(t *testing.T) {
	assert.Equal(t, "json", NewJSONCodec().Name())
	assert.Equal(t, "msgpack", NewMsgPackCodec().Name())
}
