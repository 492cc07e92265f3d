package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   string `xml:"id,attr" validate:"required,node_id"`
	Type string `xml:"type,attr" validate:"required,type_tag"`
	Port string `xml:"port,attr" validate:"omitempty,port_name"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		record    testRecord
		wantField string
	}{
		{
			name:   "valid record",
			record: testRecord{ID: "node-1", Type: "process", Port: "stdin"},
		},
		{
			name:      "missing id",
			record:    testRecord{Type: "process"},
			wantField: "id",
		},
		{
			name:      "id with spaces",
			record:    testRecord{ID: "bad id", Type: "process"},
			wantField: "id",
		},
		{
			name:      "uppercase type tag",
			record:    testRecord{ID: "node-1", Type: "Process"},
			wantField: "type",
		},
		{
			name:      "port with slash",
			record:    testRecord{ID: "node-1", Type: "process", Port: "a/b"},
			wantField: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.record)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ferrs FieldErrors
			require.ErrorAs(t, err, &ferrs)
			require.NotEmpty(t, ferrs)
			assert.Equal(t, tt.wantField, ferrs[0].Field, "field name comes from the xml tag")
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{
		{Field: "id", Message: "field is required"},
		{Field: "type", Message: "must be a valid node type tag (lowercase alphanumeric, underscore)"},
	}
	assert.Contains(t, errs.Error(), "id: field is required")
	assert.Contains(t, errs.Error(), "; ")
}
