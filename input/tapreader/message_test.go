package tapreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchemaMessage(t *testing.T) {
	line := `{"type": "SCHEMA", "stream": "cats",
		"schema": {"properties": {"id": {"type": "integer"}, "name": {"type": ["string", "null"]}}},
		"key_properties": ["id"]}`
	message, err := ParseMessage([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, MessageTypeSchema, message.Type)
	assert.Equal(t, "cats", message.Stream)
	assert.Equal(t, "cats", message.Schema.Stream)
	assert.Equal(t, []string{"id"}, message.Schema.KeyProperties)

	id, hasID := message.Schema.Properties["id"]
	require.True(t, hasID)
	assert.Equal(t, []string{"integer"}, id.Types)

	name, hasName := message.Schema.Properties["name"]
	require.True(t, hasName)
	assert.Equal(t, []string{"string", "null"}, name.Types)
	assert.True(t, name.Nullable())
}

func TestParseRecordMessage(t *testing.T) {
	message, err := ParseMessage([]byte(`{"type": "RECORD", "stream": "cats", "record": {"id": 1, "name": "whiskers"}}`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypeRecord, message.Type)
	assert.Equal(t, "cats", message.Stream)
	assert.Equal(t, float64(1), message.Record["id"])
	assert.Equal(t, "whiskers", message.Record["name"])
}

func TestParseStateMessage(t *testing.T) {
	message, err := ParseMessage([]byte(`{"type": "STATE", "value": {"bookmarks": {"cats": 5}}}`))
	require.NoError(t, err)
	assert.Equal(t, MessageTypeState, message.Type)
	payload, isMap := message.State.(map[string]interface{})
	require.True(t, isMap)
	assert.Contains(t, payload, "bookmarks")

	// a STATE without value carries a nil payload, still dispatched
	empty, err := ParseMessage([]byte(`{"type": "STATE"}`))
	require.NoError(t, err)
	assert.Nil(t, empty.State)
}

func TestParseInvalidMessages(t *testing.T) {
	for name, line := range map[string]string{
		"not json":       `{type: RECORD}`,
		"missing type":   `{"stream": "cats", "record": {"id": 1}}`,
		"unknown type":   `{"type": "ACTIVATE_VERSION", "stream": "cats"}`,
		"schema no body": `{"type": "SCHEMA", "stream": "cats"}`,
		"schema no name": `{"type": "SCHEMA", "schema": {"properties": {}}}`,
		"record no body": `{"type": "RECORD", "stream": "cats"}`,
		"record no name": `{"type": "RECORD", "record": {"id": 1}}`,
	} {
		_, err := ParseMessage([]byte(line))
		assert.Error(t, err, name)
	}
}
