package jsonschema_test

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typesitter/grammar"
	"github.com/reoring/typesitter/jsonschema"
)

func TestDecode_PreservesPropertyOrder(t *testing.T) {
	s, err := jsonschema.Decode([]byte(`{
		"type": "object",
		"properties": {"zeta": {"type": "string"}, "alpha": {"type": ["integer", "null"]}, "mid": true},
		"required": ["zeta"],
		"additionalProperties": false
	}`))
	require.NoError(t, err)

	var keys []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
	assert.True(t, s.HasType("object"))
	assert.True(t, s.AdditionalProperties.IsFalse())

	alpha, _ := s.Properties.Get("alpha")
	assert.Equal(t, jsonschema.TypeList{"integer", "null"}, alpha.Type)
	mid, _ := s.Properties.Get("mid")
	assert.True(t, mid.IsTrue())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := jsonschema.Decode([]byte(`{"type": 3}`))
	assert.Error(t, err)
	_, err = jsonschema.Decode([]byte(`{"type": `))
	assert.Error(t, err)
}

func TestMarshal(t *testing.T) {
	s := &jsonschema.Schema{
		Type:                 jsonschema.TypeList{"object"},
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.Bool(true),
		Grammar:              grammar.Object,
	}
	s.Properties.Set("b", &jsonschema.Schema{Type: jsonschema.TypeList{"string", "null"}})
	s.Properties.Set("a", jsonschema.RefTo("A"))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {"b": {"type": ["string", "null"]}, "a": {"$ref": "#/definitions/A"}},
		"additionalProperties": true,
		"grammar": "$.object"
	}`, string(out))
	assert.Less(t, bytes.Index(out, []byte(`"b"`)), bytes.Index(out, []byte(`"a"`)))

	empty, err := json.Marshal(&jsonschema.Schema{Grammar: grammar.Any})
	require.NoError(t, err)
	assert.Equal(t, `{"grammar":"$.any"}`, string(empty))
}

func TestBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		out, err := json.Marshal(jsonschema.Bool(b))
		require.NoError(t, err)
		back, err := jsonschema.Decode(out)
		require.NoError(t, err)
		assert.True(t, back.IsBool())
		assert.Equal(t, b, back.IsTrue())
	}
	var nilSchema *jsonschema.Schema
	assert.False(t, nilSchema.IsTrue())
	assert.False(t, nilSchema.IsFalse())
}
