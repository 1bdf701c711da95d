// Package jsonschema holds the JSON Schema shaped values produced by the
// compiler and the documents read by the importers.
package jsonschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/typesitter/grammar"
)

// DefinitionsPrefix is the JSON Pointer prefix of compiler definitions.
const DefinitionsPrefix = "#/definitions/"

// Properties is an object's members in declaration order.
type Properties = orderedmap.OrderedMap[string, *Schema]

// NewProperties returns an empty ordered property map.
func NewProperties() *Properties { return orderedmap.New[string, *Schema]() }

// Schema is a JSON Schema node. The compiler additionally attaches the
// grammar fragment that parses values of the described shape.
type Schema struct {
	Ref         string   `json:"$ref,omitempty"`
	Type        TypeList `json:"type,omitempty"`
	Format      string   `json:"format,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Examples    []any    `json:"examples,omitempty"`

	// Object
	Properties           *Properties `json:"properties,omitempty"`
	Required             []string    `json:"required,omitempty"`
	AdditionalProperties *Schema     `json:"additionalProperties,omitempty"`
	PatternProperties    *Properties `json:"patternProperties,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`

	// Composition
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`

	Enum  []any `json:"enum,omitempty"`
	Const any   `json:"const,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`

	// OpenAPI and Kubernetes structural schema extensions.
	Nullable        bool `json:"nullable,omitempty"`
	IntOrString     bool `json:"x-kubernetes-int-or-string,omitempty"`
	PreserveUnknown bool `json:"x-kubernetes-preserve-unknown-fields,omitempty"`

	// Grammar parses values of this schema. It is written as "grammar" in the
	// tree-sitter dialect.
	Grammar grammar.Fragment `json:"-"`

	boolean *bool
}

// Bool returns the boolean schema b: true accepts everything, false nothing.
func Bool(b bool) *Schema { return &Schema{boolean: &b} }

// IsTrue reports whether s is the boolean schema true.
func (s *Schema) IsTrue() bool { return s != nil && s.boolean != nil && *s.boolean }

// IsFalse reports whether s is the boolean schema false.
func (s *Schema) IsFalse() bool { return s != nil && s.boolean != nil && !*s.boolean }

// IsBool reports whether s is a boolean schema.
func (s *Schema) IsBool() bool { return s != nil && s.boolean != nil }

// RefTo returns a schema referring to the named definition.
func RefTo(name string) *Schema { return &Schema{Ref: DefinitionsPrefix + name} }

// HasType reports whether t is listed in the type keyword.
func (s *Schema) HasType(t string) bool {
	for _, x := range s.Type {
		if x == t {
			return true
		}
	}
	return false
}

type plain Schema

func (s *Schema) MarshalJSON() ([]byte, error) {
	if s.boolean != nil {
		return json.Marshal(*s.boolean)
	}
	body, err := json.Marshal((*plain)(s))
	if err != nil || s.Grammar == nil {
		return body, err
	}
	g, err := json.Marshal(s.Grammar.String())
	if err != nil {
		return nil, err
	}
	// append "grammar" as the last member of the object
	out := make([]byte, 0, len(body)+len(g)+12)
	out = append(out, body[:len(body)-1]...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	out = append(out, `"grammar":`...)
	out = append(out, g...)
	return append(out, '}'), nil
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*s = *Bool(true)
		return nil
	case "false":
		*s = *Bool(false)
		return nil
	}
	return json.Unmarshal(data, (*plain)(s))
}

// TypeList is the type keyword, either a single name or a list.
type TypeList []string

func (t TypeList) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *TypeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TypeList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("jsonschema: type must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

// Decode parses a JSON Schema document.
func Decode(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
