package typesitter

import (
	"github.com/reoring/typesitter/jsonschema"
	"github.com/reoring/typesitter/typegraph"
)

// applyAttributes copies descriptive attributes of a node into its schema.
// References are left alone and the grammar is never touched.
func applyAttributes(s *jsonschema.Schema, a typegraph.Attributes) {
	if s == nil || s.Ref != "" || a.IsZero() {
		return
	}
	if a.Description != "" {
		s.Description = a.Description
	}
	if len(a.Examples) > 0 {
		s.Examples = append([]any(nil), a.Examples...)
	}
}
