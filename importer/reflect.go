package importer

import (
	"errors"
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
	invopop "github.com/invopop/jsonschema"

	"github.com/reoring/typesitter/typegraph"
)

// FromGoType reflects the Go type of v into a JSON Schema and imports it.
// Struct fields follow their json tags; fields without omitempty are
// required and structs are closed. The root defaults to the type's name.
func FromGoType(v any, opts Options) (*typegraph.Graph, Diag, error) {
	if v == nil {
		return nil, &simpleDiag{log: opts.Logger}, errors.New("importer: nil value")
	}
	reflector := invopop.Reflector{
		AllowAdditionalProperties:  false,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: false,
	}
	schema := reflector.Reflect(v)
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, &simpleDiag{log: opts.Logger}, fmt.Errorf("importer: marshal reflected schema: %w", err)
	}
	if opts.Root == "" {
		opts.Root = typeName(v)
	}
	return ImportJSON(data, opts)
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
