package importer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typesitter/importer"
	"github.com/reoring/typesitter/typegraph"
)

func node(t *testing.T, g *typegraph.Graph, id typegraph.ID) *typegraph.Node {
	t.Helper()
	n, ok := g.Node(id)
	require.True(t, ok, "node %d", id)
	return n
}

func prop(t *testing.T, n *typegraph.Node, name string) typegraph.Property {
	t.Helper()
	for _, p := range n.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %q not found in %s", name, n.Name)
	return typegraph.Property{}
}

func propNames(n *typegraph.Node) []string {
	var out []string
	for _, p := range n.Properties {
		out = append(out, p.Name)
	}
	return out
}

func kinds(t *testing.T, g *typegraph.Graph, ids []typegraph.ID) []typegraph.Kind {
	t.Helper()
	var out []typegraph.Kind
	for _, id := range ids {
		out = append(out, node(t, g, id).Kind)
	}
	return out
}

const librarySchema = `{
	"$ref": "#/definitions/Grammar",
	"definitions": {
		"Grammar": {
			"type": "object",
			"description": "A library.",
			"properties": {
				"name": {"type": "string"},
				"books": {"type": "array", "items": {"$ref": "#/definitions/Book"}},
				"featured": {"$ref": "#/definitions/Book"}
			},
			"required": ["name", "books"]
		},
		"Book": {
			"type": "object",
			"properties": {
				"title": {"type": "string", "examples": ["Dune"]},
				"related": {"type": "array", "items": {"$ref": "#/definitions/Book"}}
			},
			"required": ["title"],
			"additionalProperties": false
		}
	}
}`

func TestImportJSON_Definitions(t *testing.T) {
	g, d, err := importer.ImportJSON([]byte(librarySchema), importer.Options{})
	require.NoError(t, err)
	assert.False(t, d.HasWarnings(), d.Warnings())
	assert.Equal(t, "Grammar", g.RootName())

	root := node(t, g, g.Root())
	assert.Equal(t, typegraph.KindObject, root.Kind)
	assert.Equal(t, "Grammar", root.Name)
	assert.Equal(t, "A library.", root.Attributes.Description)
	assert.Equal(t, []string{"name", "books", "featured"}, propNames(root))
	assert.False(t, prop(t, root, "name").Optional)
	assert.True(t, prop(t, root, "featured").Optional)
	assert.Equal(t, typegraph.NoID, root.Additional, "missing additionalProperties closes the object")

	books := node(t, g, prop(t, root, "books").Type)
	require.Equal(t, typegraph.KindArray, books.Kind)
	bookID := books.Items
	assert.Equal(t, bookID, prop(t, root, "featured").Type, "one node per definition")

	book := node(t, g, bookID)
	assert.Equal(t, "Book", book.Name)
	related := node(t, g, prop(t, book, "related").Type)
	assert.Equal(t, bookID, related.Items, "recursive reference resolves to the same node")

	title := node(t, g, prop(t, book, "title").Type)
	assert.Equal(t, typegraph.KindString, title.Kind)
	assert.Equal(t, []any{"Dune"}, title.Attributes.Examples)
}

func TestImportJSON_RootSelection(t *testing.T) {
	t.Run("named root", func(t *testing.T) {
		g, _, err := importer.ImportJSON([]byte(librarySchema), importer.Options{Root: "Book"})
		require.NoError(t, err)
		assert.Equal(t, "Book", node(t, g, g.Root()).Name)
	})
	t.Run("document itself", func(t *testing.T) {
		g, _, err := importer.ImportJSON([]byte(`{"type": "array", "items": {"type": "integer"}}`), importer.Options{Root: "Numbers"})
		require.NoError(t, err)
		assert.Equal(t, "Numbers", g.RootName())
		assert.Equal(t, typegraph.KindArray, node(t, g, g.Root()).Kind)
	})
	t.Run("$defs", func(t *testing.T) {
		doc := `{"$defs": {"Grammar": {"type": "object", "properties": {"self": {"$ref": "#"}}}}, "$ref": "#/$defs/Grammar"}`
		g, _, err := importer.ImportJSON([]byte(doc), importer.Options{})
		require.NoError(t, err)
		assert.Equal(t, typegraph.KindObject, node(t, g, g.Root()).Kind)
	})
	t.Run("recursive document", func(t *testing.T) {
		doc := `{"type": "object", "properties": {"children": {"type": "array", "items": {"$ref": "#"}}}}`
		g, _, err := importer.ImportJSON([]byte(doc), importer.Options{Root: "Tree"})
		require.NoError(t, err)
		root := node(t, g, g.Root())
		assert.Equal(t, "Tree", root.Name)
		assert.Equal(t, g.Root(), node(t, g, prop(t, root, "children").Type).Items)
	})
	t.Run("unknown", func(t *testing.T) {
		_, _, err := importer.ImportJSON([]byte(`{"definitions": {"A": {"type": "string"}}}`), importer.Options{})
		assert.True(t, errors.Is(err, importer.ErrUnknownRoot), err)
	})
}

func TestImportJSON_Unions(t *testing.T) {
	doc := `{
		"type": "object",
		"properties": {
			"list":     {"type": ["string", "null"]},
			"nullable": {"type": "integer", "nullable": true},
			"nested":   {"anyOf": [{"type": "string"}, {"anyOf": [{"type": "integer"}, {"type": "string"}]}]},
			"port":     {"x-kubernetes-int-or-string": true},
			"single":   {"oneOf": [{"type": "boolean"}]},
			"checked":  {"type": "string", "anyOf": [{"minLength": 1}, {"pattern": "x"}]}
		}
	}`
	g, _, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	root := node(t, g, g.Root())

	member := func(name string) []typegraph.Kind {
		n := node(t, g, prop(t, root, name).Type)
		require.Equal(t, typegraph.KindUnion, n.Kind, name)
		return kinds(t, g, n.Members)
	}
	assert.Equal(t, []typegraph.Kind{typegraph.KindString, typegraph.KindNull}, member("list"))
	assert.Equal(t, []typegraph.Kind{typegraph.KindInteger, typegraph.KindNull}, member("nullable"))
	assert.Equal(t, []typegraph.Kind{typegraph.KindString, typegraph.KindInteger}, member("nested"))
	assert.Equal(t, []typegraph.Kind{typegraph.KindInteger, typegraph.KindString}, member("port"))
	assert.Equal(t, typegraph.KindBool, node(t, g, prop(t, root, "single").Type).Kind)
	assert.Equal(t, typegraph.KindString, node(t, g, prop(t, root, "checked").Type).Kind)
}

func TestImportJSON_Enums(t *testing.T) {
	doc := `{
		"type": "object",
		"properties": {
			"status": {"type": "string", "enum": ["on", "off", "on"]},
			"mode":   {"enum": ["a", null]},
			"kind":   {"const": "Widget"},
			"level":  {"type": "integer", "enum": [1, 2]}
		}
	}`
	g, d, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	root := node(t, g, g.Root())

	status := node(t, g, prop(t, root, "status").Type)
	assert.Equal(t, typegraph.KindEnum, status.Kind)
	assert.Equal(t, "status", status.Name)
	assert.Equal(t, []string{"on", "off"}, status.Cases)

	mode := node(t, g, prop(t, root, "mode").Type)
	require.Equal(t, typegraph.KindUnion, mode.Kind)
	assert.Equal(t, []typegraph.Kind{typegraph.KindEnum, typegraph.KindNull}, kinds(t, g, mode.Members))

	assert.Equal(t, []string{"Widget"}, node(t, g, prop(t, root, "kind").Type).Cases)

	assert.Equal(t, typegraph.KindInteger, node(t, g, prop(t, root, "level").Type).Kind)
	require.Len(t, d.Warnings(), 1)
	assert.Contains(t, d.Warnings()[0], "not a string")
}

func TestImportJSON_Objects(t *testing.T) {
	doc := `{
		"type": "object",
		"properties": {
			"labels":   {"type": "object", "additionalProperties": {"type": "string"}},
			"free":     {"type": "object"},
			"empty":    {"type": "object", "additionalProperties": false},
			"open":     {"type": "object", "properties": {"a": {"type": "string"}}, "additionalProperties": true},
			"preserve": {"type": "object", "properties": {"a": {"type": "string"}}, "x-kubernetes-preserve-unknown-fields": true},
			"pattern":  {"type": "object", "properties": {"a": {"type": "string"}}, "patternProperties": {"^x-": {"type": "integer"}, "^y-": {"type": "boolean"}}}
		}
	}`
	g, _, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	root := node(t, g, g.Root())
	get := func(name string) *typegraph.Node { return node(t, g, prop(t, root, name).Type) }

	labels := get("labels")
	require.Equal(t, typegraph.KindMap, labels.Kind)
	assert.Equal(t, typegraph.KindString, node(t, g, labels.Values).Kind)

	free := get("free")
	require.Equal(t, typegraph.KindMap, free.Kind)
	assert.Equal(t, typegraph.KindAny, node(t, g, free.Values).Kind)

	empty := get("empty")
	assert.Equal(t, typegraph.KindObject, empty.Kind)
	assert.Empty(t, empty.Properties)
	assert.Equal(t, typegraph.NoID, empty.Additional)

	assert.Equal(t, typegraph.KindAny, node(t, g, get("open").Additional).Kind)
	assert.Equal(t, typegraph.KindAny, node(t, g, get("preserve").Additional).Kind)

	pattern := node(t, g, get("pattern").Additional)
	require.Equal(t, typegraph.KindUnion, pattern.Kind)
	assert.Equal(t, []typegraph.Kind{typegraph.KindInteger, typegraph.KindBool}, kinds(t, g, pattern.Members))
}

func TestImportJSON_AllOf(t *testing.T) {
	doc := `{
		"definitions": {
			"Named": {"type": "object", "properties": {"name": {"type": "string"}}, "required": ["name"]},
			"Grammar": {
				"allOf": [
					{"$ref": "#/definitions/Named"},
					{"properties": {"size": {"type": "integer"}}, "required": ["size"]},
					{"required": ["name"]}
				],
				"properties": {"extra": {"type": "boolean"}},
				"additionalProperties": false
			}
		}
	}`
	g, d, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	assert.False(t, d.HasWarnings(), d.Warnings())
	root := node(t, g, g.Root())
	assert.Equal(t, typegraph.KindObject, root.Kind)
	assert.Equal(t, []string{"name", "size", "extra"}, propNames(root))
	assert.False(t, prop(t, root, "name").Optional)
	assert.False(t, prop(t, root, "size").Optional)
	assert.True(t, prop(t, root, "extra").Optional)
}

func TestImportJSON_Formats(t *testing.T) {
	doc := `{"type": "object", "properties": {
		"at":   {"type": "string", "format": "date-time"},
		"id":   {"type": "string", "format": "uuid"},
		"mail": {"type": "string", "format": "email"}
	}}`
	g, d, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	root := node(t, g, g.Root())

	at := node(t, g, prop(t, root, "at").Type)
	assert.Equal(t, typegraph.KindTransformedString, at.Kind)
	assert.Equal(t, "date-time", at.Format)
	assert.Equal(t, "uuid", node(t, g, prop(t, root, "id").Type).Format)
	assert.Equal(t, typegraph.KindString, node(t, g, prop(t, root, "mail").Type).Kind)
	require.Len(t, d.Warnings(), 1)
	assert.Contains(t, d.Warnings()[0], `"email"`)
}

func TestImportJSON_Errors(t *testing.T) {
	_, _, err := importer.ImportJSON([]byte(`{"type": `), importer.Options{})
	assert.ErrorContains(t, err, "importer: invalid JSON schema")

	_, _, err = importer.ImportJSON([]byte(`{"type": "object", "properties": {"a": {"$ref": "#/definitions/Missing"}}}`), importer.Options{})
	assert.True(t, errors.Is(err, importer.ErrUnresolvedRef), err)

	_, _, err = importer.ImportJSON([]byte(`{"$ref": "#/definitions/A", "definitions": {"A": {"$ref": "#/definitions/B"}, "B": {"$ref": "#/definitions/A"}}}`), importer.Options{})
	assert.True(t, errors.Is(err, importer.ErrRefCycle), err)

	_, _, err = importer.ImportJSON([]byte(`{"type": "unknown"}`), importer.Options{})
	assert.ErrorContains(t, err, `unknown type "unknown"`)
}

func TestImportJSON_RemoteRefWarns(t *testing.T) {
	doc := `{"type": "object", "properties": {"meta": {"$ref": "https://example.com/meta.json"}}}`
	g, d, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	root := node(t, g, g.Root())
	assert.Equal(t, typegraph.KindAny, node(t, g, prop(t, root, "meta").Type).Kind)
	require.True(t, d.HasWarnings())
	assert.Contains(t, d.Warnings()[0], "local references only")
}

func TestImportYAML(t *testing.T) {
	y := `
type: object
title: Config
properties:
  zeta: {type: string}
  alpha:
    type: array
    items: {type: integer}
required: [zeta]
`
	g, _, err := importer.ImportYAML([]byte(y), importer.Options{})
	require.NoError(t, err)
	root := node(t, g, g.Root())
	assert.Equal(t, "Config", root.Name)
	assert.Equal(t, []string{"zeta", "alpha"}, propNames(root))

	_, _, err = importer.ImportYAML([]byte("type: object\ntype: string\n"), importer.Options{})
	var de *importer.DuplicateKeyError
	assert.True(t, errors.As(err, &de), err)

	_, d, err := importer.ImportYAML([]byte("type: string\n---\ntype: integer\n"), importer.Options{})
	require.NoError(t, err)
	assert.True(t, d.HasWarnings())
}

func TestImportYAML_EmptyDocumentsSkipped(t *testing.T) {
	g, d, err := importer.ImportYAML([]byte("---\n---\ntype: object\nproperties:\n  a: {type: string}\n"), importer.Options{})
	require.NoError(t, err)
	assert.False(t, d.HasWarnings())
	assert.Equal(t, []string{"a"}, propNames(node(t, g, g.Root())))

	_, d, err = importer.ImportYAML([]byte("type: object\nproperties:\n  a: {type: string}\n---\n"), importer.Options{})
	require.NoError(t, err)
	assert.False(t, d.HasWarnings(), "trailing separator is not a second document")

	_, _, err = importer.ImportYAML([]byte("---\n---\n"), importer.Options{})
	assert.ErrorContains(t, err, "empty YAML stream")
}

const crdBundle = `
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata: {name: gadgets.example.com}
spec:
  names: {kind: Gadget}
  versions:
    - name: v1
      schema:
        openAPIV3Schema: {type: object, properties: {size: {type: integer}}}
---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata: {name: widgets.example.com}
spec:
  names: {kind: Widget}
  versions:
    - name: v1alpha1
      served: false
      schema:
        openAPIV3Schema: {type: object, properties: {old: {type: string}}}
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          properties:
            spec:
              type: object
              properties:
                replicas: {type: integer}
                port: {x-kubernetes-int-or-string: true}
`

func TestImportYAMLForCRDKind(t *testing.T) {
	g, _, err := importer.ImportYAMLForCRDKind([]byte(crdBundle), "Widget", importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Widget", g.RootName())
	root := node(t, g, g.Root())
	assert.Equal(t, "Widget", root.Name)
	assert.Equal(t, []string{"spec"}, propNames(root), "served version preferred")

	spec := node(t, g, prop(t, root, "spec").Type)
	assert.Equal(t, []string{"replicas", "port"}, propNames(spec))

	g, _, err = importer.ImportYAMLForCRDName([]byte(crdBundle), "gadgets.example.com", importer.Options{Root: "Thing"})
	require.NoError(t, err)
	assert.Equal(t, "Thing", g.RootName())

	_, _, err = importer.ImportYAMLForCRDKind([]byte(crdBundle), "Missing", importer.Options{})
	assert.ErrorContains(t, err, "CRD kind Missing not found")
}

func TestImportJSON_LegacyCRDValidation(t *testing.T) {
	doc := `{"kind": "CustomResourceDefinition", "spec": {"names": {"kind": "Old"}, "validation": {"openAPIV3Schema": {"type": "object", "properties": {"a": {"type": "boolean"}}}}}}`
	g, _, err := importer.ImportJSON([]byte(doc), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Old", g.RootName())
	assert.Equal(t, []string{"a"}, propNames(node(t, g, g.Root())))
}

type shelfBook struct {
	Title     string      `json:"title"`
	Published time.Time   `json:"published"`
	Related   []shelfBook `json:"related,omitempty"`
}

type Shelf struct {
	Name  string         `json:"name"`
	Books []shelfBook    `json:"books"`
	Tags  map[string]int `json:"tags,omitempty"`
}

func TestFromGoType(t *testing.T) {
	g, _, err := importer.FromGoType(&Shelf{}, importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Shelf", g.RootName())

	root := node(t, g, g.Root())
	require.Equal(t, typegraph.KindObject, root.Kind)
	assert.Equal(t, []string{"name", "books", "tags"}, propNames(root))
	assert.False(t, prop(t, root, "books").Optional)
	assert.True(t, prop(t, root, "tags").Optional)

	tags := node(t, g, prop(t, root, "tags").Type)
	require.Equal(t, typegraph.KindMap, tags.Kind)
	assert.Equal(t, typegraph.KindInteger, node(t, g, tags.Values).Kind)

	bookID := node(t, g, prop(t, root, "books").Type).Items
	book := node(t, g, bookID)
	require.Equal(t, typegraph.KindObject, book.Kind)
	assert.Equal(t, "date-time", node(t, g, prop(t, book, "published").Type).Format)
	assert.Equal(t, bookID, node(t, g, prop(t, book, "related").Type).Items)
}
