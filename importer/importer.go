// Package importer turns JSON Schema documents into type graphs for the
// grammar compiler. Documents may be JSON or YAML, may wrap the schema in a
// Kubernetes CustomResourceDefinition, or may be reflected from Go types.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reoring/typesitter/internal/logutil"
	"github.com/reoring/typesitter/jsonschema"
	"github.com/reoring/typesitter/typegraph"
)

var (
	// ErrUnresolvedRef is returned for a local $ref with no matching definition.
	ErrUnresolvedRef = errors.New("unresolved $ref")
	// ErrRefCycle is returned when definitions only alias each other.
	ErrRefCycle = errors.New("$ref cycle without a schema")
	// ErrUnknownRoot is returned when no root type can be found.
	ErrUnknownRoot = errors.New("unknown root definition")
)

// ImportJSON reads a JSON Schema document. A CRD or a bare
// {"openAPIV3Schema": ...} wrapper is unwrapped first, and the CRD kind
// becomes the default root name.
func ImportJSON(data []byte, opts Options) (*typegraph.Graph, Diag, error) {
	d := &simpleDiag{log: opts.Logger}
	g, err := importDocument(data, opts, d)
	return g, d, err
}

// ImportYAML reads a YAML JSON Schema document. Duplicate mapping keys are
// rejected. Only the first document of a stream is imported.
func ImportYAML(data []byte, opts Options) (*typegraph.Graph, Diag, error) {
	d := &simpleDiag{log: opts.Logger}
	docs, err := NewStrictYAMLReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, d, fmt.Errorf("importer: invalid YAML: %w", err)
	}
	if len(docs) == 0 {
		return nil, d, errors.New("importer: empty YAML stream")
	}
	if len(docs) > 1 {
		d.warnf("YAML stream holds %d documents; only the first is imported", len(docs))
	}
	g, err := importDocument(docs[0], opts, d)
	return g, d, err
}

// ImportYAMLForCRDKind scans a multi-document YAML (e.g., CRD bundle) and imports
// the first CustomResourceDefinition matching the given spec.names.kind.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (*typegraph.Graph, Diag, error) {
	return importCRD(data, opts, func(k, _ string) bool { return k == kind }, "kind "+kind)
}

// ImportYAMLForCRDName is ImportYAMLForCRDKind keyed by metadata.name.
func ImportYAMLForCRDName(data []byte, name string, opts Options) (*typegraph.Graph, Diag, error) {
	return importCRD(data, opts, func(_, n string) bool { return n == name }, "name "+name)
}

func importCRD(data []byte, opts Options, match func(kind, name string) bool, what string) (*typegraph.Graph, Diag, error) {
	d := &simpleDiag{log: opts.Logger}
	docs, err := NewStrictYAMLReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, d, fmt.Errorf("importer: invalid YAML: %w", err)
	}
	for _, doc := range docs {
		kind, name, ok := crdIdentity(doc)
		if !ok || !match(kind, name) {
			continue
		}
		g, err := importDocument(doc, opts, d)
		return g, d, err
	}
	return nil, d, fmt.Errorf("importer: CRD %s not found in YAML bundle", what)
}

// Import converts a decoded schema document.
func Import(doc *jsonschema.Schema, opts Options) (*typegraph.Graph, Diag, error) {
	d := &simpleDiag{log: opts.Logger}
	g, err := importSchema(doc, opts.withDefaults(""), d)
	return g, d, err
}

func importDocument(data []byte, opts Options, d *simpleDiag) (*typegraph.Graph, error) {
	data, kind := unwrapCRD(data)
	doc, err := jsonschema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("importer: invalid JSON schema: %w", err)
	}
	return importSchema(doc, opts.withDefaults(kind), d)
}

func importSchema(doc *jsonschema.Schema, opts Options, d *simpleDiag) (*typegraph.Graph, error) {
	if doc == nil {
		return nil, errors.New("importer: nil schema")
	}
	d.log = opts.Logger
	c := newConverter(doc, opts, d)
	root, err := c.root(doc)
	if err != nil {
		return nil, err
	}
	c.g.SetRoot(root, opts.Root)
	if err := c.g.Validate(); err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}
	c.log.Debug("imported type graph", "root", opts.Root, "nodes", c.g.Len(), "warnings", len(d.ws))
	return c.g, nil
}

const rootRef = "#"

var definitionPrefixes = []string{"#/definitions/", "#/$defs/"}

type converter struct {
	g        *typegraph.Graph
	d        *simpleDiag
	log      *slog.Logger
	rootName string

	defs     map[string]*jsonschema.Schema // by $ref
	ids      map[string]typegraph.ID       // resolved $refs
	aliasing map[string]bool
	prims    map[typegraph.Kind]typegraph.ID
}

func newConverter(doc *jsonschema.Schema, opts Options, d *simpleDiag) *converter {
	c := &converter{
		g:        typegraph.New(),
		d:        d,
		log:      opts.Logger,
		rootName: opts.Root,
		defs:     map[string]*jsonschema.Schema{rootRef: doc},
		ids:      make(map[string]typegraph.ID),
		aliasing: make(map[string]bool),
		prims:    make(map[typegraph.Kind]typegraph.ID),
	}
	for name, s := range doc.Definitions {
		c.defs[definitionPrefixes[0]+escapePointer(name)] = s
	}
	for name, s := range doc.Defs {
		c.defs[definitionPrefixes[1]+escapePointer(name)] = s
	}
	return c
}

// root picks the definition named like the root, then the document's own
// $ref, then the document itself.
func (c *converter) root(doc *jsonschema.Schema) (typegraph.ID, error) {
	for _, prefix := range definitionPrefixes {
		ref := prefix + escapePointer(c.rootName)
		if _, ok := c.defs[ref]; ok {
			return c.ref(ref)
		}
	}
	if doc.Ref != "" {
		return c.ref(doc.Ref)
	}
	if hasShape(doc) {
		return c.ref(rootRef)
	}
	return typegraph.NoID, fmt.Errorf("importer: %q: %w", c.rootName, ErrUnknownRoot)
}

// ref resolves a $ref to the node of its definition. The node is declared
// before its body is converted so that recursive references resolve to it.
func (c *converter) ref(ref string) (typegraph.ID, error) {
	if id, ok := c.ids[ref]; ok {
		return id, nil
	}
	if !strings.HasPrefix(ref, "#") {
		c.d.warnf("$ref %q not supported (local references only); treated as any", ref)
		return c.prim(typegraph.KindAny), nil
	}
	target, ok := c.defs[ref]
	if !ok {
		return typegraph.NoID, fmt.Errorf("importer: %s: %w", ref, ErrUnresolvedRef)
	}
	if target != nil && target.Ref != "" {
		if c.aliasing[ref] {
			return typegraph.NoID, fmt.Errorf("importer: %s: %w", ref, ErrRefCycle)
		}
		c.aliasing[ref] = true
		id, err := c.ref(target.Ref)
		delete(c.aliasing, ref)
		if err != nil {
			return typegraph.NoID, err
		}
		c.ids[ref] = id
		return id, nil
	}

	id := c.g.Declare()
	c.ids[ref] = id
	logutil.Trace(c.log, "resolving $ref", "ref", ref, "id", id)
	if target == nil || target.IsBool() {
		c.g.Set(id, typegraph.Primitive(typegraph.KindAny))
		return id, nil
	}
	n, err := c.node(target, c.definitionName(ref), true)
	if err != nil {
		return typegraph.NoID, err
	}
	c.g.Set(id, n)
	return id, nil
}

func (c *converter) definitionName(ref string) string {
	if ref == rootRef {
		return c.rootName
	}
	return unescapePointer(ref[strings.LastIndex(ref, "/")+1:])
}

// convert returns the node for an inline schema.
func (c *converter) convert(s *jsonschema.Schema, hint string) (typegraph.ID, error) {
	switch {
	case s == nil || s.IsTrue():
		return c.prim(typegraph.KindAny), nil
	case s.IsFalse():
		c.d.warnf("%s: false schema treated as any", hint)
		return c.prim(typegraph.KindAny), nil
	case s.Ref != "":
		return c.ref(s.Ref)
	}
	n, err := c.node(s, hint, false)
	if err != nil {
		return typegraph.NoID, err
	}
	if isLeaf(n.Kind) && n.Attributes.IsZero() {
		return c.prim(n.Kind), nil
	}
	return c.g.Add(n), nil
}

// prim returns the shared node of a leaf kind.
func (c *converter) prim(k typegraph.Kind) typegraph.ID {
	if id, ok := c.prims[k]; ok {
		return id
	}
	id := c.g.Add(typegraph.Primitive(k))
	c.prims[k] = id
	return id
}

func isLeaf(k typegraph.Kind) bool {
	switch k {
	case typegraph.KindAny, typegraph.KindNull, typegraph.KindBool,
		typegraph.KindInteger, typegraph.KindDouble, typegraph.KindString:
		return true
	}
	return false
}

// node converts s into a node value. def is set when s is the body of a
// definition, in which case hint is the definition's name.
func (c *converter) node(s *jsonschema.Schema, hint string, def bool) (typegraph.Node, error) {
	n, err := c.shape(s, hint, def)
	if err != nil {
		return typegraph.Node{}, err
	}
	if n.Attributes.IsZero() {
		n.Attributes = typegraph.Attributes{Description: s.Description, Examples: s.Examples}
	}
	return n, nil
}

func (c *converter) shape(s *jsonschema.Schema, hint string, def bool) (typegraph.Node, error) {
	name := s.Title
	if name == "" {
		name = hint
	}
	switch {
	case s.Const != nil:
		return c.enum(s, name, hint, def, []any{s.Const})
	case len(s.Enum) > 0:
		return c.enum(s, name, hint, def, s.Enum)
	case len(s.AllOf) > 0:
		return c.allOf(s, hint, def)
	case len(shapedBranches(s)) > 0 || s.IntOrString || len(s.Type) > 1:
		return c.union(s, hint, def)
	case s.Nullable && !s.HasType("null"):
		return c.union(s, hint, def)
	}
	return c.typed(s, name, hint)
}

func (c *converter) typed(s *jsonschema.Schema, name, hint string) (typegraph.Node, error) {
	t := inferType(s)
	switch t {
	case "object":
		return c.object(s, name)
	case "array":
		if len(s.PrefixItems) > 0 {
			c.d.warnf("%s: prefixItems tuples are not supported; items used instead", hint)
		}
		items, err := c.convert(s.Items, itemHint(hint))
		if err != nil {
			return typegraph.Node{}, err
		}
		return typegraph.Array(items), nil
	case "string":
		if s.Format != "" {
			if typegraph.KnownFormat(s.Format) {
				return typegraph.Transformed(s.Format), nil
			}
			c.d.warnf("%s: unknown string format %q treated as string", hint, s.Format)
		}
		return typegraph.Primitive(typegraph.KindString), nil
	case "integer":
		return typegraph.Primitive(typegraph.KindInteger), nil
	case "number":
		return typegraph.Primitive(typegraph.KindDouble), nil
	case "boolean":
		return typegraph.Primitive(typegraph.KindBool), nil
	case "null":
		return typegraph.Primitive(typegraph.KindNull), nil
	case "":
		return typegraph.Primitive(typegraph.KindAny), nil
	}
	return typegraph.Node{}, fmt.Errorf("importer: %s: unknown type %q", hint, t)
}

func inferType(s *jsonschema.Schema) string {
	switch {
	case len(s.Type) == 1:
		return s.Type[0]
	case s.Properties != nil || s.AdditionalProperties != nil || s.PatternProperties != nil || s.PreserveUnknown:
		return "object"
	case s.Items != nil || len(s.PrefixItems) > 0:
		return "array"
	}
	return ""
}

func (c *converter) object(s *jsonschema.Schema, name string) (typegraph.Node, error) {
	additional, err := c.additional(s, name)
	if err != nil {
		return typegraph.Node{}, err
	}
	if s.Properties == nil || s.Properties.Len() == 0 {
		if additional == typegraph.NoID && s.AdditionalProperties.IsFalse() {
			return typegraph.Object(name, nil, typegraph.NoID), nil
		}
		if additional == typegraph.NoID {
			additional = c.prim(typegraph.KindAny)
		}
		return typegraph.Map(additional), nil
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	props := make([]typegraph.Property, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		id, err := c.convert(pair.Value, pair.Key)
		if err != nil {
			return typegraph.Node{}, err
		}
		p := typegraph.Property{Name: pair.Key, Type: id, Optional: !required[pair.Key]}
		if pair.Value != nil {
			p.Description = pair.Value.Description
		}
		props = append(props, p)
		delete(required, pair.Key)
	}
	for _, r := range s.Required {
		if required[r] {
			c.d.warnf("%s: required property %q is not declared", name, r)
		}
	}
	return typegraph.Object(name, props, additional), nil
}

// additional returns the node of undeclared property values, or NoID when
// the object is closed. A missing additionalProperties closes the object.
func (c *converter) additional(s *jsonschema.Schema, name string) (typegraph.ID, error) {
	if s.PreserveUnknown || s.AdditionalProperties.IsTrue() {
		return c.prim(typegraph.KindAny), nil
	}
	var ids []typegraph.ID
	if ap := s.AdditionalProperties; ap != nil && !ap.IsBool() {
		id, err := c.convert(ap, name+"Value")
		if err != nil {
			return typegraph.NoID, err
		}
		ids = append(ids, id)
	}
	if s.PatternProperties != nil {
		for pair := s.PatternProperties.Oldest(); pair != nil; pair = pair.Next() {
			id, err := c.convert(pair.Value, name+"Value")
			if err != nil {
				return typegraph.NoID, err
			}
			ids = append(ids, id)
		}
	}
	ids = c.flatten(ids)
	switch len(ids) {
	case 0:
		return typegraph.NoID, nil
	case 1:
		return ids[0], nil
	}
	return c.g.Add(typegraph.Union("", ids...)), nil
}

func (c *converter) enum(s *jsonschema.Schema, name, hint string, def bool, values []any) (typegraph.Node, error) {
	var cases []string
	seen := make(map[string]bool, len(values))
	nullable := s.Nullable
	for _, v := range values {
		switch v := v.(type) {
		case string:
			if !seen[v] {
				seen[v] = true
				cases = append(cases, v)
			}
		case nil:
			nullable = true
		default:
			c.d.warnf("%s: enum value %v is not a string; enum ignored", name, v)
			rest := *s
			rest.Enum, rest.Const = nil, nil
			return c.shape(&rest, hint, def)
		}
	}
	if len(cases) == 0 {
		return typegraph.Primitive(typegraph.KindNull), nil
	}
	e := typegraph.Enum(name, cases...)
	if !nullable {
		return e, nil
	}
	return typegraph.Union("", c.g.Add(e), c.prim(typegraph.KindNull)), nil
}

// allOf merges object members into one object. Members without a shape are
// constraints only and are skipped.
func (c *converter) allOf(s *jsonschema.Schema, hint string, def bool) (typegraph.Node, error) {
	merged := &jsonschema.Schema{
		Type:        jsonschema.TypeList{"object"},
		Title:       s.Title,
		Description: s.Description,
		Examples:    s.Examples,
		Properties:  jsonschema.NewProperties(),
	}
	own := *s
	own.AllOf, own.Title, own.Description, own.Examples = nil, "", "", nil

	var others []*jsonschema.Schema
	objects := 0
	for _, part := range append(append([]*jsonschema.Schema(nil), s.AllOf...), &own) {
		p, err := c.deref(part)
		if err != nil {
			return typegraph.Node{}, err
		}
		if p == nil || !hasShape(p) {
			continue
		}
		if inferType(p) != "object" || len(shapedBranches(p)) > 0 {
			others = append(others, p)
			continue
		}
		objects++
		if p.Properties != nil {
			for pair := p.Properties.Oldest(); pair != nil; pair = pair.Next() {
				merged.Properties.Set(pair.Key, pair.Value)
			}
		}
		for _, r := range p.Required {
			if !contains(merged.Required, r) {
				merged.Required = append(merged.Required, r)
			}
		}
		if p.AdditionalProperties != nil {
			merged.AdditionalProperties = p.AdditionalProperties
		}
		if p.PatternProperties != nil {
			if merged.PatternProperties == nil {
				merged.PatternProperties = jsonschema.NewProperties()
			}
			for pair := p.PatternProperties.Oldest(); pair != nil; pair = pair.Next() {
				merged.PatternProperties.Set(pair.Key, pair.Value)
			}
		}
		merged.PreserveUnknown = merged.PreserveUnknown || p.PreserveUnknown
	}
	switch {
	case objects == 0 && len(others) == 0:
		return typegraph.Primitive(typegraph.KindAny), nil
	case objects == 0:
		if len(others) > 1 {
			c.d.warnf("%s: allOf of non-object members; only the first is used", hint)
		}
		first := *others[0]
		if first.Title == "" {
			first.Title = s.Title
		}
		return c.shape(&first, hint, def)
	case len(others) > 0:
		c.d.warnf("%s: allOf mixes object and non-object members; non-object members ignored", hint)
	}
	return c.shape(merged, hint, def)
}

// deref follows local $refs to the schema they name. Non-local references
// are reported and yield nil.
func (c *converter) deref(s *jsonschema.Schema) (*jsonschema.Schema, error) {
	for hops := 0; s != nil && s.Ref != ""; hops++ {
		if hops > len(c.defs) {
			return nil, fmt.Errorf("importer: %s: %w", s.Ref, ErrRefCycle)
		}
		if !strings.HasPrefix(s.Ref, "#") {
			c.d.warnf("$ref %q not supported (local references only); ignored", s.Ref)
			return nil, nil
		}
		target, ok := c.defs[s.Ref]
		if !ok {
			return nil, fmt.Errorf("importer: %s: %w", s.Ref, ErrUnresolvedRef)
		}
		s = target
	}
	return s, nil
}

// union converts anyOf/oneOf branches, type lists, int-or-string and
// nullable into one flattened union.
func (c *converter) union(s *jsonschema.Schema, hint string, def bool) (typegraph.Node, error) {
	var ids []typegraph.ID
	if branches := shapedBranches(s); len(branches) > 0 {
		for _, b := range branches {
			id, err := c.convert(b, hint)
			if err != nil {
				return typegraph.Node{}, err
			}
			ids = append(ids, id)
		}
	} else if s.IntOrString {
		ids = append(ids, c.prim(typegraph.KindInteger), c.prim(typegraph.KindString))
	} else {
		types := s.Type
		if len(types) == 0 {
			types = jsonschema.TypeList{inferType(s)}
		}
		for _, t := range types {
			branch := *s
			branch.Type = jsonschema.TypeList{t}
			branch.Nullable = false
			branch.Description, branch.Examples = "", nil
			if t == "" {
				branch.Type = nil
			}
			id, err := c.convert(&branch, hint)
			if err != nil {
				return typegraph.Node{}, err
			}
			ids = append(ids, id)
		}
	}
	if s.Nullable {
		ids = append(ids, c.prim(typegraph.KindNull))
	}

	ids = c.flatten(ids)
	name := s.Title
	if def && name == "" {
		name = hint
	}
	if len(ids) == 1 {
		n, _ := c.g.Node(ids[0])
		switch n.Kind {
		case typegraph.KindObject, typegraph.KindEnum, typegraph.KindUnion, typegraph.KindNone:
		default:
			return *n, nil
		}
	}
	return typegraph.Union(name, ids...), nil
}

// flatten splices anonymous unions into their parent and drops duplicates.
func (c *converter) flatten(ids []typegraph.ID) []typegraph.ID {
	out := make([]typegraph.ID, 0, len(ids))
	for _, id := range ids {
		if n, ok := c.g.Node(id); ok && n.Kind == typegraph.KindUnion && n.Name == "" && n.Attributes.IsZero() {
			out = append(out, n.Members...)
			continue
		}
		out = append(out, id)
	}
	return typegraph.Distinct(out)
}

// shapedBranches returns the anyOf and oneOf members that describe a value
// shape. Members that only add constraints, such as {"required": [...]},
// are not union members.
func shapedBranches(s *jsonschema.Schema) []*jsonschema.Schema {
	var out []*jsonschema.Schema
	for _, b := range append(append([]*jsonschema.Schema(nil), s.AnyOf...), s.OneOf...) {
		if b != nil && (b.Ref != "" || hasShape(b)) {
			out = append(out, b)
		}
	}
	return out
}

func hasShape(s *jsonschema.Schema) bool {
	if s == nil {
		return false
	}
	return s.IsBool() || s.Ref != "" || len(s.Type) > 0 || s.Properties != nil ||
		s.AdditionalProperties != nil || s.PatternProperties != nil || s.Items != nil ||
		len(s.PrefixItems) > 0 || len(s.AnyOf) > 0 || len(s.OneOf) > 0 || len(s.AllOf) > 0 ||
		len(s.Enum) > 0 || s.Const != nil || s.IntOrString || s.PreserveUnknown
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string   { return pointerEscaper.Replace(s) }
func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }
