package typesitter

import (
	"fmt"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/typesitter/grammar"
	"github.com/reoring/typesitter/jsonschema"
	"github.com/reoring/typesitter/typegraph"
)

// synth returns the schema of the node at id. Named nodes become references;
// their bodies are built once by definition.
func (c *compiler) synth(id typegraph.ID, path typePath) (*jsonschema.Schema, error) {
	n, ok := c.g.Node(id)
	if !ok {
		return nil, Issues{path.Issue(CodeInvalidGraph, fmt.Sprintf("node %d is not in the graph", id))}
	}
	if c.named(id, n) {
		return c.ref(id, n), nil
	}
	if c.active[id] {
		return nil, Issues{path.Issue(CodeAnonymousCycle,
			fmt.Sprintf("%s node %d contains itself without passing through an object, enum or shared union", n.Kind, id))}
	}
	c.active[id] = true
	defer delete(c.active, id)
	return c.body(id, n, path)
}

// named reports whether n gets its own rule.
func (c *compiler) named(id typegraph.ID, n *typegraph.Node) bool {
	switch n.Kind {
	case typegraph.KindObject, typegraph.KindEnum:
		return true
	case typegraph.KindUnion:
		return id == c.g.Root() || c.sites[id] > 1
	}
	return false
}

func (c *compiler) ref(id typegraph.ID, n *typegraph.Node) *jsonschema.Schema {
	name, ok := c.names.Lookup(id)
	if !ok {
		name = c.names.Assign(id, n.Name, kindWord(n.Kind))
	}
	return &jsonschema.Schema{Ref: jsonschema.DefinitionsPrefix + name, Grammar: grammar.RefTo(name)}
}

// body synthesizes the shape of n itself, never a reference to it.
func (c *compiler) body(id typegraph.ID, n *typegraph.Node, path typePath) (*jsonschema.Schema, error) {
	var (
		s   *jsonschema.Schema
		err error
	)
	switch n.Kind {
	case typegraph.KindAny:
		s = &jsonschema.Schema{Grammar: grammar.Any}
	case typegraph.KindNull:
		s = leaf("null", grammar.Null)
	case typegraph.KindBool:
		s = leaf("boolean", grammar.Bool)
	case typegraph.KindInteger:
		s = leaf("integer", grammar.Number)
	case typegraph.KindDouble:
		s = leaf("number", grammar.Number)
	case typegraph.KindString:
		s = leaf("string", grammar.String)
	case typegraph.KindTransformedString:
		format, ok := typegraph.SchemaFormat(n.Format)
		if !ok {
			return nil, Issues{path.Issue(CodeUnknownFormat, fmt.Sprintf("unknown transformed string kind %q", n.Format))}
		}
		s = leaf("string", grammar.String)
		s.Format = format
	case typegraph.KindArray:
		s, err = c.array(n, path)
	case typegraph.KindMap:
		s, err = c.mapping(n, path)
	case typegraph.KindObject:
		s, err = c.object(n, path)
	case typegraph.KindEnum:
		s, err = enum(n, path)
	case typegraph.KindUnion:
		s, err = c.union(id, n, path)
	case typegraph.KindNone:
		return nil, Issues{path.Issue(CodeUnresolvedType, "placeholder node reached the compiler")}
	default:
		return nil, Issues{path.Issue(CodeUnresolvedType, "unknown node kind "+n.Kind.String())}
	}
	if err != nil {
		return nil, err
	}
	applyAttributes(s, n.Attributes)
	return s, nil
}

func leaf(typ string, g grammar.Fragment) *jsonschema.Schema {
	return &jsonschema.Schema{Type: jsonschema.TypeList{typ}, Grammar: g}
}

var (
	lbrace = grammar.Lit("{")
	rbrace = grammar.Lit("}")
	comma  = grammar.Lit(",")
)

func emptyObject() grammar.Fragment { return grammar.Sequence(lbrace, rbrace) }

func (c *compiler) array(n *typegraph.Node, path typePath) (*jsonschema.Schema, error) {
	items, err := c.synth(n.Items, path.Field("items"))
	if err != nil {
		return nil, err
	}
	return &jsonschema.Schema{
		Type:    jsonschema.TypeList{"array"},
		Items:   items,
		Grammar: grammar.Sequence(grammar.Lit("["), grammar.CommaSep(items.Grammar), grammar.Lit("]")),
	}, nil
}

func (c *compiler) mapping(n *typegraph.Node, path typePath) (*jsonschema.Schema, error) {
	values, err := c.synth(n.Values, path.Field("additionalProperties"))
	if err != nil {
		return nil, err
	}
	pairs := grammar.Sequence(lbrace, grammar.CommaSep(grammar.Pair(grammar.String, values.Grammar)), rbrace)
	return &jsonschema.Schema{
		Type:                 jsonschema.TypeList{"object"},
		AdditionalProperties: values,
		Grammar:              grammar.OneOf(emptyObject(), pairs),
	}, nil
}

func (c *compiler) object(n *typegraph.Node, path typePath) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Type: jsonschema.TypeList{"object"}}
	var (
		alts     []grammar.Fragment // every pair in declaration order, optional ones wrapped
		required []grammar.Fragment
		others   []grammar.Fragment // optional and additional pairs, unwrapped
	)
	if len(n.Properties) > 0 {
		s.Properties = jsonschema.NewProperties()
	}
	for _, p := range n.Properties {
		ps, err := c.synth(p.Type, path.Field(p.Name))
		if err != nil {
			return nil, err
		}
		if ps.Description == "" {
			ps.Description = p.Description
		}
		pair := grammar.Pair(grammar.Lit(quote(p.Name)), ps.Grammar)
		if p.Optional {
			alts = append(alts, grammar.Opt(pair))
			others = append(others, pair)
		} else {
			alts = append(alts, pair)
			required = append(required, pair)
			s.Required = append(s.Required, p.Name)
		}
		s.Properties.Set(p.Name, ps)
	}
	slices.Sort(s.Required)

	if n.Additional != typegraph.NoID {
		as, err := c.synth(n.Additional, path.Field("additionalProperties"))
		if err != nil {
			return nil, err
		}
		pair := grammar.Pair(grammar.String, as.Grammar)
		alts = append(alts, pair)
		others = append(others, pair)
		s.AdditionalProperties = as
	} else {
		s.AdditionalProperties = jsonschema.Bool(false)
	}

	if c.opts.Required == RequiredOrdered && len(required) > 0 {
		s.Grammar = orderedObject(required, others)
	} else {
		s.Grammar = lenientObject(alts, len(required) > 0)
	}
	return s, nil
}

// lenientObject accepts any comma separated list of the alternatives.
func lenientObject(alts []grammar.Fragment, hasRequired bool) grammar.Fragment {
	var body grammar.Fragment
	switch len(alts) {
	case 0:
		body = grammar.Object
	case 1:
		body = grammar.Sequence(lbrace, grammar.CommaSep1(grammar.Sequence(alts[0])), rbrace)
	default:
		body = grammar.Sequence(lbrace, grammar.CommaSep(grammar.OneOf(alts...)), rbrace)
	}
	if !hasRequired {
		body = grammar.OneOf(emptyObject(), body)
	}
	return body
}

// orderedObject requires every pair of required, in order, and allows any
// number of others around them.
//
//	{ (O ",")* r1 ("," O)* "," r2 ("," O)* ... }
func orderedObject(required, others []grammar.Fragment) grammar.Fragment {
	parts := []grammar.Fragment{lbrace}
	var other grammar.Fragment
	if len(others) > 0 {
		other = grammar.OneOf(others...)
		parts = append(parts, grammar.Many(grammar.Sequence(other, comma)))
	}
	for i, r := range required {
		if i > 0 {
			parts = append(parts, comma)
		}
		parts = append(parts, r)
		if other != nil {
			parts = append(parts, grammar.Many(grammar.Sequence(comma, other)))
		}
	}
	return grammar.Sequence(append(parts, rbrace)...)
}

func enum(n *typegraph.Node, path typePath) (*jsonschema.Schema, error) {
	if len(n.Cases) == 0 {
		return nil, Issues{path.Issue(CodeEmptyEnum, fmt.Sprintf("enum %q has no cases", n.Name))}
	}
	lits := make([]grammar.Fragment, len(n.Cases))
	values := make([]any, len(n.Cases))
	for i, v := range n.Cases {
		lits[i] = grammar.Lit(quote(v))
		values[i] = v
	}
	return &jsonschema.Schema{
		Type:    jsonschema.TypeList{"string"},
		Enum:    values,
		Grammar: grammar.OneOf(lits...),
	}, nil
}

// union implements makeUnionOf: a single distinct member stands for the
// whole union, otherwise the members become alternatives. A union listing
// itself as a member adds no alternative, so that member is dropped.
func (c *compiler) union(id typegraph.ID, n *typegraph.Node, path typePath) (*jsonschema.Schema, error) {
	members := slices.DeleteFunc(typegraph.Distinct(n.Members), func(m typegraph.ID) bool { return m == id })
	switch len(members) {
	case 0:
		if len(n.Members) > 0 {
			return nil, Issues{path.Issue(CodeEmptyUnion, "union has no members besides itself")}
		}
		return nil, Issues{path.Issue(CodeEmptyUnion, "union has no members")}
	case 1:
		return c.synth(members[0], path)
	}
	s := &jsonschema.Schema{}
	var alts []grammar.Fragment
	seen := make(map[string]bool, len(members))
	for i, m := range members {
		ms, err := c.synth(m, path.Field("anyOf").Field(strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		s.AnyOf = append(s.AnyOf, ms)
		// integer and double members both parse as number
		if text := ms.Grammar.String(); !seen[text] {
			seen[text] = true
			alts = append(alts, ms.Grammar)
		}
	}
	s.Grammar = grammar.OneOf(alts...)
	return s, nil
}

// quote returns s as a JSON string literal.
func quote(s string) string {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

func kindWord(k typegraph.Kind) string {
	switch k {
	case typegraph.KindObject:
		return "Object"
	case typegraph.KindEnum:
		return "Enum"
	case typegraph.KindUnion:
		return "Union"
	}
	return "Type"
}
