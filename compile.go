package typesitter

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/typesitter/grammar"
	"github.com/reoring/typesitter/internal/logutil"
	"github.com/reoring/typesitter/internal/naming"
	"github.com/reoring/typesitter/jsonschema"
	"github.com/reoring/typesitter/typegraph"
)

// Result is the output of one compilation.
type Result struct {
	// Grammar is the final grammar text with every placeholder substituted.
	Grammar string
	// Root is the fragment substituted for the root placeholder.
	Root grammar.Fragment
	// RootRule is the rule name of the root type, empty when the root is an
	// unnamed shape such as an array.
	RootRule string
	// Rules maps rule names to bodies. The root rule is only present when
	// the root type is also referenced from inside the graph.
	Rules map[string]grammar.Fragment
	// Definitions maps rule names to schemas for every named type, the root
	// included.
	Definitions map[string]*jsonschema.Schema
	// Schema is the by-product JSON Schema document: the root shape (or a
	// reference to its definition) plus all definitions.
	Schema *jsonschema.Schema
}

// RuleNames returns the names of the emitted rules in emission order.
func (r *Result) RuleNames() []string { return slices.Sorted(maps.Keys(r.Rules)) }

// SchemaJSON returns Schema as indented JSON. Map keys are written in
// sorted order and properties in declaration order.
func (r *Result) SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(r.Schema, "", "  ")
}

// Compile derives a grammar from the type graph g. Any inconsistency in g
// aborts the compilation with Issues; no partial result is returned.
func Compile(g *typegraph.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, Issues{typePath{}.Issue(CodeUnknownRoot, "nil graph")}
	}
	rootName := g.RootName()
	if rootName == "" {
		rootName = DefaultRootName
	}
	c := &compiler{
		g:        g,
		opts:     opts.withDefaults(rootName),
		rootName: rootName,
		names:    naming.New[typegraph.ID](),
		defs:     make(map[string]*jsonschema.Schema),
		active:   make(map[typegraph.ID]bool),
	}
	c.log = logutil.OrDefault(c.opts.Logger)
	return c.run()
}

type compiler struct {
	g        *typegraph.Graph
	opts     Options
	log      *slog.Logger
	rootName string

	names  *naming.Namer[typegraph.ID]
	sites  map[typegraph.ID]int
	defs   map[string]*jsonschema.Schema
	active map[typegraph.ID]bool // unnamed nodes on the synthesis stack
}

// visit is a reachable node with the path and name hint of its first use.
type visit struct {
	id   typegraph.ID
	path typePath
	hint string
}

func (c *compiler) run() (*Result, error) {
	root := c.g.Root()
	rootPath := typePath{}.Field(c.rootName)
	rn, ok := c.g.Node(root)
	if !ok {
		return nil, Issues{rootPath.Issue(CodeUnknownRoot, fmt.Sprintf("root %q (id %d) is not in the graph", c.rootName, root))}
	}
	if err := c.g.Validate(); err != nil {
		iss := rootPath.Issue(CodeInvalidGraph, err.Error())
		iss.Cause = err
		return nil, Issues{iss}
	}
	if _, err := grammar.ParseTemplate(c.opts.Template.Text()); err != nil {
		iss := typePath{}.Issue(CodeTemplate, "base template cannot hold the grammar")
		iss.Cause = err
		return nil, Issues{iss}
	}
	c.sites = c.g.CallSites()

	// Names are minted in preorder before any body is built so that
	// disambiguation never depends on synthesis order.
	order := c.walk(root, rootPath)
	for _, v := range order {
		n, _ := c.g.Node(v.id)
		if c.named(v.id, n) {
			c.names.Assign(v.id, v.hint, kindWord(n.Kind))
		}
	}

	for _, v := range order {
		n, _ := c.g.Node(v.id)
		if !c.named(v.id, n) {
			continue
		}
		name, _ := c.names.Lookup(v.id)
		s, err := c.body(v.id, n, v.path)
		if err != nil {
			return nil, err
		}
		s.Title = name
		c.defs[name] = s
		logutil.Trace(c.log, "definition", "rule", name, "kind", n.Kind, "path", v.path.Pointer())
	}

	res := &Result{
		Rules:       make(map[string]grammar.Fragment, len(c.defs)),
		Definitions: c.defs,
	}
	if c.named(root, rn) {
		name, _ := c.names.Lookup(root)
		res.RootRule = name
		if c.sites[root] > 1 {
			// The root is recursive: its rule must exist for the inner
			// references, so the root placeholder refers to it.
			res.Root = grammar.RefTo(name)
		} else {
			res.Root = c.defs[name].Grammar
		}
		res.Schema = &jsonschema.Schema{Ref: jsonschema.DefinitionsPrefix + name, Definitions: c.defs}
	} else {
		s, err := c.synth(root, rootPath)
		if err != nil {
			return nil, err
		}
		res.Root = s.Grammar
		doc := *s
		if len(c.defs) > 0 {
			doc.Definitions = c.defs
		}
		res.Schema = &doc
	}
	for name, def := range c.defs {
		if name == res.RootRule && c.sites[root] <= 1 {
			continue
		}
		res.Rules[name] = def.Grammar
	}

	d := c.opts.Dialect
	names := res.RuleNames()
	rules := make([]string, len(names))
	for i, name := range names {
		rules[i] = d.Rule(name, res.Rules[name])
	}
	res.Grammar = c.opts.Template.Execute(
		d.GrammarName(c.opts.Name),
		d.Root(res.Root),
		strings.Join(rules, d.RuleSeparator()),
	)
	c.log.Debug("compiled grammar",
		"name", c.opts.Name,
		"dialect", d.Name(),
		"root", c.rootName,
		"rules", len(rules),
		"definitions", len(c.defs),
		"required", c.opts.Required,
	)
	return res, nil
}

// walk lists the nodes reachable from root in depth first preorder.
// Properties are visited in declaration order.
func (c *compiler) walk(root typegraph.ID, rootPath typePath) []visit {
	seen := make(map[typegraph.ID]bool)
	var out []visit
	var rec func(id typegraph.ID, path typePath, hint string)
	rec = func(id typegraph.ID, path typePath, hint string) {
		n, ok := c.g.Node(id)
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		switch {
		case id == root:
			hint = c.rootName
		case n.Name != "":
			hint = n.Name
		}
		out = append(out, visit{id: id, path: path, hint: hint})
		switch n.Kind {
		case typegraph.KindArray:
			rec(n.Items, path.Field("items"), hint+"Item")
		case typegraph.KindMap:
			rec(n.Values, path.Field("additionalProperties"), hint+"Value")
		case typegraph.KindObject:
			for _, p := range n.Properties {
				rec(p.Type, path.Field(p.Name), p.Name)
			}
			if n.Additional != typegraph.NoID {
				rec(n.Additional, path.Field("additionalProperties"), hint+"Value")
			}
		case typegraph.KindUnion:
			for i, m := range n.Members {
				rec(m, path.Field("anyOf").Field(strconv.Itoa(i)), hint)
			}
		}
	}
	rec(root, rootPath, c.rootName)
	return out
}
