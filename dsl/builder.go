package dsl

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/reoring/typesitter/typegraph"
)

// Builder accumulates a type graph. Named types are registered by name and
// may be referenced with Ref before they are defined.
type Builder struct {
	g       *typegraph.Graph
	named   map[string]typegraph.ID
	forward map[string]bool // referenced, not yet defined
	memo    map[*byte]typegraph.ID
	errs    []error
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{
		g:       typegraph.New(),
		named:   map[string]typegraph.ID{},
		forward: map[string]bool{},
		memo:    map[*byte]typegraph.ID{},
	}
}

// Type is a type expression. It is evaluated against a Builder when it is
// attached to a field, an array, a map or a union.
type Type func(b *Builder) typegraph.ID

// ID evaluates t in b.
func (b *Builder) ID(t Type) typegraph.ID { return t(b) }

// once evaluates build a single time per key, so that a Type value used in
// several places denotes one shared node.
func (b *Builder) once(key *byte, build func() typegraph.ID) typegraph.ID {
	if id, ok := b.memo[key]; ok {
		return id
	}
	id := build()
	b.memo[key] = id
	return id
}

// define registers a named node, filling a forward declaration if one exists.
func (b *Builder) define(name string, n typegraph.Node) typegraph.ID {
	if id, ok := b.named[name]; ok {
		if !b.forward[name] {
			b.errs = append(b.errs, errDefinedTwice(name))
			return id
		}
		delete(b.forward, name)
		if prev, ok := b.g.Node(id); ok && n.Attributes.IsZero() {
			// keep attributes attached through an earlier Ref
			n.Attributes = prev.Attributes
		}
		b.g.Set(id, n)
		return id
	}
	id := b.g.Add(n)
	b.named[name] = id
	return id
}

func errDefinedTwice(name string) error { return fmt.Errorf("dsl: type %q defined twice", name) }

// lookup returns the node registered under name, declaring it when unknown.
func (b *Builder) lookup(name string) typegraph.ID {
	if id, ok := b.named[name]; ok {
		return id
	}
	id := b.g.Declare()
	b.named[name] = id
	b.forward[name] = true
	return id
}

func (b *Builder) check() error {
	for _, name := range slices.Sorted(maps.Keys(b.forward)) {
		b.errs = append(b.errs, fmt.Errorf("dsl: type %q referenced but never defined", name))
	}
	b.forward = map[string]bool{}
	return errors.Join(b.errs...)
}

// Build resolves forward references and returns the graph rooted at the
// named type root.
func (b *Builder) Build(root string) (*typegraph.Graph, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	id, ok := b.named[root]
	if !ok {
		return nil, fmt.Errorf("dsl: root type %q is not defined", root)
	}
	b.g.SetRoot(id, root)
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}

// BuildType returns the graph rooted at the shape t, displayed as name. Use
// it for roots that are not named types, such as arrays or maps.
func (b *Builder) BuildType(name string, t Type) (*typegraph.Graph, error) {
	id := t(b)
	if err := b.check(); err != nil {
		return nil, err
	}
	b.g.SetRoot(id, name)
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild(root string) *typegraph.Graph {
	g, err := b.Build(root)
	if err != nil {
		panic(err)
	}
	return g
}
