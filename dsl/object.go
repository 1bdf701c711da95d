package dsl

import (
	"fmt"

	"github.com/reoring/typesitter/typegraph"
)

type objectBuilder struct {
	b    *Builder
	id   typegraph.ID
	node typegraph.Node
}

type fieldStep struct {
	o   *objectBuilder
	idx int
}

// Object defines the named object type name. Fields are required unless
// marked Optional.
func (b *Builder) Object(name string) *objectBuilder {
	o := &objectBuilder{b: b, node: typegraph.Object(name, nil, typegraph.NoID)}
	o.id = b.define(name, o.node)
	if n, ok := b.g.Node(o.id); ok && n.Kind == typegraph.KindObject {
		o.node = *n
	}
	return o
}

// commit stores the current node in the graph.
func (o *objectBuilder) commit() { o.b.g.Set(o.id, o.node) }

// resolve evaluates t and picks up any change it made to this object's node,
// such as attributes set through Describe(o.Type(), ...).
func (o *objectBuilder) resolve(t Type) typegraph.ID {
	id := t(o.b)
	if n, ok := o.b.g.Node(o.id); ok && n.Kind == typegraph.KindObject {
		o.node = *n
	}
	return id
}

// Type refers to the object being built.
func (o *objectBuilder) Type() Type {
	return func(*Builder) typegraph.ID { return o.id }
}

// Field appends a property. Properties keep declaration order.
func (o *objectBuilder) Field(name string, t Type) *fieldStep {
	id := o.resolve(t)
	o.node.Properties = append(o.node.Properties, typegraph.Property{Name: name, Type: id})
	o.commit()
	return &fieldStep{o: o, idx: len(o.node.Properties) - 1}
}

// Additional allows keys beyond the declared properties, with values of t.
func (o *objectBuilder) Additional(t Type) *objectBuilder {
	o.node.Additional = o.resolve(t)
	o.commit()
	return o
}

// Require marks the named properties as required.
func (o *objectBuilder) Require(names ...string) *objectBuilder {
	for _, name := range names {
		found := false
		for i := range o.node.Properties {
			if o.node.Properties[i].Name == name {
				o.node.Properties[i].Optional = false
				found = true
			}
		}
		if !found {
			o.b.errs = append(o.b.errs, fmt.Errorf("dsl: %s has no field %q", o.node.Name, name))
		}
	}
	o.commit()
	return o
}

// Describe sets the object's description.
func (o *objectBuilder) Describe(text string) *objectBuilder {
	o.node.Attributes.Description = text
	o.commit()
	return o
}

// Examples appends example values of the object.
func (o *objectBuilder) Examples(v ...any) *objectBuilder {
	o.node.Attributes.Examples = append(o.node.Attributes.Examples, v...)
	o.commit()
	return o
}

// Optional marks the field as optional and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	f.o.node.Properties[f.idx].Optional = true
	f.o.commit()
	return f.o
}

// Required marks the field as required (default) and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.o.node.Properties[f.idx].Optional = false
	f.o.commit()
	return f.o
}

// Describe sets the field's description.
func (f *fieldStep) Describe(text string) *fieldStep {
	f.o.node.Properties[f.idx].Description = text
	f.o.commit()
	return f
}

func (f *fieldStep) Field(name string, t Type) *fieldStep   { return f.o.Field(name, t) }
func (f *fieldStep) Additional(t Type) *objectBuilder       { return f.o.Additional(t) }
func (f *fieldStep) Require(names ...string) *objectBuilder { return f.o.Require(names...) }
func (f *fieldStep) Type() Type                             { return f.o.Type() }
func (f *fieldStep) Examples(v ...any) *objectBuilder       { return f.o.Examples(v...) }
func (f *fieldStep) Build() (*typegraph.Graph, error)       { return f.o.b.Build(f.o.node.Name) }
func (o *objectBuilder) Build() (*typegraph.Graph, error)   { return o.b.Build(o.node.Name) }
func (o *objectBuilder) MustBuild() *typegraph.Graph        { return o.b.MustBuild(o.node.Name) }
func (f *fieldStep) MustBuild() *typegraph.Graph            { return f.o.MustBuild() }
