package dsl

import "github.com/reoring/typesitter/typegraph"

func primitive(k typegraph.Kind) Type {
	return func(b *Builder) typegraph.ID { return b.g.Add(typegraph.Primitive(k)) }
}

// Primitives. Every evaluation creates a fresh leaf node.
func Any() Type     { return primitive(typegraph.KindAny) }
func Null() Type    { return primitive(typegraph.KindNull) }
func Bool() Type    { return primitive(typegraph.KindBool) }
func Integer() Type { return primitive(typegraph.KindInteger) }
func Double() Type  { return primitive(typegraph.KindDouble) }
func String() Type  { return primitive(typegraph.KindString) }

// Format returns a string refined by kind, e.g. "date-time" or "uuid".
func Format(kind string) Type {
	return func(b *Builder) typegraph.ID { return b.g.Add(typegraph.Transformed(kind)) }
}

// ArrayOf returns an array of items.
func ArrayOf(items Type) Type {
	return func(b *Builder) typegraph.ID {
		it := items(b)
		return b.g.Add(typegraph.Array(it))
	}
}

// MapOf returns an open mapping from string keys to values.
func MapOf(values Type) Type {
	return func(b *Builder) typegraph.ID {
		v := values(b)
		return b.g.Add(typegraph.Map(v))
	}
}

// Enum returns a named string enumeration. Using the returned Type more
// than once refers to the same enum.
func Enum(name string, cases ...string) Type {
	key := new(byte)
	return func(b *Builder) typegraph.ID {
		return b.once(key, func() typegraph.ID { return b.define(name, typegraph.Enum(name, cases...)) })
	}
}

// Union returns a union of members. An empty name makes the union anonymous;
// a named union can also be reached with Ref. Using the returned Type more
// than once refers to the same union.
func Union(name string, members ...Type) Type {
	key := new(byte)
	return func(b *Builder) typegraph.ID {
		return b.once(key, func() typegraph.ID {
			var id typegraph.ID
			if name != "" {
				// register first so members may refer back to the union
				id = b.lookup(name)
			}
			ids := make([]typegraph.ID, len(members))
			for i, m := range members {
				ids[i] = m(b)
			}
			n := typegraph.Union(name, ids...)
			if name == "" {
				return b.g.Add(n)
			}
			if !b.forward[name] {
				b.errs = append(b.errs, errDefinedTwice(name))
				return id
			}
			return b.define(name, n)
		})
	}
}

// Nullable returns the union of t and null.
func Nullable(t Type) Type { return Union("", t, Null()) }

// Ref refers to the named type name, which may be defined later.
func Ref(name string) Type {
	return func(b *Builder) typegraph.ID { return b.lookup(name) }
}

// Describe attaches a description and examples to the node t evaluates to.
func Describe(t Type, text string, examples ...any) Type {
	return func(b *Builder) typegraph.ID {
		id := t(b)
		if n, ok := b.g.Node(id); ok {
			if text != "" {
				n.Attributes.Description = text
			}
			if len(examples) > 0 {
				n.Attributes.Examples = append(n.Attributes.Examples, examples...)
			}
		}
		return id
	}
}
