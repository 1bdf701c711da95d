// Package typegraph defines the type graph consumed by the grammar compiler.
//
// A Graph is an arena of nodes addressed by ID. Edges between nodes are IDs,
// never pointers, so recursive and shared types are plain index lookups and a
// Graph may be cyclic without any special handling by its producer.
package typegraph

import (
	"errors"
	"fmt"
)

// Kind identifies a node variant.
type Kind int

const (
	// KindNone is the zero value. It marks a node that was declared but never
	// defined and must not reach the compiler.
	KindNone Kind = iota
	KindAny
	KindNull
	KindBool
	KindInteger
	KindDouble
	KindString
	KindTransformedString
	KindArray
	KindMap
	KindObject
	KindEnum
	KindUnion
)

var kindNames = [...]string{
	KindNone:              "none",
	KindAny:               "any",
	KindNull:              "null",
	KindBool:              "bool",
	KindInteger:           "integer",
	KindDouble:            "double",
	KindString:            "string",
	KindTransformedString: "transformed-string",
	KindArray:             "array",
	KindMap:               "map",
	KindObject:            "object",
	KindEnum:              "enum",
	KindUnion:             "union",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ID addresses a node in a Graph. The zero value NoID means "absent".
type ID int

const NoID ID = 0

// Property is a declared object member.
type Property struct {
	Name        string
	Type        ID
	Optional    bool
	Description string
}

// Attributes carries descriptive metadata that never affects the grammar.
type Attributes struct {
	Description string
	Examples    []any
}

// IsZero reports whether no attribute is set.
func (a Attributes) IsZero() bool { return a.Description == "" && len(a.Examples) == 0 }

// Node is a single type in the graph. Which fields are meaningful depends on
// Kind; the constructors below fill the relevant ones.
type Node struct {
	Kind Kind
	// Name is the source identifier of a named type (object, enum, union).
	// For other kinds it is only a naming hint.
	Name string
	// Format is the refinement of a transformed string (e.g. "date-time").
	Format string

	Items      ID         // array
	Values     ID         // map
	Properties []Property // object, in declaration order
	Additional ID         // object; NoID when closed
	Cases      []string   // enum, in source order
	Members    []ID       // union

	Attributes Attributes
}

// Primitive returns a leaf node of the given kind.
func Primitive(k Kind) Node { return Node{Kind: k} }

// Transformed returns a string node refined by format.
func Transformed(format string) Node { return Node{Kind: KindTransformedString, Format: format} }

// Array returns an array node.
func Array(items ID) Node { return Node{Kind: KindArray, Items: items} }

// Map returns an open mapping with string keys and uniform values.
func Map(values ID) Node { return Node{Kind: KindMap, Values: values} }

// Object returns a named record node.
func Object(name string, props []Property, additional ID) Node {
	return Node{Kind: KindObject, Name: name, Properties: props, Additional: additional}
}

// Enum returns a named closed string enumeration.
func Enum(name string, cases ...string) Node { return Node{Kind: KindEnum, Name: name, Cases: cases} }

// Union returns a union of members.
func Union(name string, members ...ID) Node { return Node{Kind: KindUnion, Name: name, Members: members} }

// ErrDanglingID is returned by Validate when an edge points outside the arena.
var ErrDanglingID = errors.New("typegraph: dangling node id")

// ErrNoRoot is returned by Validate when no root was designated.
var ErrNoRoot = errors.New("typegraph: root not set")

// Graph is an arena of nodes plus a root designation.
type Graph struct {
	nodes    []Node
	root     ID
	rootName string
}

// New returns an empty graph.
func New() *Graph { return &Graph{} }

// Add appends n and returns its ID.
func (g *Graph) Add(n Node) ID {
	g.nodes = append(g.nodes, n)
	return ID(len(g.nodes))
}

// Declare reserves an ID whose node is defined later with Set. Until then
// the node has KindNone.
func (g *Graph) Declare() ID { return g.Add(Node{}) }

// Set replaces the node stored at id.
func (g *Graph) Set(id ID, n Node) {
	if !g.valid(id) {
		panic(fmt.Sprintf("typegraph: Set on invalid id %d", id))
	}
	g.nodes[id-1] = n
}

// Node returns the node at id.
func (g *Graph) Node(id ID) (*Node, bool) {
	if !g.valid(id) {
		return nil, false
	}
	return &g.nodes[id-1], true
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// SetRoot designates the root type and its display name.
func (g *Graph) SetRoot(id ID, name string) {
	g.root = id
	g.rootName = name
}

func (g *Graph) Root() ID         { return g.root }
func (g *Graph) RootName() string { return g.rootName }

func (g *Graph) valid(id ID) bool { return id > 0 && int(id) <= len(g.nodes) }

// Children returns the outgoing edges of n in a stable order: items, values,
// properties in declaration order, additional properties, union members.
func Children(n *Node) []ID {
	var out []ID
	switch n.Kind {
	case KindArray:
		out = append(out, n.Items)
	case KindMap:
		out = append(out, n.Values)
	case KindObject:
		for _, p := range n.Properties {
			out = append(out, p.Type)
		}
		if n.Additional != NoID {
			out = append(out, n.Additional)
		}
	case KindUnion:
		out = append(out, n.Members...)
	}
	return out
}

// Validate checks that the root is set and every edge points at a node.
func (g *Graph) Validate() error {
	if g.root == NoID {
		return ErrNoRoot
	}
	if !g.valid(g.root) {
		return fmt.Errorf("%w: root %d", ErrDanglingID, g.root)
	}
	for i := range g.nodes {
		for _, c := range Children(&g.nodes[i]) {
			if !g.valid(c) {
				return fmt.Errorf("%w: %d referenced from %d (%s)", ErrDanglingID, c, i+1, g.nodes[i].Kind)
			}
		}
	}
	return nil
}

// Reachable returns the nodes reachable from the root in depth-first
// preorder. It terminates on cyclic graphs.
func (g *Graph) Reachable() []ID {
	if !g.valid(g.root) {
		return nil
	}
	seen := make(map[ID]bool, len(g.nodes))
	var order []ID
	var walk func(ID)
	walk = func(id ID) {
		if seen[id] || !g.valid(id) {
			return
		}
		seen[id] = true
		order = append(order, id)
		for _, c := range Children(&g.nodes[id-1]) {
			walk(c)
		}
	}
	walk(g.root)
	return order
}

// CallSites counts, for every reachable node, the edges pointing at it from
// reachable nodes. The root counts one extra site.
func (g *Graph) CallSites() map[ID]int {
	sites := make(map[ID]int)
	for _, id := range g.Reachable() {
		for _, c := range Children(&g.nodes[id-1]) {
			sites[c]++
		}
	}
	if g.valid(g.root) {
		sites[g.root]++
	}
	return sites
}

// Distinct returns ids with duplicates removed, keeping first occurrences.
func Distinct(ids []ID) []ID {
	seen := make(map[ID]bool, len(ids))
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
