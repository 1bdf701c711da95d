// Package grammar is the fragment algebra the compiler emits grammar text
// with. Fragments are small immutable values; a Dialect renders them as text
// for a concrete grammar tool.
package grammar

// Fragment is a piece of a grammar rule body.
type Fragment interface {
	fragment()
	String() string
}

// Literal is a quoted terminal.
type Literal struct{ Text string }

// Ref refers to a rule produced by the compiler, by rule name.
type Ref struct{ Name string }

// Builtin refers to a rule declared by the base template.
type Builtin struct{ Name string }

// Seq matches its parts in order.
type Seq struct{ Parts []Fragment }

// Choice matches exactly one alternative.
type Choice struct{ Alts []Fragment }

// Optional matches its body or nothing.
type Optional struct{ Body Fragment }

// Repeat matches its body zero or more times.
type Repeat struct{ Body Fragment }

func (Literal) fragment()  {}
func (Ref) fragment()      {}
func (Builtin) fragment()  {}
func (Seq) fragment()      {}
func (Choice) fragment()   {}
func (Optional) fragment() {}
func (Repeat) fragment()   {}

// String renders the fragment in the tree-sitter dialect.
func (f Literal) String() string  { return TreeSitter.Render(f) }
func (f Ref) String() string      { return TreeSitter.Render(f) }
func (f Builtin) String() string  { return TreeSitter.Render(f) }
func (f Seq) String() string      { return TreeSitter.Render(f) }
func (f Choice) String() string   { return TreeSitter.Render(f) }
func (f Optional) String() string { return TreeSitter.Render(f) }
func (f Repeat) String() string   { return TreeSitter.Render(f) }

// Rules every base template declares.
var (
	Any    Fragment = Builtin{Name: "any"}
	Null   Fragment = Builtin{Name: "null"}
	Bool   Fragment = Builtin{Name: "bool"}
	Number Fragment = Builtin{Name: "number"}
	String Fragment = Builtin{Name: "string"}
	Object Fragment = Builtin{Name: "object"}
	Array  Fragment = Builtin{Name: "array"}
)

// Lit returns a terminal.
func Lit(text string) Fragment { return Literal{Text: text} }

// RefTo returns a reference to the rule with the given name.
func RefTo(name string) Fragment { return Ref{Name: name} }

// Sequence returns the ordered concatenation of parts.
func Sequence(parts ...Fragment) Fragment { return Seq{Parts: parts} }

// OneOf returns a choice between alts. A single alternative is returned as
// is. It panics without alternatives.
func OneOf(alts ...Fragment) Fragment {
	switch len(alts) {
	case 0:
		panic("grammar: choice requires at least one alternative")
	case 1:
		return alts[0]
	}
	return Choice{Alts: alts}
}

// Opt makes the sequence of parts optional.
func Opt(parts ...Fragment) Fragment {
	if len(parts) == 1 {
		return Optional{Body: parts[0]}
	}
	return Optional{Body: Seq{Parts: parts}}
}

// Many matches g zero or more times.
func Many(g Fragment) Fragment { return Repeat{Body: g} }

// CommaSep matches zero or more comma separated g.
func CommaSep(g Fragment) Fragment { return Optional{Body: CommaSep1(g)} }

// CommaSep1 matches one or more comma separated g.
func CommaSep1(g Fragment) Fragment {
	return Seq{Parts: []Fragment{g, Repeat{Body: Seq{Parts: []Fragment{Lit(","), g}}}}}
}

// Pair matches key ":" value.
func Pair(key, value Fragment) Fragment { return Seq{Parts: []Fragment{key, Lit(":"), value}} }
