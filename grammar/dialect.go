package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect renders fragments and rules for one grammar tool.
type Dialect interface {
	// Name identifies the dialect ("tree-sitter", "gbnf").
	Name() string
	// Render returns the text of f.
	Render(f Fragment) string
	// Rule returns the definition of the named rule with the given body.
	Rule(name string, body Fragment) string
	// RuleSeparator joins rule definitions.
	RuleSeparator() string
	// Root returns the text substituted for the root placeholder.
	Root(body Fragment) string
	// GrammarName returns the text substituted for the name placeholder.
	GrammarName(name string) string
	// BaseTemplate returns the embedded default template.
	BaseTemplate() *Template
}

// Dialects available by name.
var (
	TreeSitter Dialect = treeSitter{}
	GBNF       Dialect = gbnf{}
)

// DialectByName looks up a dialect by its Name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "", TreeSitter.Name():
		return TreeSitter, nil
	case GBNF.Name():
		return GBNF, nil
	}
	return nil, fmt.Errorf("grammar: unknown dialect %q", name)
}

type treeSitter struct{}

func (treeSitter) Name() string { return "tree-sitter" }

func (d treeSitter) Render(f Fragment) string {
	var b strings.Builder
	d.write(&b, f)
	return b.String()
}

func (d treeSitter) write(b *strings.Builder, f Fragment) {
	switch f := f.(type) {
	case Literal:
		b.WriteByte('`')
		b.WriteString(escapeTemplateLiteral(f.Text))
		b.WriteByte('`')
	case Ref:
		b.WriteString("$._ref")
		b.WriteString(f.Name)
	case Builtin:
		b.WriteString("$.")
		b.WriteString(f.Name)
	case Seq:
		d.call(b, "seq", f.Parts)
	case Choice:
		d.call(b, "choice", f.Alts)
	case Optional:
		d.call(b, "optional", []Fragment{f.Body})
	case Repeat:
		d.call(b, "repeat", []Fragment{f.Body})
	default:
		panic(fmt.Sprintf("grammar: unknown fragment %T", f))
	}
}

func (d treeSitter) call(b *strings.Builder, fn string, args []Fragment) {
	b.WriteString(fn)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		d.write(b, a)
	}
	b.WriteByte(')')
}

func (d treeSitter) Rule(name string, body Fragment) string {
	return "_ref" + name + ": ($) => " + d.Render(body)
}

func (treeSitter) RuleSeparator() string { return ",\n    " }

func (d treeSitter) Root(body Fragment) string { return "($) => " + d.Render(body) }

func (treeSitter) GrammarName(name string) string { return strconv.Quote(name) }

func (treeSitter) BaseTemplate() *Template { return treeSitterTemplate }

// escapeTemplateLiteral escapes text for a JavaScript template literal.
func escapeTemplateLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '`':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

type gbnf struct{}

// gbnfBuiltins maps builtin rule names to the names in the GBNF template.
var gbnfBuiltins = map[string]string{
	"any":  "value",
	"bool": "boolean",
}

func (gbnf) Name() string { return "gbnf" }

func (d gbnf) Render(f Fragment) string {
	var b strings.Builder
	d.write(&b, f)
	return b.String()
}

func (d gbnf) write(b *strings.Builder, f Fragment) {
	switch f := f.(type) {
	case Literal:
		b.WriteString(quoteGBNF(f.Text))
	case Ref:
		b.WriteString("ref-")
		b.WriteString(f.Name)
	case Builtin:
		if n, ok := gbnfBuiltins[f.Name]; ok {
			b.WriteString(n)
		} else {
			b.WriteString(f.Name)
		}
	case Seq:
		for i, p := range f.Parts {
			if i > 0 {
				b.WriteByte(' ')
			}
			d.write(b, p)
		}
	case Choice:
		b.WriteByte('(')
		for i, a := range f.Alts {
			if i > 0 {
				b.WriteString(" | ")
			}
			d.write(b, a)
		}
		b.WriteByte(')')
	case Optional:
		b.WriteByte('(')
		d.write(b, f.Body)
		b.WriteString(")?")
	case Repeat:
		b.WriteByte('(')
		d.write(b, f.Body)
		b.WriteString(")*")
	default:
		panic(fmt.Sprintf("grammar: unknown fragment %T", f))
	}
}

func (d gbnf) Rule(name string, body Fragment) string {
	return "ref-" + name + " ::= " + d.Render(body)
}

func (gbnf) RuleSeparator() string { return "\n" }

func (d gbnf) Root(body Fragment) string { return d.Render(body) }

func (gbnf) GrammarName(name string) string { return strings.ReplaceAll(name, "\n", " ") }

func (gbnf) BaseTemplate() *Template { return gbnfTemplate }

// quoteGBNF quotes s as a GBNF string terminal.
func quoteGBNF(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
