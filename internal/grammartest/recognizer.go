// Package grammartest checks generated grammars against sample documents in
// tests. It interprets fragments directly with a backtracking matcher; the
// builtin rules are matched as JSON values of the corresponding kind.
package grammartest

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/reoring/typesitter/grammar"
)

// Recognizer decides whether a text is derivable from a root fragment.
type Recognizer struct {
	root  grammar.Fragment
	rules map[string]grammar.Fragment
}

// New returns a recognizer for root, resolving references through rules.
func New(root grammar.Fragment, rules map[string]grammar.Fragment) *Recognizer {
	return &Recognizer{root: root, rules: rules}
}

// Rule returns a recognizer for the named rule.
func (r *Recognizer) Rule(name string) *Recognizer {
	return &Recognizer{root: grammar.RefTo(name), rules: r.rules}
}

// Accepts reports whether the whole input matches. Whitespace is allowed
// between tokens.
func (r *Recognizer) Accepts(input string) bool {
	for _, end := range r.match(r.root, input, 0) {
		if skipSpace(input, end) == len(input) {
			return true
		}
	}
	return false
}

// match returns every position where f can end when started at pos.
func (r *Recognizer) match(f grammar.Fragment, in string, pos int) []int {
	pos = skipSpace(in, pos)
	switch f := f.(type) {
	case grammar.Literal:
		if strings.HasPrefix(in[pos:], f.Text) {
			return []int{pos + len(f.Text)}
		}
		return nil
	case grammar.Ref:
		body, ok := r.rules[f.Name]
		if !ok {
			panic(fmt.Sprintf("grammartest: undefined rule %q", f.Name))
		}
		return r.match(body, in, pos)
	case grammar.Builtin:
		if end := builtin(f.Name, in, pos); end >= 0 {
			return []int{end}
		}
		return nil
	case grammar.Seq:
		cur := []int{pos}
		for _, p := range f.Parts {
			var next []int
			for _, at := range cur {
				next = append(next, r.match(p, in, at)...)
			}
			cur = dedup(next)
			if len(cur) == 0 {
				return nil
			}
		}
		return cur
	case grammar.Choice:
		var out []int
		for _, a := range f.Alts {
			out = append(out, r.match(a, in, pos)...)
		}
		return dedup(out)
	case grammar.Optional:
		return dedup(append([]int{pos}, r.match(f.Body, in, pos)...))
	case grammar.Repeat:
		seen := map[int]bool{pos: true}
		out := []int{pos}
		frontier := []int{pos}
		for len(frontier) > 0 {
			var next []int
			for _, at := range frontier {
				for _, end := range r.match(f.Body, in, at) {
					if !seen[end] {
						seen[end] = true
						out = append(out, end)
						next = append(next, end)
					}
				}
			}
			frontier = next
		}
		return out
	}
	panic(fmt.Sprintf("grammartest: unknown fragment %T", f))
}

func dedup(xs []int) []int {
	slices.Sort(xs)
	return slices.Compact(xs)
}

func skipSpace(in string, pos int) int {
	for pos < len(in) && strings.ContainsRune(" \t\r\n", rune(in[pos])) {
		pos++
	}
	return pos
}

var numberRE = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?`)

// builtin matches one of the base template rules at pos and returns its end,
// or -1.
func builtin(name string, in string, pos int) int {
	switch name {
	case "any":
		return value(in, pos)
	case "null":
		return keyword(in, pos, "null")
	case "bool":
		if end := keyword(in, pos, "true"); end >= 0 {
			return end
		}
		return keyword(in, pos, "false")
	case "number":
		if m := numberRE.FindString(in[pos:]); m != "" {
			return pos + len(m)
		}
		return -1
	case "string":
		return str(in, pos)
	case "object":
		if pos < len(in) && in[pos] == '{' {
			return value(in, pos)
		}
		return -1
	case "array":
		if pos < len(in) && in[pos] == '[' {
			return value(in, pos)
		}
		return -1
	}
	panic(fmt.Sprintf("grammartest: unknown builtin %q", name))
}

func keyword(in string, pos int, kw string) int {
	if strings.HasPrefix(in[pos:], kw) {
		return pos + len(kw)
	}
	return -1
}

func str(in string, pos int) int {
	if pos >= len(in) || in[pos] != '"' {
		return -1
	}
	for i := pos + 1; i < len(in); i++ {
		switch in[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return -1
}

// value matches any JSON value.
func value(in string, pos int) int {
	pos = skipSpace(in, pos)
	if pos >= len(in) {
		return -1
	}
	switch in[pos] {
	case '{':
		return members(in, pos, '}', func(at int) int {
			at = str(in, skipSpace(in, at))
			if at < 0 {
				return -1
			}
			at = skipSpace(in, at)
			if at >= len(in) || in[at] != ':' {
				return -1
			}
			return value(in, at+1)
		})
	case '[':
		return members(in, pos, ']', func(at int) int { return value(in, at) })
	case '"':
		return str(in, pos)
	case 't', 'f':
		return builtin("bool", in, pos)
	case 'n':
		return keyword(in, pos, "null")
	}
	return builtin("number", in, pos)
}

// members matches an open bracket at pos, comma separated elements and the
// closing bracket.
func members(in string, pos int, closing byte, elem func(int) int) int {
	at := skipSpace(in, pos+1)
	if at < len(in) && in[at] == closing {
		return at + 1
	}
	for {
		at = elem(at)
		if at < 0 {
			return -1
		}
		at = skipSpace(in, at)
		if at >= len(in) {
			return -1
		}
		switch in[at] {
		case ',':
			at++
		case closing:
			return at + 1
		default:
			return -1
		}
	}
}
