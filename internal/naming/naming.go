// Package naming turns arbitrary type identifiers into legal, collision free
// grammar rule names.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// acronyms are rendered in upper case.
var acronyms = map[string]bool{
	"API": true, "CPU": true, "DNS": true, "HTML": true, "HTTP": true, "ID": true,
	"IP": true, "JSON": true, "SQL": true, "TLS": true, "URI": true, "URL": true,
	"UUID": true, "XML": true,
}

// Namer assigns rule names within one compilation. Names are memoized per
// key, so asking twice for the same identity returns the same name, and two
// identities never share a name.
type Namer[K comparable] struct {
	byKey map[K]string
	taken map[string]bool
	title cases.Caser
}

// New returns an empty Namer.
func New[K comparable]() *Namer[K] {
	return &Namer[K]{
		byKey: make(map[K]string),
		taken: make(map[string]bool),
		title: cases.Title(language.Und),
	}
}

// Assign returns the rule name for key, minting one from identifier on first
// use. kindWord ("Object", "Enum", ...) is appended when the styled
// identifier is already taken; a counter follows if that is taken too.
func (n *Namer[K]) Assign(key K, identifier, kindWord string) string {
	if name, ok := n.byKey[key]; ok {
		return name
	}
	base := n.Style(identifier)
	name := base
	if n.taken[name] {
		name = base + kindWord
		for i := 2; n.taken[name]; i++ {
			name = base + kindWord + strconv.Itoa(i)
		}
	}
	n.byKey[key] = name
	n.taken[name] = true
	return name
}

// Lookup returns the name already assigned to key.
func (n *Namer[K]) Lookup(key K) (string, bool) {
	name, ok := n.byKey[key]
	return name, ok
}

// Style converts identifier into upper camel case made of ASCII letters and
// digits. The result never starts with a digit and is never empty.
func (n *Namer[K]) Style(identifier string) string {
	var b strings.Builder
	for _, w := range SplitWords(Fold(identifier)) {
		if up := strings.ToUpper(w); acronyms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(n.title.String(w))
	}
	s := b.String()
	switch {
	case s == "":
		return "Type"
	case s[0] >= '0' && s[0] <= '9':
		return "N" + s
	}
	return s
}

// Fold strips diacritics so that "Café" styles as "Cafe".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SplitWords splits s into words at non alphanumeric ASCII characters, lower
// to upper case transitions, letter/digit transitions and before the last
// capital of an acronym run ("HTTPServer" -> "HTTP", "Server"). Characters
// outside ASCII letters and digits only separate words.
func SplitWords(s string) []string {
	var words []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isAlnum(c) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case isDigit(prev) != isDigit(c):
				flush()
			case isLower(prev) && isUpper(c):
				flush()
			case isUpper(prev) && isUpper(c) && i+1 < len(s) && isLower(s[i+1]):
				flush()
			}
		}
		cur = append(cur, c)
	}
	flush()
	return words
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool { return isUpper(c) || isLower(c) || isDigit(c) }
