package typesitter

import (
	"strings"

	"github.com/reoring/typesitter/i18n"
)

// typePath is the chain of names from the root type to the node being
// synthesized, rendered as a JSON Pointer in Issues.
type typePath struct {
	parts []string
}

func (p typePath) Field(name string) typePath {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return typePath{parts: append(append([]string{}, p.parts...), esc)}
}

func (p typePath) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue returns an issue at p with the localized hint for code.
func (p typePath) Issue(code, msg string) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Hint: i18n.T(code, nil)}
}
