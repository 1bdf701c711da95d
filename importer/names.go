package importer

import "strings"

// itemHint derives the name hint of array items from the array's hint:
// "books" becomes "book", "entries" becomes "entry". Hints that do not look
// plural get an "Item" suffix.
func itemHint(hint string) string {
	lower := strings.ToLower(hint)
	switch {
	case strings.HasSuffix(lower, "ies") && len(hint) > 3:
		return hint[:len(hint)-3] + "y"
	case strings.HasSuffix(lower, "sses"), strings.HasSuffix(lower, "xes"), strings.HasSuffix(lower, "ches"):
		return hint[:len(hint)-2]
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"), strings.HasSuffix(lower, "is"):
	case strings.HasSuffix(lower, "s") && len(hint) > 1:
		return hint[:len(hint)-1]
	}
	return hint + "Item"
}
