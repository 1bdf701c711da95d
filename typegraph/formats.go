package typegraph

// transformedFormats maps a transformed-string kind to the JSON Schema format
// it is exported as.
var transformedFormats = map[string]string{
	"date":           "date",
	"time":           "time",
	"date-time":      "date-time",
	"uuid":           "uuid",
	"uri":            "uri",
	"integer-string": "integer",
	"bool-string":    "boolean",
}

// SchemaFormat returns the JSON Schema format for a transformed-string kind.
func SchemaFormat(kind string) (string, bool) {
	f, ok := transformedFormats[kind]
	return f, ok
}

// KnownFormat reports whether kind is a transformed-string kind.
func KnownFormat(kind string) bool {
	_, ok := transformedFormats[kind]
	return ok
}
