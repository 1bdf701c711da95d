package importer

import (
	json "github.com/goccy/go-json"
)

type schemaHolder struct {
	OpenAPIV3Schema json.RawMessage `json:"openAPIV3Schema"`
}

type crdDocument struct {
	Kind            string          `json:"kind"`
	OpenAPIV3Schema json.RawMessage `json:"openAPIV3Schema"`
	Metadata        struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Spec struct {
		Names struct {
			Kind string `json:"kind"`
		} `json:"names"`
		Versions []struct {
			Name   string        `json:"name"`
			Served *bool         `json:"served"`
			Schema *schemaHolder `json:"schema"`
		} `json:"versions"`
		Validation *schemaHolder `json:"validation"`
	} `json:"spec"`
}

// unwrapCRD extracts openAPIV3Schema from a Kubernetes CRD document, or from
// a bare {"openAPIV3Schema": ...} wrapper. It looks for
// spec.versions[].schema.openAPIV3Schema (preferring served versions), then
// falls back to spec.validation.openAPIV3Schema for legacy specs. The second
// result is the CRD's spec.names.kind. A document that is not a CRD is
// returned unchanged.
func unwrapCRD(data []byte) ([]byte, string) {
	var doc crdDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return data, ""
	}
	if len(doc.OpenAPIV3Schema) > 0 {
		return doc.OpenAPIV3Schema, ""
	}
	kind := doc.Spec.Names.Kind
	var firstFound json.RawMessage
	for _, v := range doc.Spec.Versions {
		if v.Schema == nil || len(v.Schema.OpenAPIV3Schema) == 0 {
			continue
		}
		if v.Served == nil || *v.Served {
			return v.Schema.OpenAPIV3Schema, kind
		}
		if firstFound == nil {
			firstFound = v.Schema.OpenAPIV3Schema
		}
	}
	if firstFound != nil {
		return firstFound, kind
	}
	if doc.Spec.Validation != nil && len(doc.Spec.Validation.OpenAPIV3Schema) > 0 {
		return doc.Spec.Validation.OpenAPIV3Schema, kind
	}
	return data, ""
}

// crdIdentity reports spec.names.kind and metadata.name of a
// CustomResourceDefinition document.
func crdIdentity(data []byte) (kind, name string, ok bool) {
	var doc crdDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Kind != "CustomResourceDefinition" {
		return "", "", false
	}
	return doc.Spec.Names.Kind, doc.Metadata.Name, true
}
