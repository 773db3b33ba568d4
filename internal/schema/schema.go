// Package schema holds the normalized content schema that queries are typed
// against, and loads it from CUE, JSON or YAML sources.
package schema

import "slices"

// Field types understood by the interpreter. Any other type name must be a
// registered type.
const (
	TypeString    = "string"
	TypeText      = "text"
	TypeURL       = "url"
	TypeEmail     = "email"
	TypeDate      = "date"
	TypeDatetime  = "datetime"
	TypeNumber    = "number"
	TypeBoolean   = "boolean"
	TypeObject    = "object"
	TypeArray     = "array"
	TypeReference = "reference"
	TypeImage     = "image"
	TypeFile      = "file"
	TypeSlug      = "slug"
	TypeGeopoint  = "geopoint"
	TypeBlock     = "block"
)

var builtinTypes = []string{
	TypeString, TypeText, TypeURL, TypeEmail, TypeDate, TypeDatetime,
	TypeNumber, TypeBoolean, TypeObject, TypeArray, TypeReference,
	TypeImage, TypeFile, TypeSlug, TypeGeopoint, TypeBlock,
}

// IsBuiltin reports whether name is a built-in field type.
func IsBuiltin(name string) bool {
	return slices.Contains(builtinTypes, name)
}

// Schema is a normalized schema: document types plus named (registered)
// types that fields may refer to. Both lists are sorted by name.
type Schema struct {
	Documents       []*Document
	RegisteredTypes []*RegisteredType
}

// Document is a top-level document type.
type Document struct {
	Name   string
	Title  string
	Fields []Field
}

// RegisteredType is a named type that fields can use as their type.
type RegisteredType struct {
	Name string
	Def  *Def
}

// Field is a named attribute of a document or object.
type Field struct {
	Name string
	Def  *Def
}

// Def describes the type of a field, array member or registered type.
type Def struct {
	// Type is a built-in type name or the name of a registered type.
	Type string
	// Required is set by `codegen: required: true`.
	Required bool
	// Fields of object, image and file types.
	Fields []Field
	// Of lists array member definitions.
	Of []*Def
	// To lists the document types a reference may point at.
	To []string
	// List holds `options.list` values: strings or float64s.
	List []any
}

// Document returns the document type with the given name.
func (s *Schema) Document(name string) (*Document, bool) {
	for _, d := range s.Documents {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// RegisteredType returns the registered type with the given name.
func (s *Schema) RegisteredType(name string) (*RegisteredType, bool) {
	for _, t := range s.RegisteredTypes {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// DocumentNames returns the names of all document types in sorted order.
func (s *Schema) DocumentNames() []string {
	names := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		names[i] = d.Name
	}
	return names
}
