package schema

import (
	"cmp"
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports an invalid schema definition, with the CUE position of
// the offending value when one is known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile converts a CUE value into a Schema.
//
// The value must have the shape
//
//	documents: [name=string]: {title?: string, fields: [string]: #Def}
//	types:     [name=string]: #Def
//
// where #Def is {type: string, codegen?: {required?: bool}, fields?: ...,
// of?: [...#Def], to?: string | [...string | {type: string}],
// options?: {list?: [...]}}.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{}

	typesVal := v.LookupPath(cue.ParsePath("types"))
	if typesVal.Exists() {
		iter, err := typesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name := iter.Selector().Unquoted()
			def, err := compileDef(iter.Value(), "types."+name)
			if err != nil {
				return nil, err
			}
			s.RegisteredTypes = append(s.RegisteredTypes, &RegisteredType{Name: name, Def: def})
		}
	}

	docsVal := v.LookupPath(cue.ParsePath("documents"))
	if !docsVal.Exists() {
		return nil, &CompileError{Field: "documents", Message: "documents is required", Pos: v.Pos()}
	}
	iter, err := docsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		doc, err := compileDocument(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		s.Documents = append(s.Documents, doc)
	}

	slices.SortFunc(s.Documents, func(a, b *Document) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(s.RegisteredTypes, func(a, b *RegisteredType) int { return cmp.Compare(a.Name, b.Name) })

	if err := validate(s, v); err != nil {
		return nil, err
	}
	return s, nil
}

func compileDocument(name string, v cue.Value) (*Document, error) {
	path := "documents." + name
	doc := &Document{Name: name}

	titleVal := v.LookupPath(cue.ParsePath("title"))
	if titleVal.Exists() {
		title, err := titleVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		doc.Title = title
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Field: path + ".fields", Message: "fields is required", Pos: v.Pos()}
	}
	fields, err := compileFields(fieldsVal, path+".fields")
	if err != nil {
		return nil, err
	}
	doc.Fields = fields
	return doc, nil
}

func compileFields(v cue.Value, path string) ([]Field, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var fields []Field
	for iter.Next() {
		name := iter.Selector().Unquoted()
		def, err := compileDef(iter.Value(), path+"."+name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Def: def})
	}
	return fields, nil
}

func compileDef(v cue.Value, path string) (*Def, error) {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{Field: path + ".type", Message: "type is required", Pos: v.Pos()}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return nil, &CompileError{Field: path + ".type", Message: "type must be a string", Pos: typeVal.Pos()}
	}
	def := &Def{Type: typeName}

	requiredVal := v.LookupPath(cue.ParsePath("codegen.required"))
	if requiredVal.Exists() {
		required, err := requiredVal.Bool()
		if err != nil {
			return nil, &CompileError{Field: path + ".codegen.required", Message: "required must be a boolean", Pos: requiredVal.Pos()}
		}
		def.Required = required
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		switch typeName {
		case TypeObject, TypeImage, TypeFile:
		default:
			return nil, &CompileError{Field: path + ".fields", Message: fmt.Sprintf("fields are not allowed on type %q", typeName), Pos: fieldsVal.Pos()}
		}
		fields, err := compileFields(fieldsVal, path+".fields")
		if err != nil {
			return nil, err
		}
		def.Fields = fields
	}
	if typeName == TypeObject && !fieldsVal.Exists() {
		return nil, &CompileError{Field: path + ".fields", Message: "object types need fields", Pos: v.Pos()}
	}

	if typeName == TypeArray {
		ofVal := v.LookupPath(cue.ParsePath("of"))
		if !ofVal.Exists() {
			return nil, &CompileError{Field: path + ".of", Message: "array types need of", Pos: v.Pos()}
		}
		list, err := ofVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; list.Next(); i++ {
			member, err := compileDef(list.Value(), fmt.Sprintf("%s.of[%d]", path, i))
			if err != nil {
				return nil, err
			}
			def.Of = append(def.Of, member)
		}
	}

	if typeName == TypeReference {
		to, err := compileTargets(v.LookupPath(cue.ParsePath("to")), path+".to")
		if err != nil {
			return nil, err
		}
		if len(to) == 0 {
			return nil, &CompileError{Field: path + ".to", Message: "reference types need at least one target", Pos: v.Pos()}
		}
		def.To = to
	}

	listVal := v.LookupPath(cue.ParsePath("options.list"))
	if listVal.Exists() {
		values, err := compileOptionsList(listVal, path+".options.list")
		if err != nil {
			return nil, err
		}
		def.List = values
	}

	return def, nil
}

// compileTargets accepts `to: "author"`, `to: ["author"]` and
// `to: [{type: "author"}]`.
func compileTargets(v cue.Value, path string) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "to must be a string or a list", Pos: v.Pos()}
	}
	var targets []string
	for list.Next() {
		item := list.Value()
		if s, err := item.String(); err == nil {
			targets = append(targets, s)
			continue
		}
		typeVal := item.LookupPath(cue.ParsePath("type"))
		s, err := typeVal.String()
		if err != nil {
			return nil, &CompileError{Field: path, Message: "reference target must be a type name or {type: name}", Pos: item.Pos()}
		}
		targets = append(targets, s)
	}
	return targets, nil
}

// compileOptionsList accepts scalar items and {title, value} items.
func compileOptionsList(v cue.Value, path string) ([]any, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "list must be a list", Pos: v.Pos()}
	}
	var values []any
	for list.Next() {
		item := list.Value()
		if valueVal := item.LookupPath(cue.ParsePath("value")); valueVal.Exists() {
			item = valueVal
		}
		switch item.IncompleteKind() {
		case cue.StringKind:
			s, err := item.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			values = append(values, s)
		case cue.IntKind, cue.FloatKind, cue.NumberKind:
			f, err := item.Float64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			values = append(values, f)
		default:
			return nil, &CompileError{Field: path, Message: "list values must be strings or numbers", Pos: item.Pos()}
		}
	}
	return values, nil
}

// validate checks cross references once every name is known.
func validate(s *Schema, root cue.Value) error {
	for _, d := range s.Documents {
		if _, ok := s.RegisteredType(d.Name); ok {
			return &CompileError{Field: "documents." + d.Name, Message: "name is also used by a registered type", Pos: root.Pos()}
		}
		if IsBuiltin(d.Name) {
			return &CompileError{Field: "documents." + d.Name, Message: "name shadows a built-in type", Pos: root.Pos()}
		}
		for _, f := range d.Fields {
			if err := validateDef(s, f.Def, "documents."+d.Name+".fields."+f.Name); err != nil {
				return err
			}
		}
	}
	for _, t := range s.RegisteredTypes {
		if IsBuiltin(t.Name) {
			return &CompileError{Field: "types." + t.Name, Message: "name shadows a built-in type", Pos: root.Pos()}
		}
		if err := validateDef(s, t.Def, "types."+t.Name); err != nil {
			return err
		}
	}
	return nil
}

func validateDef(s *Schema, def *Def, path string) error {
	if !IsBuiltin(def.Type) {
		if _, ok := s.RegisteredType(def.Type); !ok {
			return &CompileError{Field: path + ".type", Message: fmt.Sprintf("unknown type %q", def.Type)}
		}
	}
	for _, to := range def.To {
		if _, ok := s.Document(to); !ok {
			return &CompileError{Field: path + ".to", Message: fmt.Sprintf("reference target %q is not a document type", to)}
		}
	}
	for _, f := range def.Fields {
		if err := validateDef(s, f.Def, path+".fields."+f.Name); err != nil {
			return err
		}
	}
	for i, member := range def.Of {
		if err := validateDef(s, member, fmt.Sprintf("%s.of[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
