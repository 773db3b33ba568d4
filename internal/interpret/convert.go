package interpret

import (
	"github.com/roach88/groqgen/internal/schema"
	"github.com/roach88/groqgen/internal/structure"
)

// Hash input prefixes for lazies created from the schema.
const (
	hashDocument   = "document"
	hashRegistered = "registered"
)

// Reference targets of image and file assets.
const (
	imageAsset = "sanity.imageAsset"
	fileAsset  = "sanity.fileAsset"
)

// documentLazy returns the lazy node standing for every document of the given
// type. Its identity is ["document", name] wherever it is reached from.
func (in *Interpreter) documentLazy(doc *schema.Document) *structure.Lazy {
	return &structure.Lazy{
		Get:       func() structure.Structure { return in.documentObject(doc) },
		HashInput: []string{hashDocument, doc.Name},
	}
}

func (in *Interpreter) documentObject(doc *schema.Document) structure.Structure {
	attrs := map[string]structure.Attribute{
		"_id":        {Value: &structure.String{}},
		"_type":      {Value: &structure.String{Value: structure.StringPtr(doc.Name)}},
		"_createdAt": {Value: &structure.String{}},
		"_updatedAt": {Value: &structure.String{}},
		"_rev":       {Value: &structure.String{}},
	}
	for _, f := range doc.Fields {
		attrs[f.Name] = in.fieldAttribute(f)
	}
	return &structure.Object{Attributes: attrs}
}

// fieldAttribute converts a schema field. Fields without `codegen.required`
// may be absent from stored documents: the attribute is optional and leaves
// carry their own flag. Containers are kept as they are.
func (in *Interpreter) fieldAttribute(f schema.Field) structure.Attribute {
	value := in.convertDef(f.Def)
	if f.Def.Required {
		return structure.Attribute{Value: value}
	}
	return optionalAttribute(value)
}

func (in *Interpreter) convertFields(fields []schema.Field, extra map[string]structure.Attribute) *structure.Object {
	attrs := make(map[string]structure.Attribute, len(fields)+len(extra))
	for k, v := range extra {
		attrs[k] = v
	}
	for _, f := range fields {
		attrs[f.Name] = in.fieldAttribute(f)
	}
	return &structure.Object{Attributes: attrs}
}

// convertDef maps a schema type definition to a structure. Unknown type names
// degrade to Unknown.
func (in *Interpreter) convertDef(def *schema.Def) structure.Structure {
	switch def.Type {
	case schema.TypeString, schema.TypeText, schema.TypeURL, schema.TypeEmail,
		schema.TypeDate, schema.TypeDatetime:
		if len(def.List) > 0 {
			return literalUnion(def.List)
		}
		return &structure.String{}

	case schema.TypeNumber:
		if len(def.List) > 0 {
			return literalUnion(def.List)
		}
		return &structure.Number{}

	case schema.TypeBoolean:
		return &structure.Boolean{}

	case schema.TypeObject:
		return in.convertFields(def.Fields, nil)

	case schema.TypeArray:
		members := make([]structure.Structure, 0, len(def.Of))
		for _, m := range def.Of {
			members = append(members, in.arrayMember(m))
		}
		return &structure.Array{Of: union(members)}

	case schema.TypeReference:
		refs := make([]structure.Structure, 0, len(def.To))
		for _, to := range def.To {
			refs = append(refs, &structure.Reference{To: to})
		}
		return union(refs)

	case schema.TypeImage:
		return in.convertFields(def.Fields, map[string]structure.Attribute{
			"_type":   literalType(schema.TypeImage),
			"asset":   {Value: &structure.Reference{To: imageAsset}},
			"crop":    optionalAttribute(numberObject("top", "bottom", "left", "right")),
			"hotspot": optionalAttribute(numberObject("x", "y", "height", "width")),
		})

	case schema.TypeFile:
		return in.convertFields(def.Fields, map[string]structure.Attribute{
			"_type": literalType(schema.TypeFile),
			"asset": {Value: &structure.Reference{To: fileAsset}},
		})

	case schema.TypeSlug:
		return &structure.Object{Attributes: map[string]structure.Attribute{
			"_type":   literalType(schema.TypeSlug),
			"current": {Value: &structure.String{}},
		}}

	case schema.TypeGeopoint:
		return &structure.Object{Attributes: map[string]structure.Attribute{
			"_type": literalType(schema.TypeGeopoint),
			"lat":   {Value: &structure.Number{}},
			"lng":   {Value: &structure.Number{}},
			"alt":   optionalAttribute(&structure.Number{}),
		}}

	case schema.TypeBlock:
		return blockObject()
	}

	rt, ok := in.schema.RegisteredType(def.Type)
	if !ok {
		in.logger.Debug("unknown schema type", "type", def.Type)
		return &structure.Unknown{}
	}
	return in.registeredLazy(rt)
}

// registeredLazy defers conversion of a named type, which is what lets a
// type refer to itself.
func (in *Interpreter) registeredLazy(rt *schema.RegisteredType) *structure.Lazy {
	return &structure.Lazy{
		Get: func() structure.Structure {
			if rt.Def.Type == schema.TypeObject {
				return in.convertFields(rt.Def.Fields, map[string]structure.Attribute{
					"_type": literalType(rt.Name),
				})
			}
			return in.convertDef(rt.Def)
		},
		HashInput: []string{hashRegistered, rt.Name},
	}
}

// arrayMember converts an array member. Objects stored in arrays carry a
// `_key`.
func (in *Interpreter) arrayMember(def *schema.Def) structure.Structure {
	member := in.convertDef(def)
	obj, ok := member.(*structure.Object)
	if !ok {
		return member
	}
	attrs := make(map[string]structure.Attribute, len(obj.Attributes)+1)
	for k, v := range obj.Attributes {
		attrs[k] = v
	}
	attrs["_key"] = structure.Attribute{Value: &structure.String{}}
	return &structure.Object{Attributes: attrs}
}

func blockObject() structure.Structure {
	span := &structure.Object{Attributes: map[string]structure.Attribute{
		"_key":  {Value: &structure.String{}},
		"_type": literalType("span"),
		"text":  {Value: &structure.String{}},
		"marks": optionalAttribute(&structure.Array{Of: &structure.String{}}),
	}}
	markDef := &structure.Object{Attributes: map[string]structure.Attribute{
		"_key":  {Value: &structure.String{}},
		"_type": {Value: &structure.String{}},
	}}
	return &structure.Object{Attributes: map[string]structure.Attribute{
		"_type":    literalType(schema.TypeBlock),
		"children": {Value: &structure.Array{Of: span}},
		"markDefs": optionalAttribute(&structure.Array{Of: markDef}),
		"style":    optionalAttribute(&structure.String{}),
		"listItem": optionalAttribute(&structure.String{}),
		"level":    optionalAttribute(&structure.Number{}),
	}}
}

func numberObject(names ...string) structure.Structure {
	attrs := make(map[string]structure.Attribute, len(names))
	for _, n := range names {
		attrs[n] = structure.Attribute{Value: &structure.Number{}}
	}
	return &structure.Object{Attributes: attrs}
}

func literalType(name string) structure.Attribute {
	return structure.Attribute{Value: &structure.String{Value: structure.StringPtr(name)}}
}

func optionalAttribute(value structure.Structure) structure.Attribute {
	return structure.Attribute{Value: optionalLeaves(value), Optional: true}
}

// literalUnion converts `options.list` values to a union of literals.
func literalUnion(values []any) structure.Structure {
	children := make([]structure.Structure, 0, len(values))
	for _, v := range values {
		switch lit := v.(type) {
		case string:
			children = append(children, &structure.String{Value: structure.StringPtr(lit)})
		case float64:
			children = append(children, &structure.Number{Value: structure.Float64Ptr(lit)})
		}
	}
	return union(children)
}
