package interpret

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/groqgen/internal/groq"
	"github.com/roach88/groqgen/internal/schema"
	"github.com/roach88/groqgen/internal/structure"
)

// maxVariants bounds the number of object shapes a projection with splats may
// fan out into before it degrades to Unknown.
const maxVariants = 64

// Interpreter infers the result shape of GROQ queries against a schema.
//
// An Interpreter is safe for concurrent use: it holds only the schema and
// the document lazies built from it, and never mutates either.
type Interpreter struct {
	schema    *schema.Schema
	logger    *slog.Logger
	documents map[string]*structure.Lazy
	order     []string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used to report constructs that degrade to
// Unknown. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// New creates an interpreter for s.
func New(s *schema.Schema, opts ...Option) *Interpreter {
	in := &Interpreter{
		schema:    s,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		documents: make(map[string]*structure.Lazy, len(s.Documents)),
	}
	for _, opt := range opts {
		opt(in)
	}
	for _, doc := range s.Documents {
		in.documents[doc.Name] = in.documentLazy(doc)
		in.order = append(in.order, doc.Name)
	}
	return in
}

// Document returns the lazy shape of a document type.
func (in *Interpreter) Document(name string) (structure.Structure, bool) {
	doc, ok := in.documents[name]
	return doc, ok
}

// Interpret returns the shape of node evaluated in scopes.
//
// It never fails: constructs it cannot type, unknown fields and types missing
// from the schema all become Unknown at the position where they occur.
func (in *Interpreter) Interpret(node groq.Node, scopes Scopes) structure.Structure {
	switch n := node.(type) {
	case *groq.Everything:
		return in.everything()

	case *groq.This:
		return scopes.This()

	case *groq.Parent:
		return scopes.Parent(n.Levels)

	case *groq.Parameter:
		return &structure.Unknown{}

	case *groq.Value:
		return literal(n.Value)

	case *groq.Group:
		return in.Interpret(n.Base, scopes)

	case *groq.AccessAttribute:
		var base structure.Structure
		if n.Base == nil {
			base = scopes.This()
		} else {
			base = in.Interpret(n.Base, scopes)
		}
		return access(base, n.Name)

	case *groq.AccessElement:
		return elementOf(in.Interpret(n.Base, scopes))

	case *groq.Slice:
		return keepArray(in.Interpret(n.Base, scopes))

	case *groq.ArrayCoerce:
		return coerceArray(in.Interpret(n.Base, scopes))

	case *groq.Filter:
		return in.filter(in.Interpret(n.Base, scopes), n.Expr)

	case *groq.Projection:
		base := in.Interpret(n.Base, scopes)
		return in.project(base, n.Expr, scopes)

	case *groq.Deref:
		return in.deref(in.Interpret(n.Base, scopes))

	case *groq.Object:
		return in.object(n, scopes)

	case *groq.Array:
		return in.array(n, scopes)

	case *groq.PipeFuncCall:
		switch n.Name {
		case "order", "score":
			return in.Interpret(n.Base, scopes)
		}
		in.logger.Debug("unsupported pipe function", "name", n.Name)
		return &structure.Unknown{}

	case *groq.FuncCall:
		return in.call(n, scopes)

	case *groq.OpCall:
		return in.operator(n, scopes)

	case *groq.And, *groq.Or, *groq.Not, *groq.InRange:
		return &structure.Boolean{}

	case *groq.Neg:
		if v, ok := n.Base.(*groq.Value); ok {
			if f, ok := v.Value.(float64); ok {
				return &structure.Number{Value: structure.Float64Ptr(-f)}
			}
		}
		return &structure.Number{}

	case *groq.Pos:
		return &structure.Number{}
	}

	in.logger.Debug("unsupported expression", "node", fmt.Sprintf("%T", node))
	return &structure.Unknown{}
}

// everything is the shape of `*`: an array of every document type.
func (in *Interpreter) everything() structure.Structure {
	if len(in.order) == 0 {
		return &structure.Unknown{}
	}
	docs := make([]structure.Structure, len(in.order))
	for i, name := range in.order {
		docs[i] = in.documents[name]
	}
	return &structure.Array{Of: &structure.Or{Children: docs}}
}

func literal(v any) structure.Structure {
	switch lit := v.(type) {
	case nil:
		return &structure.Null{}
	case bool:
		return &structure.Boolean{Value: structure.BoolPtr(lit)}
	case float64:
		return &structure.Number{Value: structure.Float64Ptr(lit)}
	case string:
		return &structure.String{Value: structure.StringPtr(lit)}
	}
	return &structure.Unknown{}
}

// filter keeps the array shape of base and narrows its elements by any
// `_type` test in expr that can be decided statically.
func (in *Interpreter) filter(base structure.Structure, expr groq.Node) structure.Structure {
	types, ok := typeSet(expr)
	return distribute(base, func(s structure.Structure) structure.Structure {
		arr, isArray := s.(*structure.Array)
		if !isArray {
			return &structure.Unknown{}
		}
		if !ok {
			return arr
		}
		return &structure.Array{Of: narrow(arr.Of, types)}
	})
}

// typeSet extracts the set of `_type` values a filter admits. It reports
// false when the filter does not constrain `_type` in a way known statically.
func typeSet(expr groq.Node) (map[string]bool, bool) {
	switch n := expr.(type) {
	case *groq.Group:
		return typeSet(n.Base)

	case *groq.OpCall:
		switch n.Op {
		case "==":
			if isTypeAttribute(n.Left) {
				if s, ok := stringValue(n.Right); ok {
					return map[string]bool{s: true}, true
				}
			}
			if isTypeAttribute(n.Right) {
				if s, ok := stringValue(n.Left); ok {
					return map[string]bool{s: true}, true
				}
			}
		case "in":
			if !isTypeAttribute(n.Left) {
				return nil, false
			}
			arr, ok := n.Right.(*groq.Array)
			if !ok {
				return nil, false
			}
			set := make(map[string]bool, len(arr.Elements))
			for _, el := range arr.Elements {
				s, ok := stringValue(el.Value)
				if el.IsSplat || !ok {
					return nil, false
				}
				set[s] = true
			}
			return set, true
		}
		return nil, false

	case *groq.And:
		left, lok := typeSet(n.Left)
		right, rok := typeSet(n.Right)
		switch {
		case lok && rok:
			both := make(map[string]bool)
			for k := range left {
				if right[k] {
					both[k] = true
				}
			}
			return both, true
		case lok:
			return left, true
		case rok:
			return right, true
		}
		return nil, false

	case *groq.Or:
		left, lok := typeSet(n.Left)
		right, rok := typeSet(n.Right)
		if !lok || !rok {
			return nil, false
		}
		either := make(map[string]bool, len(left)+len(right))
		for k := range left {
			either[k] = true
		}
		for k := range right {
			either[k] = true
		}
		return either, true
	}
	return nil, false
}

func isTypeAttribute(n groq.Node) bool {
	attr, ok := n.(*groq.AccessAttribute)
	if !ok || attr.Name != "_type" {
		return false
	}
	if attr.Base == nil {
		return true
	}
	_, isThis := attr.Base.(*groq.This)
	return isThis
}

func stringValue(n groq.Node) (string, bool) {
	v, ok := n.(*groq.Value)
	if !ok {
		return "", false
	}
	s, ok := v.Value.(string)
	return s, ok
}

// deref follows references to the lazy shape of their target document.
func (in *Interpreter) deref(s structure.Structure) structure.Structure {
	return distribute(s, func(s structure.Structure) structure.Structure {
		switch n := s.(type) {
		case *structure.Reference:
			doc, ok := in.documents[n.To]
			if !ok {
				in.logger.Debug("reference to unknown document type", "type", n.To)
				return &structure.Unknown{}
			}
			var target structure.Structure = doc
			if n.CanBeNull {
				target = &structure.Or{Children: []structure.Structure{target, &structure.Null{}}}
			}
			if n.CanBeOptional {
				target = markOptional(target)
			}
			return target
		case *structure.Array:
			return &structure.Array{Of: in.deref(n.Of)}
		default:
			return &structure.Unknown{}
		}
	})
}

// project applies a projection to every element of base.
func (in *Interpreter) project(base structure.Structure, obj *groq.Object, scopes Scopes) structure.Structure {
	switch n := structure.Resolve(base).(type) {
	case *structure.Array:
		return &structure.Array{Of: in.project(n.Of, obj, scopes)}
	case *structure.Or:
		children := make([]structure.Structure, len(n.Children))
		for i, c := range n.Children {
			children[i] = in.project(c, obj, scopes)
		}
		return &structure.Or{Children: children}
	case *structure.Null:
		return n
	default:
		return in.object(obj, scopes.Push(n))
	}
}

// object builds the shape of an object literal. Splats of unions fan the
// result out into one object per alternative.
func (in *Interpreter) object(obj *groq.Object, scopes Scopes) structure.Structure {
	variants := []map[string]structure.Attribute{{}}

	for _, attr := range obj.Attributes {
		switch a := attr.(type) {
		case *groq.ObjectAttributeValue:
			value := in.Interpret(a.Value, scopes)
			for _, v := range variants {
				v[a.Name] = structure.Attribute{Value: value}
			}

		case *groq.ObjectSplat:
			splats := objectAlternatives(in.Interpret(a.Value, scopes))
			if len(splats) == 0 {
				continue
			}
			if len(variants)*len(splats) > maxVariants {
				in.logger.Debug("projection has too many shapes", "limit", maxVariants)
				return &structure.Unknown{}
			}
			variants = fanOut(variants, splats, false)

		case *groq.ObjectConditionalSplat:
			splats := objectAlternatives(in.object(a.Value, scopes))
			if len(splats) == 0 {
				continue
			}
			if len(variants)*len(splats) > maxVariants {
				in.logger.Debug("projection has too many shapes", "limit", maxVariants)
				return &structure.Unknown{}
			}
			variants = fanOut(variants, splats, true)
		}
	}

	objects := make([]structure.Structure, len(variants))
	for i, v := range variants {
		objects[i] = &structure.Object{Attributes: v}
	}
	return union(objects)
}

// objectAlternatives returns the object shapes among the alternatives of s.
func objectAlternatives(s structure.Structure) []*structure.Object {
	var objs []*structure.Object
	for _, alt := range structure.Alternatives(s) {
		if obj, ok := alt.(*structure.Object); ok {
			objs = append(objs, obj)
		}
	}
	return objs
}

// fanOut merges every splat into every variant. Attributes of a conditional
// splat become optional, or a union with the attribute they may replace.
func fanOut(variants []map[string]structure.Attribute, splats []*structure.Object, conditional bool) []map[string]structure.Attribute {
	out := make([]map[string]structure.Attribute, 0, len(variants)*len(splats))
	for _, v := range variants {
		for _, s := range splats {
			merged := make(map[string]structure.Attribute, len(v)+len(s.Attributes))
			for k, a := range v {
				merged[k] = a
			}
			for _, k := range s.SortedKeys() {
				a := s.Attributes[k]
				if conditional {
					if prev, ok := merged[k]; ok {
						a = structure.Attribute{
							Value:    &structure.Or{Children: []structure.Structure{prev.Value, a.Value}},
							Optional: prev.Optional,
						}
					} else {
						a.Optional = true
					}
				}
				merged[k] = a
			}
			out = append(out, merged)
		}
	}
	return out
}

// array builds the shape of an array literal.
func (in *Interpreter) array(arr *groq.Array, scopes Scopes) structure.Structure {
	elements := make([]structure.Structure, 0, len(arr.Elements))
	for _, el := range arr.Elements {
		value := in.Interpret(el.Value, scopes)
		if el.IsSplat {
			value = elementOf(value)
		}
		elements = append(elements, value)
	}
	return &structure.Array{Of: union(elements)}
}
