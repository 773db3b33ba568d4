package structure

import "slices"

// Structure represents one possible result shape of a query.
//
// This is a sealed interface - only types in this package implement it.
// Consumers must switch over every variant:
//
//	switch s := node.(type) {
//	case *Unknown, *Null, *Boolean, *Number, *String:
//	case *Object, *Array, *Reference:
//	case *And, *Or:
//	case *Lazy:
//	}
type Structure interface {
	structureNode() // Marker method - seals interface to this package
	Kind() Kind
}

// Kind names a structure variant. It is also the discriminant accepted by Create.
type Kind string

const (
	KindUnknown   Kind = "Unknown"
	KindNull      Kind = "Null"
	KindBoolean   Kind = "Boolean"
	KindNumber    Kind = "Number"
	KindString    Kind = "String"
	KindObject    Kind = "Object"
	KindArray     Kind = "Array"
	KindReference Kind = "Reference"
	KindAnd       Kind = "And"
	KindOr        Kind = "Or"
	KindLazy      Kind = "Lazy"
)

// Unknown is a shape that could not be determined.
type Unknown struct{}

// Null is the literal null value.
type Null struct {
	CanBeOptional bool
}

// Boolean is a boolean leaf, optionally pinned to a literal value.
type Boolean struct {
	Value         *bool
	CanBeNull     bool
	CanBeOptional bool
}

// Number is a numeric leaf, optionally pinned to a literal value.
type Number struct {
	Value         *float64
	CanBeNull     bool
	CanBeOptional bool
}

// String is a string leaf, optionally pinned to a literal value.
type String struct {
	Value         *string
	CanBeNull     bool
	CanBeOptional bool
}

// Attribute is one keyed entry of an Object.
// Optional marks an attribute that may be absent from the record; the
// optionality of the value itself lives on its leaves.
type Attribute struct {
	Value    Structure
	Optional bool
}

// Object is a keyed record. Use SortedKeys for deterministic iteration.
type Object struct {
	Attributes map[string]Attribute
}

// Array is a homogeneous sequence.
type Array struct {
	Of Structure
}

// Reference points at a document type by name.
type Reference struct {
	To            string
	CanBeNull     bool
	CanBeOptional bool
}

// And is the intersection of several refinements of the same value.
type And struct {
	Children []Structure
}

// Or is the union of alternative shapes.
type Or struct {
	Children []Structure
}

// Lazy defers construction of a structure, which is how recursive schema
// types are expressed. HashInput is the node's identity: two lazies with equal
// HashInput denote the same shape, whatever their producers.
type Lazy struct {
	Get       func() Structure
	HashInput []string
}

func (*Unknown) structureNode()   {}
func (*Null) structureNode()      {}
func (*Boolean) structureNode()   {}
func (*Number) structureNode()    {}
func (*String) structureNode()    {}
func (*Object) structureNode()    {}
func (*Array) structureNode()     {}
func (*Reference) structureNode() {}
func (*And) structureNode()       {}
func (*Or) structureNode()        {}
func (*Lazy) structureNode()      {}

func (*Unknown) Kind() Kind   { return KindUnknown }
func (*Null) Kind() Kind      { return KindNull }
func (*Boolean) Kind() Kind   { return KindBoolean }
func (*Number) Kind() Kind    { return KindNumber }
func (*String) Kind() Kind    { return KindString }
func (*Object) Kind() Kind    { return KindObject }
func (*Array) Kind() Kind     { return KindArray }
func (*Reference) Kind() Kind { return KindReference }
func (*And) Kind() Kind       { return KindAnd }
func (*Or) Kind() Kind        { return KindOr }
func (*Lazy) Kind() Kind      { return KindLazy }

// Hash returns the identity of the lazy node. It never calls Get.
func (l *Lazy) Hash() string {
	return Identity(l.HashInput)
}

// Force evaluates the producer. A nil result is reported as Unknown so that
// callers never observe a nil Structure.
func (l *Lazy) Force() Structure {
	if l.Get == nil {
		return &Unknown{}
	}
	s := l.Get()
	if s == nil {
		return &Unknown{}
	}
	return s
}

// SortedKeys returns attribute names in lexicographic order.
func (o *Object) SortedKeys() []string {
	keys := make([]string, 0, len(o.Attributes))
	for k := range o.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Lookup returns the attribute stored under name.
func (o *Object) Lookup(name string) (Attribute, bool) {
	attr, ok := o.Attributes[name]
	return attr, ok
}

// IsScalar reports whether s is a Boolean, Number or String leaf.
func IsScalar(s Structure) bool {
	switch s.(type) {
	case *Boolean, *Number, *String:
		return true
	default:
		return false
	}
}

// StringLiteral returns the pinned value of a String leaf.
func StringLiteral(s Structure) (string, bool) {
	str, ok := s.(*String)
	if !ok || str.Value == nil {
		return "", false
	}
	return *str.Value, true
}

// BoolPtr, Float64Ptr and StringPtr build literal values for leaves.
func BoolPtr(b bool) *bool { return &b }

func Float64Ptr(f float64) *float64 { return &f }

func StringPtr(s string) *string { return &s }
