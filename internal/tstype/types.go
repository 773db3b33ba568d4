// Package tstype is a minimal TypeScript type AST with a deterministic printer.
//
// It models only what the lowering pass emits: keywords, literal types, object
// type literals, arrays, unions, intersections and named references. Printing
// is a pure function of the tree, so equal trees always print to equal text.
package tstype

// Type is a TypeScript type expression.
//
// This is a sealed interface - only types in this package implement it.
type Type interface {
	tsType() // Marker method - seals interface to this package
}

// Keyword names a built-in TypeScript type.
type Keyword string

const (
	String    Keyword = "string"
	Number    Keyword = "number"
	Boolean   Keyword = "boolean"
	Null      Keyword = "null"
	Undefined Keyword = "undefined"
	Unknown   Keyword = "unknown"
	Never     Keyword = "never"
)

// Literal is a literal type. Value is a string, float64 or bool.
type Literal struct {
	Value any
}

// Property is one member of a TypeLiteral.
type Property struct {
	Name     string
	Type     Type
	Optional bool
}

// TypeLiteral is an object type `{ a: T; b?: U }`. Properties print in the
// order given.
type TypeLiteral struct {
	Properties []Property
}

// ArrayOf is `T[]`.
type ArrayOf struct {
	Elem Type
}

// Union is `A | B`. Build it with NewUnion.
type Union struct {
	Members []Type
}

// Intersection is `A & B`. Build it with NewIntersection.
type Intersection struct {
	Members []Type
}

// TypeRef is a named type, optionally with type arguments: `Name<A, B>`.
type TypeRef struct {
	Name string
	Args []Type
}

func (Keyword) tsType()       {}
func (*Literal) tsType()      {}
func (*TypeLiteral) tsType()  {}
func (*ArrayOf) tsType()      {}
func (*Union) tsType()        {}
func (*Intersection) tsType() {}
func (*TypeRef) tsType()      {}

// NewUnion builds the union of members. Nested unions are flattened and
// members that print identically are kept once, first occurrence wins. A
// single member is returned as is and no members yield never.
func NewUnion(members ...Type) Type {
	flat := flatten(members, func(t Type) ([]Type, bool) {
		u, ok := t.(*Union)
		if !ok {
			return nil, false
		}
		return u.Members, true
	})
	switch len(flat) {
	case 0:
		return Never
	case 1:
		return flat[0]
	}
	return &Union{Members: flat}
}

// NewIntersection builds the intersection of members, flattening and
// deduplicating like NewUnion. No members yield unknown.
func NewIntersection(members ...Type) Type {
	flat := flatten(members, func(t Type) ([]Type, bool) {
		i, ok := t.(*Intersection)
		if !ok {
			return nil, false
		}
		return i.Members, true
	})
	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	return &Intersection{Members: flat}
}

func flatten(members []Type, nested func(Type) ([]Type, bool)) []Type {
	seen := make(map[string]bool, len(members))
	var out []Type
	var walk func([]Type)
	walk = func(ts []Type) {
		for _, t := range ts {
			if inner, ok := nested(t); ok {
				walk(inner)
				continue
			}
			key := Print(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	walk(members)
	return out
}

// Without returns t with every union member equal to k removed. A type that
// is exactly k is returned unchanged.
func Without(t Type, k Keyword) Type {
	u, ok := t.(*Union)
	if !ok {
		return t
	}
	kept := make([]Type, 0, len(u.Members))
	for _, m := range u.Members {
		if kw, ok := m.(Keyword); ok && kw == k {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return k
	}
	return NewUnion(kept...)
}
