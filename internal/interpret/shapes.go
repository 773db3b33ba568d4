package interpret

import "github.com/roach88/groqgen/internal/structure"

// union collapses a single alternative to itself.
func union(children []structure.Structure) structure.Structure {
	if len(children) == 1 {
		return children[0]
	}
	return &structure.Or{Children: children}
}

// markOptional returns s with absence permitted. Leaves get their
// CanBeOptional flag; shapes without one are joined with an optional Null,
// since GROQ reads a missing value as null. Lazies are never forced.
func markOptional(s structure.Structure) structure.Structure {
	if permitsAbsence(s) {
		return s
	}
	if leaf, ok := optionalLeaf(s); ok {
		return leaf
	}
	switch n := s.(type) {
	case *structure.Unknown:
		return n
	case *structure.Or:
		children := make([]structure.Structure, len(n.Children))
		for i, child := range n.Children {
			children[i] = markOptional(child)
		}
		return &structure.Or{Children: children}
	case *structure.Lazy:
		return &structure.Or{Children: []structure.Structure{n, &structure.Null{CanBeOptional: true}}}
	default:
		return &structure.Or{Children: []structure.Structure{s, &structure.Null{CanBeOptional: true}}}
	}
}

// optionalLeaves sets CanBeOptional on the leaves of s and leaves every other
// shape alone. It is used where an attribute flag already records absence.
func optionalLeaves(s structure.Structure) structure.Structure {
	if leaf, ok := optionalLeaf(s); ok {
		return leaf
	}
	if or, ok := s.(*structure.Or); ok {
		children := make([]structure.Structure, len(or.Children))
		for i, child := range or.Children {
			children[i] = optionalLeaves(child)
		}
		return &structure.Or{Children: children}
	}
	return s
}

// optionalLeaf returns a copy of a leaf with CanBeOptional set. ok is false
// for shapes that have no such flag.
func optionalLeaf(s structure.Structure) (structure.Structure, bool) {
	switch n := s.(type) {
	case *structure.Null:
		return &structure.Null{CanBeOptional: true}, true
	case *structure.Boolean:
		c := *n
		c.CanBeOptional = true
		return &c, true
	case *structure.Number:
		c := *n
		c.CanBeOptional = true
		return &c, true
	case *structure.String:
		c := *n
		c.CanBeOptional = true
		return &c, true
	case *structure.Reference:
		c := *n
		c.CanBeOptional = true
		return &c, true
	}
	return nil, false
}

// permitsAbsence is IsOptional restricted to what is visible without forcing:
// leaves and the alternatives of an Or.
func permitsAbsence(s structure.Structure) bool {
	switch n := s.(type) {
	case *structure.Or:
		for _, c := range n.Children {
			if permitsAbsence(c) {
				return true
			}
		}
		return false
	case *structure.Null, *structure.Boolean, *structure.Number, *structure.String, *structure.Reference:
		return structure.IsOptional(n)
	}
	return false
}

// distribute applies fn to every alternative of s. Lazies are resolved, Or
// and And are mapped child by child, Null passes through and Unknown stays
// Unknown. fn sees every other shape.
func distribute(s structure.Structure, fn func(structure.Structure) structure.Structure) structure.Structure {
	switch n := structure.Resolve(s).(type) {
	case *structure.Or:
		children := make([]structure.Structure, len(n.Children))
		for i, c := range n.Children {
			children[i] = distribute(c, fn)
		}
		return &structure.Or{Children: children}
	case *structure.And:
		children := make([]structure.Structure, len(n.Children))
		for i, c := range n.Children {
			children[i] = distribute(c, fn)
		}
		return &structure.And{Children: children}
	case *structure.Null:
		return n
	case *structure.Unknown:
		return n
	default:
		return fn(n)
	}
}

// access reads attribute name from s, mapping over arrays.
func access(s structure.Structure, name string) structure.Structure {
	return distribute(s, func(s structure.Structure) structure.Structure {
		switch n := s.(type) {
		case *structure.Object:
			attr, ok := n.Lookup(name)
			if !ok {
				return &structure.Unknown{}
			}
			if attr.Optional {
				return markOptional(attr.Value)
			}
			return attr.Value
		case *structure.Array:
			return &structure.Array{Of: access(n.Of, name)}
		default:
			return &structure.Unknown{}
		}
	})
}

// elementOf removes one level of Array.
func elementOf(s structure.Structure) structure.Structure {
	return distribute(s, func(s structure.Structure) structure.Structure {
		if arr, ok := s.(*structure.Array); ok {
			return arr.Of
		}
		return &structure.Unknown{}
	})
}

// keepArray returns s where it is an array and Unknown elsewhere, for
// operators that preserve array shape.
func keepArray(s structure.Structure) structure.Structure {
	return distribute(s, func(s structure.Structure) structure.Structure {
		if _, ok := s.(*structure.Array); ok {
			return s
		}
		return &structure.Unknown{}
	})
}

// coerceArray implements `x[]`: arrays are kept, anything else is wrapped.
func coerceArray(s structure.Structure) structure.Structure {
	return distribute(s, func(s structure.Structure) structure.Structure {
		if _, ok := s.(*structure.Array); ok {
			return s
		}
		return &structure.Array{Of: s}
	})
}

// typeLiteral returns the literal `_type` of a document or object shape.
func typeLiteral(s structure.Structure) (string, bool) {
	obj, ok := structure.Resolve(s).(*structure.Object)
	if !ok {
		return "", false
	}
	attr, ok := obj.Lookup("_type")
	if !ok {
		return "", false
	}
	return structure.StringLiteral(attr.Value)
}

// narrow keeps the alternatives of element whose `_type` literal is in types.
// Alternatives without a literal `_type` are kept.
func narrow(element structure.Structure, types map[string]bool) structure.Structure {
	var kept []structure.Structure
	for _, b := range structure.Branches(element) {
		if name, ok := typeLiteral(b); ok && !types[name] {
			continue
		}
		kept = append(kept, b)
	}
	return union(kept)
}
