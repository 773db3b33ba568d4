package structure

// visited tracks the identities of the lazy nodes on the current traversal path.
// Entries are removed on the way back up, so a lazy shape reached again
// through a different, non-cyclic path is still evaluated.
type visited map[string]struct{}

// enter marks a lazy as being traversed. It returns false if the lazy is
// already on the path, i.e. the traversal has found a cycle.
func (v visited) enter(l *Lazy) (string, bool) {
	id := l.Hash()
	if _, ok := v[id]; ok {
		return id, false
	}
	v[id] = struct{}{}
	return id, true
}

func (v visited) leave(id string) {
	delete(v, id)
}

// IsOptional reports whether some reachable interpretation of s permits the
// value to be absent.
//
// Leaves report their CanBeOptional flag. Objects and arrays are never
// optional themselves. And is optional only if every refinement is; Or is
// optional if any alternative is; empty combinators are not optional.
// Unknown and lazy cycles resolve to false.
func IsOptional(s Structure) bool {
	return isOptional(s, visited{})
}

func isOptional(s Structure, seen visited) bool {
	switch n := s.(type) {
	case *Boolean:
		return n.CanBeOptional
	case *Number:
		return n.CanBeOptional
	case *String:
		return n.CanBeOptional
	case *Null:
		return n.CanBeOptional
	case *Reference:
		return n.CanBeOptional
	case *Object, *Array, *Unknown:
		return false
	case *And:
		if len(n.Children) == 0 {
			return false
		}
		for _, c := range n.Children {
			if !isOptional(c, seen) {
				return false
			}
		}
		return true
	case *Or:
		for _, c := range n.Children {
			if isOptional(c, seen) {
				return true
			}
		}
		return false
	case *Lazy:
		id, ok := seen.enter(n)
		if !ok {
			return false
		}
		defer seen.leave(id)
		return isOptional(n.Force(), seen)
	default:
		return false
	}
}

// IsNullable reports whether some reachable interpretation of s permits the
// value to be null. It follows the same fold as IsOptional: Null is nullable,
// other leaves report CanBeNull, And needs every child, Or any child.
func IsNullable(s Structure) bool {
	return isNullable(s, visited{})
}

func isNullable(s Structure, seen visited) bool {
	switch n := s.(type) {
	case *Null:
		return true
	case *Boolean:
		return n.CanBeNull
	case *Number:
		return n.CanBeNull
	case *String:
		return n.CanBeNull
	case *Reference:
		return n.CanBeNull
	case *Object, *Array, *Unknown:
		return false
	case *And:
		if len(n.Children) == 0 {
			return false
		}
		for _, c := range n.Children {
			if !isNullable(c, seen) {
				return false
			}
		}
		return true
	case *Or:
		for _, c := range n.Children {
			if isNullable(c, seen) {
				return true
			}
		}
		return false
	case *Lazy:
		id, ok := seen.enter(n)
		if !ok {
			return false
		}
		defer seen.leave(id)
		return isNullable(n.Force(), seen)
	default:
		return false
	}
}

// Resolve forces s through any chain of lazy nodes and returns the first
// non-lazy node. A chain that loops back on itself resolves to Unknown.
func Resolve(s Structure) Structure {
	seen := visited{}
	for {
		l, ok := s.(*Lazy)
		if !ok {
			return s
		}
		if _, fresh := seen.enter(l); !fresh {
			return &Unknown{}
		}
		s = l.Force()
	}
}

// Alternatives flattens nested Or nodes and lazies into the list of concrete
// alternative shapes of s. Lazies are forced; a lazy cycle contributes Unknown.
// An empty Or contributes nothing.
func Alternatives(s Structure) []Structure {
	var out []Structure
	collectAlternatives(s, visited{}, false, &out)
	return out
}

// Branches flattens nested Or nodes like Alternatives, but keeps a lazy node
// as a branch of its own unless it resolves to an Or. Callers that must
// preserve lazy identity (and with it alias deduplication) use Branches.
func Branches(s Structure) []Structure {
	var out []Structure
	collectAlternatives(s, visited{}, true, &out)
	return out
}

func collectAlternatives(s Structure, seen visited, keepLazy bool, out *[]Structure) {
	switch n := s.(type) {
	case *Or:
		for _, c := range n.Children {
			collectAlternatives(c, seen, keepLazy, out)
		}
	case *Lazy:
		id, ok := seen.enter(n)
		if !ok {
			*out = append(*out, &Unknown{})
			return
		}
		defer seen.leave(id)
		forced := n.Force()
		if keepLazy {
			if _, isOr := forced.(*Or); !isOr {
				if _, isLazy := forced.(*Lazy); !isLazy {
					*out = append(*out, n)
					return
				}
			}
		}
		collectAlternatives(forced, seen, keepLazy, out)
	default:
		*out = append(*out, s)
	}
}
