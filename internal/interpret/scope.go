package interpret

import "github.com/roach88/groqgen/internal/structure"

// Scopes is the lexical scope stack of an interpretation, innermost last.
// It is immutable: Push returns a new stack and never modifies the receiver,
// so a stack may be shared by sibling sub-expressions.
type Scopes struct {
	frames []structure.Structure
}

// NewScopes returns a stack holding the given frames, outermost first.
func NewScopes(frames ...structure.Structure) Scopes {
	return Scopes{frames: append([]structure.Structure(nil), frames...)}
}

// Push returns a stack with value bound as the new `@`.
func (s Scopes) Push(value structure.Structure) Scopes {
	frames := make([]structure.Structure, len(s.frames)+1)
	copy(frames, s.frames)
	frames[len(s.frames)] = value
	return Scopes{frames: frames}
}

// This returns the value of `@`. An empty stack yields Unknown.
func (s Scopes) This() structure.Structure {
	return s.Parent(0)
}

// Parent returns the value levels frames above `@`: Parent(1) is `^`,
// Parent(2) is `^.^`. Walking past the outermost frame yields Unknown.
func (s Scopes) Parent(levels int) structure.Structure {
	i := len(s.frames) - 1 - levels
	if levels < 0 || i < 0 {
		return &structure.Unknown{}
	}
	return s.frames[i]
}

// Depth returns the number of frames.
func (s Scopes) Depth() int {
	return len(s.frames)
}
