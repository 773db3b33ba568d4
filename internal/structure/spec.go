package structure

import (
	"errors"
	"fmt"
)

// Spec is the discriminated specification accepted by Create.
// Type selects the variant; only the fields that variant uses are read.
type Spec struct {
	Type Kind

	// Scalars: Value is a bool, a number (float64, int, int64) or a string
	// matching Type, or nil for an unpinned leaf.
	Value         any
	CanBeNull     *bool // nil defaults to false
	CanBeOptional *bool // nil defaults to false

	Attributes map[string]AttributeSpec // Object
	Of         Structure                // Array
	To         string                   // Reference
	Children   []Structure              // And, Or

	Get       func() Structure // Lazy
	HashInput []string         // Lazy
}

// AttributeSpec describes one Object attribute.
type AttributeSpec struct {
	Value    Structure
	Optional bool
}

// ValidationError reports a structure specification that breaks the
// construction contract. It signals a programming error in the caller, not
// surprising schema or query input.
type ValidationError struct {
	Type    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("invalid %s structure: %s: %s", e.Type, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid structure: %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Create validates spec and returns the canonical node it describes.
//
// Omitted CanBeNull/CanBeOptional flags default to false. Lazy producers are
// stored, never called.
func Create(spec Spec) (Structure, error) {
	switch spec.Type {
	case KindUnknown:
		return &Unknown{}, nil

	case KindNull:
		return &Null{CanBeOptional: flag(spec.CanBeOptional)}, nil

	case KindBoolean:
		var value *bool
		if spec.Value != nil {
			b, ok := spec.Value.(bool)
			if !ok {
				return nil, invalidValue(spec)
			}
			value = &b
		}
		return &Boolean{Value: value, CanBeNull: flag(spec.CanBeNull), CanBeOptional: flag(spec.CanBeOptional)}, nil

	case KindNumber:
		var value *float64
		if spec.Value != nil {
			f, ok := toFloat(spec.Value)
			if !ok {
				return nil, invalidValue(spec)
			}
			value = &f
		}
		return &Number{Value: value, CanBeNull: flag(spec.CanBeNull), CanBeOptional: flag(spec.CanBeOptional)}, nil

	case KindString:
		var value *string
		if spec.Value != nil {
			s, ok := spec.Value.(string)
			if !ok {
				return nil, invalidValue(spec)
			}
			value = &s
		}
		return &String{Value: value, CanBeNull: flag(spec.CanBeNull), CanBeOptional: flag(spec.CanBeOptional)}, nil

	case KindObject:
		if spec.Attributes == nil {
			return nil, missing(spec.Type, "attributes")
		}
		attrs := make(map[string]Attribute, len(spec.Attributes))
		for name, a := range spec.Attributes {
			if a.Value == nil {
				return nil, &ValidationError{Type: spec.Type, Field: "attributes." + name, Message: "value is required"}
			}
			attrs[name] = Attribute{Value: a.Value, Optional: a.Optional}
		}
		return &Object{Attributes: attrs}, nil

	case KindArray:
		if spec.Of == nil {
			return nil, missing(spec.Type, "of")
		}
		return &Array{Of: spec.Of}, nil

	case KindReference:
		if spec.To == "" {
			return nil, missing(spec.Type, "to")
		}
		return &Reference{To: spec.To, CanBeNull: flag(spec.CanBeNull), CanBeOptional: flag(spec.CanBeOptional)}, nil

	case KindAnd, KindOr:
		if spec.Children == nil {
			return nil, missing(spec.Type, "children")
		}
		for i, c := range spec.Children {
			if c == nil {
				return nil, &ValidationError{Type: spec.Type, Field: fmt.Sprintf("children[%d]", i), Message: "child is nil"}
			}
		}
		children := append([]Structure(nil), spec.Children...)
		if spec.Type == KindAnd {
			return &And{Children: children}, nil
		}
		return &Or{Children: children}, nil

	case KindLazy:
		if spec.Get == nil {
			return nil, missing(spec.Type, "get")
		}
		if len(spec.HashInput) == 0 {
			return nil, missing(spec.Type, "hashInput")
		}
		return &Lazy{Get: spec.Get, HashInput: append([]string(nil), spec.HashInput...)}, nil

	case "":
		return nil, &ValidationError{Field: "type", Message: "type is required"}

	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown structure type %q", spec.Type)}
	}
}

// MustCreate is like Create but panics on error.
// Use only in tests or when the specification is known to be valid.
func MustCreate(spec Spec) Structure {
	s, err := Create(spec)
	if err != nil {
		panic(err)
	}
	return s
}

func flag(b *bool) bool {
	return b != nil && *b
}

func missing(kind Kind, field string) *ValidationError {
	return &ValidationError{Type: kind, Field: field, Message: field + " is required"}
}

func invalidValue(spec Spec) *ValidationError {
	return &ValidationError{
		Type:    spec.Type,
		Field:   "value",
		Message: fmt.Sprintf("literal of type %T does not match", spec.Value),
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
