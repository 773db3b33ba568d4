// Package lower converts structures into TypeScript types.
//
// Every lazy node becomes a named alias in the run's Context, keyed by a name
// derived from its hash identity alone. The alias is reserved before the lazy
// is forced, so a shape that refers to itself lowers to a reference by name
// instead of recursing forever, and the same shape reached from different
// queries collapses to one alias.
package lower

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/groqgen/internal/structure"
	"github.com/roach88/groqgen/internal/tstype"
)

// Namespaces of the types the generated file refers to.
const (
	referenceType = "Sanity.Reference"
	schemaPrefix  = "Sanity.Schema."
)

// Lower returns the TypeScript type of s, adding an alias to ctx for every
// lazy node it reaches for the first time.
func Lower(s structure.Structure, ctx *Context) tstype.Type {
	switch n := s.(type) {
	case *structure.Unknown:
		return tstype.Unknown

	case *structure.Null:
		return withMarkers(tstype.Null, false, n.CanBeOptional)

	case *structure.Boolean:
		var t tstype.Type = tstype.Boolean
		if n.Value != nil {
			t = &tstype.Literal{Value: *n.Value}
		}
		return withMarkers(t, n.CanBeNull, n.CanBeOptional)

	case *structure.Number:
		var t tstype.Type = tstype.Number
		if n.Value != nil {
			t = &tstype.Literal{Value: *n.Value}
		}
		return withMarkers(t, n.CanBeNull, n.CanBeOptional)

	case *structure.String:
		var t tstype.Type = tstype.String
		if n.Value != nil {
			t = &tstype.Literal{Value: *n.Value}
		}
		return withMarkers(t, n.CanBeNull, n.CanBeOptional)

	case *structure.Reference:
		ref := &tstype.TypeRef{
			Name: referenceType,
			Args: []tstype.Type{&tstype.TypeRef{Name: schemaPrefix + Pascal(n.To)}},
		}
		return withMarkers(ref, n.CanBeNull, n.CanBeOptional)

	case *structure.Object:
		props := make([]tstype.Property, 0, len(n.Attributes))
		for _, key := range n.SortedKeys() {
			attr := n.Attributes[key]
			t := Lower(attr.Value, ctx)
			optional := attr.Optional || structure.IsOptional(attr.Value)
			if optional {
				t = tstype.Without(t, tstype.Undefined)
			}
			props = append(props, tstype.Property{Name: key, Type: t, Optional: optional})
		}
		return &tstype.TypeLiteral{Properties: props}

	case *structure.Array:
		return &tstype.ArrayOf{Elem: Lower(n.Of, ctx)}

	case *structure.And:
		if len(n.Children) == 0 || mixedScalars(n.Children) {
			return tstype.Unknown
		}
		members := make([]tstype.Type, len(n.Children))
		for i, c := range n.Children {
			members[i] = Lower(c, ctx)
		}
		return tstype.NewIntersection(members...)

	case *structure.Or:
		members := make([]tstype.Type, len(n.Children))
		for i, c := range n.Children {
			members[i] = Lower(c, ctx)
		}
		return tstype.NewUnion(members...)

	case *structure.Lazy:
		name := structure.AliasName(n.Hash())
		if ctx.reserve(name) {
			ctx.fill(name, Lower(n.Force(), ctx))
		}
		return &tstype.TypeRef{Name: name}
	}

	return tstype.Unknown
}

func withMarkers(t tstype.Type, canBeNull, canBeOptional bool) tstype.Type {
	if !canBeNull && !canBeOptional {
		return t
	}
	members := []tstype.Type{t}
	if canBeNull {
		members = append(members, tstype.Null)
	}
	if canBeOptional {
		members = append(members, tstype.Undefined)
	}
	return tstype.NewUnion(members...)
}

// mixedScalars reports whether children hold scalar leaves of more than one
// kind. Such an intersection has no values.
func mixedScalars(children []structure.Structure) bool {
	var kind structure.Kind
	for _, c := range children {
		if !structure.IsScalar(c) {
			continue
		}
		if kind != "" && c.Kind() != kind {
			return true
		}
		kind = c.Kind()
	}
	return false
}

// Pascal converts a schema type name to the PascalCase name its generated
// schema type uses: "author" is Author, "sanity.imageAsset" is
// SanityImageAsset.
func Pascal(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// A Caser is stateful and must not be shared between goroutines.
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(title.String(p))
	}
	return b.String()
}
