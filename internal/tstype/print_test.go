package tstype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{name: "keyword", typ: String, want: "string"},
		{name: "string literal", typ: &Literal{Value: `say "hi"`}, want: `"say \"hi\""`},
		{name: "number literal", typ: &Literal{Value: 1.5}, want: "1.5"},
		{name: "negative integer literal", typ: &Literal{Value: float64(-3)}, want: "-3"},
		{name: "bool literal", typ: &Literal{Value: true}, want: "true"},
		{name: "empty object", typ: &TypeLiteral{}, want: "{}"},
		{
			name: "object",
			typ: &TypeLiteral{Properties: []Property{
				{Name: "_type", Type: &Literal{Value: "post"}},
				{Name: "title", Type: String, Optional: true},
				{Name: "my-key", Type: Number},
			}},
			want: "{\n  _type: \"post\";\n  title?: string;\n  \"my-key\": number;\n}",
		},
		{
			name: "nested object",
			typ: &TypeLiteral{Properties: []Property{
				{Name: "seo", Type: &TypeLiteral{Properties: []Property{{Name: "metaTitle", Type: String}}}},
			}},
			want: "{\n  seo: {\n    metaTitle: string;\n  };\n}",
		},
		{name: "array", typ: &ArrayOf{Elem: String}, want: "string[]"},
		{name: "array of union", typ: &ArrayOf{Elem: &Union{Members: []Type{String, Null}}}, want: "(string | null)[]"},
		{name: "array of intersection", typ: &ArrayOf{Elem: &Intersection{Members: []Type{String, Number}}}, want: "(string & number)[]"},
		{
			name: "intersection of union",
			typ:  &Intersection{Members: []Type{&Union{Members: []Type{String, Null}}, &TypeRef{Name: "A"}}},
			want: "(string | null) & A",
		},
		{
			name: "generic reference",
			typ:  &TypeRef{Name: "Sanity.Reference", Args: []Type{&TypeRef{Name: "Sanity.Schema.Author"}}},
			want: "Sanity.Reference<Sanity.Schema.Author>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Print(tt.typ))
		})
	}
}

func TestNewUnion(t *testing.T) {
	assert.Equal(t, Never, NewUnion())
	assert.Equal(t, String, NewUnion(String))
	assert.Equal(t, String, NewUnion(String, String))

	got := NewUnion(String, NewUnion(Null, Undefined), Null, &Literal{Value: "a"}, &Literal{Value: "a"})
	assert.Equal(t, "string | null | undefined | \"a\"", Print(got))
}

func TestNewUnion_KeepsUnknownMembers(t *testing.T) {
	assert.Equal(t, "unknown | string", Print(NewUnion(Unknown, String)))
}

func TestNewIntersection(t *testing.T) {
	assert.Equal(t, Unknown, NewIntersection())
	assert.Equal(t, Number, NewIntersection(Number))

	a, b := &TypeRef{Name: "A"}, &TypeRef{Name: "B"}
	got := NewIntersection(a, NewIntersection(b, a))
	assert.Equal(t, "A & B", Print(got))
}

func TestWithout(t *testing.T) {
	assert.Equal(t, "string | null", Print(Without(NewUnion(String, Null, Undefined), Undefined)))
	assert.Equal(t, String, Without(NewUnion(String, Undefined), Undefined))
	assert.Equal(t, Undefined, Without(Undefined, Undefined))
	assert.Equal(t, Number, Without(Number, Undefined))
}
