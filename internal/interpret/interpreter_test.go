package interpret

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/groqgen/internal/groq"
	"github.com/roach88/groqgen/internal/structure"
	"github.com/roach88/groqgen/internal/testutil"
)

func interpretQuery(t *testing.T, query string) structure.Structure {
	t.Helper()
	node, err := groq.Parse(query)
	require.NoError(t, err)
	return New(testutil.BlogSchema()).Interpret(node, NewScopes())
}

// lazyName returns the document or registered type name a lazy stands for.
func lazyName(t *testing.T, s structure.Structure) string {
	t.Helper()
	l, ok := s.(*structure.Lazy)
	require.True(t, ok, "expected *structure.Lazy, got %T", s)
	require.Len(t, l.HashInput, 2)
	return l.HashInput[1]
}

func arrayOf(t *testing.T, s structure.Structure) structure.Structure {
	t.Helper()
	arr, ok := s.(*structure.Array)
	require.True(t, ok, "expected *structure.Array, got %T", s)
	return arr.Of
}

func objectOf(t *testing.T, s structure.Structure) *structure.Object {
	t.Helper()
	obj, ok := s.(*structure.Object)
	require.True(t, ok, "expected *structure.Object, got %T", s)
	return obj
}

func orOf(t *testing.T, s structure.Structure) []structure.Structure {
	t.Helper()
	or, ok := s.(*structure.Or)
	require.True(t, ok, "expected *structure.Or, got %T", s)
	return or.Children
}

// optionalNull asserts s is Or{value, Null{CanBeOptional}} and returns value.
func optionalNull(t *testing.T, s structure.Structure) structure.Structure {
	t.Helper()
	children := orOf(t, s)
	require.Len(t, children, 2)
	assert.Equal(t, &structure.Null{CanBeOptional: true}, children[1])
	return children[0]
}

func TestInterpret_Everything(t *testing.T) {
	got := interpretQuery(t, "*")

	docs := orOf(t, arrayOf(t, got))
	require.Len(t, docs, 3)
	assert.Equal(t, "author", lazyName(t, docs[0]))
	assert.Equal(t, "category", lazyName(t, docs[1]))
	assert.Equal(t, "post", lazyName(t, docs[2]))
	assert.Equal(t, []string{"document", "post"}, docs[2].(*structure.Lazy).HashInput)
}

func TestInterpret_EverythingWithoutDocuments(t *testing.T) {
	in := New(testutil.EmptySchema())
	assert.Equal(t, &structure.Unknown{}, in.Interpret(&groq.Everything{}, NewScopes()))
}

func TestInterpret_DocumentShape(t *testing.T) {
	in := New(testutil.BlogSchema())
	doc, ok := in.Document("post")
	require.True(t, ok)

	obj := objectOf(t, structure.Resolve(doc))
	for _, key := range []string{"_id", "_type", "_createdAt", "_updatedAt", "_rev"} {
		attr, ok := obj.Lookup(key)
		require.True(t, ok, key)
		assert.False(t, attr.Optional, key)
	}

	typ, _ := obj.Lookup("_type")
	name, ok := structure.StringLiteral(typ.Value)
	require.True(t, ok)
	assert.Equal(t, "post", name)

	rating, _ := obj.Lookup("rating")
	assert.True(t, rating.Optional)
	assert.Equal(t, &structure.Number{CanBeOptional: true}, rating.Value)

	title, _ := obj.Lookup("title")
	assert.False(t, title.Optional)
	assert.Equal(t, &structure.String{}, title.Value)

	_, ok = in.Document("missing")
	assert.False(t, ok)
}

func TestInterpret_FilterNarrowing(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "equality", query: `*[_type == "post"]`, want: []string{"post"}},
		{name: "reversed equality", query: `*["post" == _type]`, want: []string{"post"}},
		{name: "this prefix", query: `*[@._type == "author"]`, want: []string{"author"}},
		{name: "in array", query: `*[_type in ["post", "author"]]`, want: []string{"author", "post"}},
		{name: "and intersects", query: `*[_type in ["post", "author"] && _type == "post"]`, want: []string{"post"}},
		{name: "and with unrelated test", query: `*[_type == "post" && defined(slug)]`, want: []string{"post"}},
		{name: "or unions", query: `*[_type == "post" || _type == "category"]`, want: []string{"category", "post"}},
		{name: "grouped", query: `*[(_type == "post")]`, want: []string{"post"}},
		{name: "undecidable keeps all", query: `*[defined(slug)]`, want: []string{"author", "category", "post"}},
		{name: "or with undecidable keeps all", query: `*[_type == "post" || defined(slug)]`, want: []string{"author", "category", "post"}},
		{name: "inequality keeps all", query: `*[_type != "post"]`, want: []string{"author", "category", "post"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elem := arrayOf(t, interpretQuery(t, tt.query))

			var got []string
			if or, ok := elem.(*structure.Or); ok {
				for _, c := range or.Children {
					got = append(got, lazyName(t, c))
				}
			} else {
				got = []string{lazyName(t, elem)}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpret_FilterMatchingNothing(t *testing.T) {
	elem := arrayOf(t, interpretQuery(t, `*[_type == "missing"]`))
	assert.Empty(t, orOf(t, elem))
}

func TestInterpret_FilterOnNonArray(t *testing.T) {
	got := interpretQuery(t, `*[_type == "post"][0][title == "x"]`)
	assert.Equal(t, &structure.Unknown{}, got)
}

func TestInterpret_ElementAndSlice(t *testing.T) {
	assert.Equal(t, "post", lazyName(t, interpretQuery(t, `*[_type == "post"][0]`)))
	assert.Equal(t, "post", lazyName(t, arrayOf(t, interpretQuery(t, `*[_type == "post"][0...5]`))))
	assert.Equal(t, "post", lazyName(t, arrayOf(t, interpretQuery(t, `*[_type == "post"] | order(title asc)[0..2]`))))
}

func TestInterpret_Projection(t *testing.T) {
	got := interpretQuery(t, `*[_type == "post"]{title, "authorName": author->name, status, rating, seo}`)
	obj := objectOf(t, arrayOf(t, got))

	assert.Equal(t, []string{"authorName", "rating", "seo", "status", "title"}, obj.SortedKeys())

	title, _ := obj.Lookup("title")
	assert.Equal(t, structure.Attribute{Value: &structure.String{}}, title)

	// Projected keys are always present; absence shows up as a null value.
	authorName, _ := obj.Lookup("authorName")
	assert.False(t, authorName.Optional)
	assert.Equal(t, &structure.String{}, optionalNull(t, authorName.Value))

	status, _ := obj.Lookup("status")
	statuses := orOf(t, status.Value)
	require.Len(t, statuses, 2)
	draft, _ := structure.StringLiteral(statuses[0])
	published, _ := structure.StringLiteral(statuses[1])
	assert.Equal(t, []string{"draft", "published"}, []string{draft, published})

	rating, _ := obj.Lookup("rating")
	assert.Equal(t, &structure.Number{CanBeOptional: true}, rating.Value)

	seo, _ := obj.Lookup("seo")
	seoType := optionalNull(t, seo.Value)
	assert.Equal(t, []string{"registered", "seo"}, seoType.(*structure.Lazy).HashInput)
}

func TestInterpret_SchemaDriftIsUnknown(t *testing.T) {
	obj := objectOf(t, arrayOf(t, interpretQuery(t, `*[_type == "post"]{nope, "x": title.deeper}`)))

	nope, _ := obj.Lookup("nope")
	assert.Equal(t, &structure.Unknown{}, nope.Value)
	x, _ := obj.Lookup("x")
	assert.Equal(t, &structure.Unknown{}, x.Value)
}

func TestInterpret_Deref(t *testing.T) {
	got := interpretQuery(t, `*[_type == "post"][0].author->`)
	assert.Equal(t, "author", lazyName(t, optionalNull(t, got)))

	// Arrays of references dereference element-wise.
	got = interpretQuery(t, `*[_type == "post"][0].categories[]->title`)
	assert.Equal(t, &structure.String{}, arrayOf(t, optionalNull(t, got)))
}

func TestInterpret_DerefUnknownTarget(t *testing.T) {
	in := New(testutil.BlogSchema())
	ref := &structure.Reference{To: "nowhere"}
	assert.Equal(t, &structure.Unknown{}, in.deref(ref))
	assert.Equal(t, &structure.Unknown{}, in.deref(&structure.String{}))
}

func TestInterpret_DerefNullableReference(t *testing.T) {
	in := New(testutil.BlogSchema())

	got := in.deref(&structure.Reference{To: "post", CanBeNull: true})
	children := orOf(t, got)
	require.Len(t, children, 2)
	assert.Equal(t, "post", lazyName(t, children[0]))
	assert.Equal(t, &structure.Null{}, children[1])
}

func TestInterpret_ParentScope(t *testing.T) {
	got := interpretQuery(t, `*[_type == "post"]{"author": author->{name, "postTitle": ^.title}}`)
	obj := objectOf(t, arrayOf(t, got))

	author, _ := obj.Lookup("author")
	inner := objectOf(t, optionalNull(t, author.Value))

	postTitle, _ := inner.Lookup("postTitle")
	assert.Equal(t, &structure.String{}, postTitle.Value)
	name, _ := inner.Lookup("name")
	assert.Equal(t, &structure.String{}, name.Value)
}

func TestInterpret_Splat(t *testing.T) {
	got := interpretQuery(t, `*[_type in ["author", "post"]]{..., "kind": _type}`)
	variants := orOf(t, arrayOf(t, got))
	require.Len(t, variants, 2)

	author := objectOf(t, variants[0])
	_, ok := author.Lookup("name")
	assert.True(t, ok)
	kind, _ := author.Lookup("kind")
	name, _ := structure.StringLiteral(kind.Value)
	assert.Equal(t, "author", name)

	post := objectOf(t, variants[1])
	_, ok = post.Lookup("slug")
	assert.True(t, ok)
	_, ok = post.Lookup("name")
	assert.False(t, ok)
}

func TestInterpret_ConditionalSplat(t *testing.T) {
	got := interpretQuery(t, `*[_type == "post"]{title, _type == "post" => {rating, title}}`)
	obj := objectOf(t, arrayOf(t, got))

	rating, _ := obj.Lookup("rating")
	assert.True(t, rating.Optional)

	title, _ := obj.Lookup("title")
	assert.False(t, title.Optional)
	assert.Len(t, orOf(t, title.Value), 2)
}

func TestInterpret_SplatFanOutLimit(t *testing.T) {
	in := New(testutil.BlogSchema())
	splat := groq.MustParse(`{...}`)

	objects := func(n int) structure.Structure {
		children := make([]structure.Structure, n)
		for i := range children {
			children[i] = &structure.Object{Attributes: map[string]structure.Attribute{
				"n": {Value: &structure.Number{Value: structure.Float64Ptr(float64(i))}},
			}}
		}
		return &structure.Or{Children: children}
	}

	assert.Len(t, orOf(t, in.Interpret(splat, NewScopes(objects(3)))), 3)
	assert.Equal(t, &structure.Unknown{}, in.Interpret(splat, NewScopes(objects(maxVariants+1))))
}

func TestInterpret_RecursiveRegisteredType(t *testing.T) {
	got := interpretQuery(t, `*[_type == "post"][0].menu.children`)

	children := optionalNull(t, got)
	menuItem := arrayOf(t, optionalNull(t, children))
	assert.Equal(t, []string{"registered", "menuItem"}, menuItem.(*structure.Lazy).HashInput)

	// Traversals of the self-referencing type terminate.
	assert.True(t, structure.IsOptional(got))
	assert.NotEmpty(t, structure.Describe(got))
}

func TestInterpret_OptionalSelfReference(t *testing.T) {
	in := New(testutil.RecursiveSchema())
	doc, ok := in.Document("page")
	require.True(t, ok)

	// Building the document keeps registered fields lazy.
	page := objectOf(t, structure.Resolve(doc))
	head, _ := page.Lookup("head")
	assert.True(t, head.Optional)
	assert.Equal(t, "node", lazyName(t, head.Value))

	node := objectOf(t, structure.Resolve(head.Value))
	next, _ := node.Lookup("next")
	assert.True(t, next.Optional)
	assert.Equal(t, "node", lazyName(t, next.Value))

	got := in.Interpret(groq.MustParse(`*[_type == "page"]{head}`), NewScopes())
	projected, _ := objectOf(t, arrayOf(t, got)).Lookup("head")
	assert.Equal(t, "node", lazyName(t, optionalNull(t, projected.Value)))

	got = in.Interpret(groq.MustParse(`*[_type == "page"][0].head.next.next`), NewScopes())
	assert.True(t, structure.IsOptional(got))
	assert.NotEmpty(t, structure.Describe(got))
}

func TestInterpret_MutualReference(t *testing.T) {
	in := New(testutil.RecursiveSchema())

	got := in.Interpret(groq.MustParse(`*[_type == "page"][0].pair`), NewScopes())
	a := optionalNull(t, got)
	assert.Equal(t, "a", lazyName(t, a))

	b, _ := objectOf(t, structure.Resolve(a)).Lookup("b")
	assert.True(t, b.Optional)
	assert.Equal(t, "b", lazyName(t, b.Value))

	back, _ := objectOf(t, structure.Resolve(b.Value)).Lookup("a")
	assert.Equal(t, "a", lazyName(t, back.Value))

	got = in.Interpret(groq.MustParse(`*[_type == "page"][0].pair.b.a.b`), NewScopes())
	assert.True(t, structure.IsOptional(got))
}

func TestInterpret_RecursiveDocumentProjection(t *testing.T) {
	got := interpretQuery(t, `*[_type == "category"]{title, "parent": parent->{title, "parent": parent->}}`)
	obj := objectOf(t, arrayOf(t, got))

	parent, _ := obj.Lookup("parent")
	inner := objectOf(t, optionalNull(t, parent.Value))
	grand, _ := inner.Lookup("parent")
	assert.Equal(t, "category", lazyName(t, optionalNull(t, grand.Value)))
}

func TestInterpret_Literals(t *testing.T) {
	tests := []struct {
		query string
		want  structure.Structure
	}{
		{query: `"hi"`, want: &structure.String{Value: structure.StringPtr("hi")}},
		{query: `42`, want: &structure.Number{Value: structure.Float64Ptr(42)}},
		{query: `-1.5`, want: &structure.Number{Value: structure.Float64Ptr(-1.5)}},
		{query: `true`, want: &structure.Boolean{Value: structure.BoolPtr(true)}},
		{query: `null`, want: &structure.Null{}},
		{query: `$slug`, want: &structure.Unknown{}},
		{query: `@`, want: &structure.Unknown{}},
		{query: `^`, want: &structure.Unknown{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, interpretQuery(t, tt.query))
		})
	}
}

func TestInterpret_ArrayLiteral(t *testing.T) {
	assert.Empty(t, orOf(t, arrayOf(t, interpretQuery(t, `[]`))))

	got := arrayOf(t, interpretQuery(t, `[1, "a"]`))
	assert.Len(t, orOf(t, got), 2)

	// A splat contributes the element type of the spread array.
	got = arrayOf(t, interpretQuery(t, `[...*[_type == "post"]]`))
	assert.Equal(t, "post", lazyName(t, got))
}

func TestInterpret_Functions(t *testing.T) {
	tests := []struct {
		query string
		want  structure.Structure
	}{
		{query: `count(*)`, want: &structure.Number{}},
		{query: `math::sum(*[_type == "post"].rating)`, want: &structure.Number{}},
		{query: `defined(title)`, want: &structure.Boolean{}},
		{query: `lower("A")`, want: &structure.String{}},
		{query: `pt::text(body)`, want: &structure.String{}},
		{query: `now()`, want: &structure.String{}},
		{query: `geo::distance(a, b)`, want: &structure.Unknown{}},
		{query: `coalesce()`, want: &structure.Null{}},
		{query: `*[_type == "post"] | score(title match "x")`, want: nil},
		{query: `*[_type == "post"] | nope()`, want: &structure.Unknown{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := interpretQuery(t, tt.query)
			if tt.want == nil {
				assert.Equal(t, "post", lazyName(t, arrayOf(t, got)))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpret_Coalesce(t *testing.T) {
	obj := objectOf(t, arrayOf(t, interpretQuery(t, `*[_type == "post"]{"r": coalesce(rating, 0)}`)))
	r, _ := obj.Lookup("r")

	children := orOf(t, r.Value)
	require.Len(t, children, 2)
	assert.Equal(t, &structure.Number{CanBeOptional: true}, children[0])
	assert.Equal(t, &structure.Number{Value: structure.Float64Ptr(0)}, children[1])
}

func TestInterpret_Select(t *testing.T) {
	withFallback := orOf(t, interpretQuery(t, `select(true => "a", "b")`))
	assert.Len(t, withFallback, 2)

	noFallback := orOf(t, interpretQuery(t, `select(true => "a")`))
	require.Len(t, noFallback, 2)
	assert.Equal(t, &structure.Null{}, noFallback[1])

	assert.Equal(t, &structure.Unknown{}, interpretQuery(t, `select("a", "b")`))
}

func TestInterpret_Operators(t *testing.T) {
	tests := []struct {
		query string
		want  structure.Structure
	}{
		{query: `1 == 2`, want: &structure.Boolean{}},
		{query: `"a" in ["a"]`, want: &structure.Boolean{}},
		{query: `1 in 0..5`, want: &structure.Boolean{}},
		{query: `!true`, want: &structure.Boolean{}},
		{query: `true && false`, want: &structure.Boolean{}},
		{query: `2 * 3`, want: &structure.Number{}},
		{query: `2 ** 3`, want: &structure.Number{}},
		{query: `1 + 2`, want: &structure.Number{}},
		{query: `"a" + "b"`, want: &structure.String{}},
		{query: `1 + "b"`, want: &structure.Unknown{}},
		{query: `+1`, want: &structure.Number{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, interpretQuery(t, tt.query))
		})
	}
}

func TestInterpret_PlusArraysAndObjects(t *testing.T) {
	arr := arrayOf(t, interpretQuery(t, `[1] + ["x"]`))
	assert.Len(t, orOf(t, arr), 2)

	obj := objectOf(t, interpretQuery(t, `{"a": 1} + {"b": "x", "a": "y"}`))
	assert.Equal(t, []string{"a", "b"}, obj.SortedKeys())
	a, _ := obj.Lookup("a")
	assert.Equal(t, &structure.String{Value: structure.StringPtr("y")}, a.Value)
}

func TestInterpret_LogsDegradations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	in := New(testutil.BlogSchema(), WithLogger(logger))

	in.Interpret(groq.MustParse(`geo::distance(a, b)`), NewScopes())
	assert.Contains(t, buf.String(), "unsupported function")
	assert.Contains(t, buf.String(), "geo::distance")
}

func TestInterpret_UnknownSchemaType(t *testing.T) {
	s := testutil.BlogSchema()
	s.RegisteredTypes = nil

	in := New(s)
	doc, _ := in.Document("post")
	seo, _ := objectOf(t, structure.Resolve(doc)).Lookup("seo")
	assert.Equal(t, &structure.Unknown{}, seo.Value)
}
