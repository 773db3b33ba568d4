package schema

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogSchema() *Schema {
	return &Schema{
		Documents: []*Document{
			{
				Name: "author",
				Fields: []Field{
					{Name: "name", Def: &Def{Type: TypeString, Required: true}},
					{Name: "seo", Def: &Def{Type: "seo"}},
				},
			},
			{
				Name:  "post",
				Title: "Post",
				Fields: []Field{
					{Name: "title", Def: &Def{Type: TypeString, Required: true}},
					{Name: "author", Def: &Def{Type: TypeReference, To: []string{"author"}}},
					{Name: "status", Def: &Def{Type: TypeString, List: []any{"draft", "published"}}},
					{Name: "tags", Def: &Def{Type: TypeArray, Of: []*Def{{Type: TypeString}}}},
				},
			},
		},
		RegisteredTypes: []*RegisteredType{
			{Name: "seo", Def: &Def{Type: TypeObject, Fields: []Field{
				{Name: "metaTitle", Def: &Def{Type: TypeString}},
			}}},
		},
	}
}

func TestLoadFile_Formats(t *testing.T) {
	for _, name := range []string{"blog.yaml", "blog.json", "blog.cue"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadFile(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, blogSchema(), s)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema")
}

func TestLoad_CompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		src      string
		field    string
		message  string
	}{
		{
			name:     "unsupported format",
			filename: "schema.toml",
			src:      "",
			field:    "file",
			message:  "unsupported schema format",
		},
		{
			name:     "missing documents",
			filename: "schema.json",
			src:      `{"types": {}}`,
			field:    "documents",
			message:  "documents is required",
		},
		{
			name:     "missing field type",
			filename: "schema.json",
			src:      `{"documents": {"post": {"fields": {"title": {}}}}}`,
			field:    "documents.post.fields.title.type",
			message:  "type is required",
		},
		{
			name:     "unknown type",
			filename: "schema.json",
			src:      `{"documents": {"post": {"fields": {"x": {"type": "mystery"}}}}}`,
			field:    "documents.post.fields.x.type",
			message:  `unknown type "mystery"`,
		},
		{
			name:     "reference to non-document",
			filename: "schema.json",
			src:      `{"documents": {"post": {"fields": {"x": {"type": "reference", "to": ["nope"]}}}}}`,
			field:    "documents.post.fields.x.to",
			message:  `reference target "nope" is not a document type`,
		},
		{
			name:     "reference without target",
			filename: "schema.json",
			src:      `{"documents": {"post": {"fields": {"x": {"type": "reference"}}}}}`,
			field:    "documents.post.fields.x.to",
			message:  "at least one target",
		},
		{
			name:     "array without members",
			filename: "schema.yaml",
			src:      "documents:\n  post:\n    fields:\n      tags:\n        type: array\n",
			field:    "documents.post.fields.tags.of",
			message:  "array types need of",
		},
		{
			name:     "fields on a scalar",
			filename: "schema.yaml",
			src:      "documents:\n  post:\n    fields:\n      title:\n        type: string\n        fields: {}\n",
			field:    "documents.post.fields.title.fields",
			message:  "not allowed",
		},
		{
			name:     "document shadows builtin",
			filename: "schema.json",
			src:      `{"documents": {"string": {"fields": {}}}}`,
			field:    "documents.string",
			message:  "shadows a built-in type",
		},
		{
			name:     "document and type share a name",
			filename: "schema.json",
			src:      `{"documents": {"seo": {"fields": {}}}, "types": {"seo": {"type": "string"}}}`,
			field:    "documents.seo",
			message:  "also used by a registered type",
		},
		{
			name:     "non-boolean required",
			filename: "schema.json",
			src:      `{"documents": {"post": {"fields": {"x": {"type": "string", "codegen": {"required": "yes"}}}}}}`,
			field:    "documents.post.fields.x.codegen.required",
			message:  "must be a boolean",
		},
		{
			name:     "cue syntax error",
			filename: "schema.cue",
			src:      "documents: {",
			field:    "cue",
			message:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.filename, []byte(tt.src))
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "want *CompileError, got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.message)
		})
	}
}

func TestCompileError_Position(t *testing.T) {
	_, err := Load("schema.json", []byte("{\n  \"documents\": {\"post\": {\"fields\": {\"title\": {}}}}\n}"))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	require.True(t, ce.Pos.IsValid())
	assert.Equal(t, 2, ce.Pos.Line())
	assert.Contains(t, err.Error(), "schema.json:2:")
}

func TestSchemaLookups(t *testing.T) {
	s := blogSchema()

	doc, ok := s.Document("post")
	require.True(t, ok)
	assert.Equal(t, "Post", doc.Title)

	_, ok = s.Document("comment")
	assert.False(t, ok)

	seo, ok := s.RegisteredType("seo")
	require.True(t, ok)
	assert.Equal(t, TypeObject, seo.Def.Type)

	assert.Equal(t, []string{"author", "post"}, s.DocumentNames())
	assert.True(t, IsBuiltin(TypeSlug))
	assert.False(t, IsBuiltin("seo"))
}
