package pluck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const querySource = "import groq from 'groq';\n" +
	"import { query } from './client';\n" +
	"\n" +
	"export const postTitles = query('PostTitles', groq`*[_type == \"post\"]{title}`);\n" +
	"\n" +
	"const other = client.query(\"AuthorNames\", groq`\n" +
	"  *[_type == \"author\"].name\n" +
	"`);\n" +
	"\n" +
	"// query('Commented', groq`*`)\n" +
	"const plain = query('Plain', `*`);\n" +
	"const dynamic = query('Dynamic', groq`*[_type == ${kind}]`);\n" +
	"const escaped = query('Escaped', groq`*[title == \"\\`x\\`\"]`);\n"

func TestSource(t *testing.T) {
	queries, errs := Source(context.Background(), "queries.ts", []byte(querySource))

	require.Len(t, queries, 3)
	assert.Equal(t, Query{Key: "PostTitles", Text: `*[_type == "post"]{title}`, File: "queries.ts", Line: 4}, queries[0])
	assert.Equal(t, Query{Key: "AuthorNames", Text: "\n  *[_type == \"author\"].name\n", File: "queries.ts", Line: 6}, queries[1])
	assert.Equal(t, "*[title == \"`x`\"]", queries[2].Text)
	assert.Equal(t, "queries.ts:4", queries[0].Source())

	require.Len(t, errs, 1)
	var perr *Error
	require.True(t, errors.As(errs[0], &perr))
	assert.Equal(t, 12, perr.Line)
	assert.Contains(t, perr.Message, `"Dynamic"`)
}

func TestSource_Languages(t *testing.T) {
	src := []byte("const q = query('All', groq`*`);\n")
	for _, name := range []string{"a.js", "a.jsx", "a.mjs", "a.cjs", "a.ts", "a.mts", "a.cts", "a.tsx"} {
		t.Run(name, func(t *testing.T) {
			queries, errs := Source(context.Background(), name, src)
			assert.Empty(t, errs)
			require.Len(t, queries, 1)
			assert.Equal(t, "All", queries[0].Key)
			assert.Equal(t, "*", queries[0].Text)
		})
	}
}

func TestSource_NonLiteralKey(t *testing.T) {
	queries, errs := Source(context.Background(), "a.ts", []byte("query(name, groq`*`);\n"))
	assert.Empty(t, queries)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "a.ts:1:7: query key must be a string literal")
}

func TestSource_Unsupported(t *testing.T) {
	_, errs := Source(context.Background(), "a.py", []byte("query('A', groq`*`)"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unsupported source language")
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/b.tsx", "export const b = query('B', groq`*[_type == \"b\"]`);\n")
	writeFile(t, root, "src/a.ts", "export const a = query('A', groq`*[_type == \"a\"]`);\n")
	writeFile(t, root, "src/a.test.ts", "query('Test', groq`*`);\n")
	writeFile(t, root, "node_modules/lib/index.js", "query('Vendored', groq`*`);\n")
	writeFile(t, root, "README.md", "query('Doc', groq`*`)\n")

	paths, err := Match(root, []string{"**/*"}, []string{"**/*.test.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts", "src/b.tsx"}, paths)

	queries, errs := Files(context.Background(), root, []string{"**/*"}, []string{"**/*.test.ts"})
	assert.Empty(t, errs)
	require.Len(t, queries, 2)
	assert.Equal(t, "A", queries[0].Key)
	assert.Equal(t, filepath.FromSlash("src/a.ts"), queries[0].File)
	assert.Equal(t, "B", queries[1].Key)
}

func TestFiles_InvalidPattern(t *testing.T) {
	_, err := Match(t.TempDir(), []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestFiles_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", "query('A', groq`*`);\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queries, errs := Files(ctx, root, []string{"**/*.ts"}, nil)
	assert.Empty(t, queries)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}
