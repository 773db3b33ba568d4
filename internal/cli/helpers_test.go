package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/groqgen/internal/testutil"
)

const testSchema = `documents:
  post:
    fields:
      title:
        type: string
        codegen:
          required: true
      author:
        type: reference
        to: [author]
  author:
    fields:
      name:
        type: string
        codegen:
          required: true
      seo:
        type: seo
types:
  seo:
    type: object
    fields:
      metaTitle:
        type: string
`

const testManifest = `PostTitles: '*[_type == "post"].title'
AuthorNames: '*[_type == "author"].name'
PostCount: 'count(*[_type == "post"])'
`

const testSource = "import groq from 'groq';\n" +
	"\n" +
	"export const titles = query('PostTitles', groq`*[_type == \"post\"].title`);\n" +
	"export const count = query('PostCount', groq`count(*[_type == \"post\"])`);\n"

// newProject creates a project directory with a schema, a manifest and one
// source file, and makes it the working directory.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeProjectFile(t, dir, "schema.yaml", testSchema)
	writeProjectFile(t, dir, "queries.yaml", testManifest)
	writeProjectFile(t, dir, "src/queries.ts", testSource)
	t.Chdir(dir)
	return dir
}

func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testOptions returns options with deterministic run IDs and timestamps.
func testOptions() *RootOptions {
	clock := testutil.NewStepClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Minute)
	return &RootOptions{
		Now: clock.Now,
		IDs: testutil.NewSequenceIDGenerator(),
	}
}

type cliResult struct {
	Code   int
	Stdout string
	Stderr string
}

func runCLI(t *testing.T, opts *RootOptions, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), opts, args, &stdout, &stderr)
	return cliResult{Code: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// decodeResponse decodes a JSON CLIResponse whose data has type T.
func decodeResponse[T any](t *testing.T, out string) (string, T, *CLIError) {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp.Status, resp.Data, resp.Error
}
