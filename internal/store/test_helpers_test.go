package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/groqgen/internal/testutil"
)

// createTestStore creates a new store in a temporary directory with
// sequential run IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequenceIDGenerator()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one query and one alias.
func createTestRun(digest string) Run {
	return Run{
		Digest:     digest,
		SchemaPath: "schema.cue",
		RecordedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Queries:    []RunQuery{{Key: "AllPosts", Source: "queries.ts:1", TypeText: "Ref_a[]"}},
		Aliases:    []RunAlias{{Name: "Ref_a", TypeText: "{\n  title: string;\n}"}},
	}
}
