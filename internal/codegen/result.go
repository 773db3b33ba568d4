package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/roach88/groqgen/internal/lower"
	"github.com/roach88/groqgen/internal/structure"
	"github.com/roach88/groqgen/internal/tstype"
)

// QueryResult is the converted form of one query.
type QueryResult struct {
	Key       string
	Structure structure.Structure
	Type      tstype.Type
}

// Result is the outcome of a batch. Queries, References and Errors are each
// sorted by key.
type Result struct {
	Queries    []QueryResult
	References []lower.Alias
	Errors     []*QueryError
}

// Render returns the declaration file for the converted queries.
func (r *Result) Render() string {
	queries := make(map[string]tstype.Type, len(r.Queries))
	for _, q := range r.Queries {
		queries[q.Key] = q.Type
	}
	refs := make(map[string]tstype.Type, len(r.References))
	for _, a := range r.References {
		refs[a.Name] = a.Type
	}
	return tstype.RenderDeclarations(queries, refs)
}

// Digest returns the hex SHA-256 of the rendered declaration file. Equal
// inputs always produce equal digests.
func (r *Result) Digest() string {
	sum := sha256.Sum256([]byte(r.Render()))
	return hex.EncodeToString(sum[:])
}

// Err joins the per-query errors, or returns nil when every query converted.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// TypeText returns the printed type of the query with the given key.
func (r *Result) TypeText(key string) (string, bool) {
	for _, q := range r.Queries {
		if q.Key == key {
			return tstype.Print(q.Type), true
		}
	}
	return "", false
}
