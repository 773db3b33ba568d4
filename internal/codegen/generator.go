// Package codegen drives batches of GROQ queries through parsing,
// interpretation and lowering, and assembles the declaration file.
//
// Queries are converted concurrently by a bounded pool of workers that share
// one reference table, so a shape reached by several queries is emitted as a
// single alias. A query that fails to parse is reported in the Result and does
// not stop the rest of the batch.
package codegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/groqgen/internal/groq"
	"github.com/roach88/groqgen/internal/interpret"
	"github.com/roach88/groqgen/internal/lower"
	"github.com/roach88/groqgen/internal/schema"
	"github.com/roach88/groqgen/internal/structure"
	"github.com/roach88/groqgen/internal/tstype"
)

// DefaultCacheSize is the number of parsed queries kept when Options leaves
// CacheSize unset.
const DefaultCacheSize = 256

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Query is one named query of a batch. Source says where it came from and is
// only used in messages.
type Query struct {
	Key    string
	Text   string
	Source string
}

// Options configures a Generator. Zero values select defaults.
type Options struct {
	// Workers bounds the number of queries converted at once. Defaults to
	// GOMAXPROCS.
	Workers int

	// CacheSize is the capacity of the parsed-query cache.
	CacheSize int

	Logger *slog.Logger
}

// Generator converts query batches against one schema.
//
// Thread-safety: a Generator may be shared. Each Generate call owns its own
// reference table.
type Generator struct {
	interp  *interpret.Interpreter
	parsed  *lru.Cache[string, groq.Node]
	workers int
	logger  *slog.Logger
}

// New creates a generator for s.
func New(s *schema.Schema, opts Options) (*Generator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	parsed, err := lru.New[string, groq.Node](size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	return &Generator{
		interp:  interpret.New(s, interpret.WithLogger(logger)),
		parsed:  parsed,
		workers: workers,
		logger:  logger,
	}, nil
}

// Parse parses text, reusing the tree of an identical query parsed earlier.
// Trees are never mutated after parsing, so sharing them is safe.
func (g *Generator) Parse(text string) (groq.Node, error) {
	if node, ok := g.parsed.Get(text); ok {
		return node, nil
	}
	node, err := groq.Parse(text)
	if err != nil {
		return nil, err
	}
	g.parsed.Add(text, node)
	return node, nil
}

// Generate converts every query of the batch.
//
// It fails before converting anything if a key is empty, duplicated or not a
// valid TypeScript identifier. Cancelling ctx stops scheduling further
// queries; queries already running complete, and Generate returns the context
// error.
func (g *Generator) Generate(ctx context.Context, queries []Query) (*Result, error) {
	if err := validateKeys(queries); err != nil {
		return nil, err
	}

	refs := lower.NewContext()
	results := make([]*QueryResult, len(queries))
	failures := make([]*QueryError, len(queries))
	var done atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, q := range queries {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			node, err := g.Parse(q.Text)
			if err != nil {
				failures[i] = &QueryError{Key: q.Key, Source: q.Source, Err: err}
				g.logger.Warn("query failed to parse",
					slog.String("key", q.Key),
					slog.String("source", q.Source),
					slog.String("error", err.Error()),
				)
			} else {
				s := g.interp.Interpret(node, interpret.NewScopes())
				results[i] = &QueryResult{Key: q.Key, Structure: s, Type: lower.Lower(s, refs)}
			}

			n := done.Add(1)
			g.logger.Debug("converted query",
				slog.String("key", q.Key),
				slog.String("progress", fmt.Sprintf("%d/%d", n, len(queries))),
			)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{References: refs.References()}
	for i := range queries {
		if results[i] != nil {
			result.Queries = append(result.Queries, *results[i])
		}
		if failures[i] != nil {
			result.Errors = append(result.Errors, failures[i])
		}
	}
	slices.SortFunc(result.Queries, func(a, b QueryResult) int { return strings.Compare(a.Key, b.Key) })
	slices.SortFunc(result.Errors, func(a, b *QueryError) int { return strings.Compare(a.Key, b.Key) })

	g.logger.Info("converted queries",
		slog.Int("queries", len(result.Queries)),
		slog.Int("aliases", len(result.References)),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// Explain converts a single query and returns its structure, its type and the
// aliases that type refers to.
func (g *Generator) Explain(text string) (structure.Structure, tstype.Type, []lower.Alias, error) {
	node, err := g.Parse(text)
	if err != nil {
		return nil, nil, nil, err
	}
	refs := lower.NewContext()
	s := g.interp.Interpret(node, interpret.NewScopes())
	return s, lower.Lower(s, refs), refs.References(), nil
}

func validateKeys(queries []Query) error {
	seen := make(map[string]string, len(queries))
	for _, q := range queries {
		if q.Key == "" {
			return fmt.Errorf("%w (%s)", ErrEmptyKey, q.Source)
		}
		if !identifier.MatchString(q.Key) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, q.Key)
		}
		if prev, ok := seen[q.Key]; ok {
			return fmt.Errorf("%w %q: %s and %s", ErrDuplicateKey, q.Key, prev, q.Source)
		}
		seen[q.Key] = q.Source
	}
	return nil
}
