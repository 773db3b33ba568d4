package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/groqgen/internal/codegen"
	"github.com/roach88/groqgen/internal/pluck"
	"github.com/roach88/groqgen/internal/schema"
	"github.com/roach88/groqgen/internal/store"
	"github.com/roach88/groqgen/internal/tstype"
)

// QueryReport is one converted query in command output.
type QueryReport struct {
	Key    string `json:"key"`
	Source string `json:"source,omitempty"`
	Type   string `json:"type"`
}

// AliasReport is one shared alias in command output.
type AliasReport struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ProblemReport is a query or source file that could not be converted.
type ProblemReport struct {
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

// generation is the outcome of converting every configured query.
type generation struct {
	SchemaPath string
	Result     *codegen.Result
	Sources    map[string]string // query key -> source position
	Problems   []ProblemReport
}

// addSourceFlags registers the flags that select the schema and queries.
// Values are read back through the config layer.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", "", "schema file (.cue, .json, .yaml)")
	cmd.Flags().String("manifest", "", "YAML manifest of query keys to queries (skips source scanning)")
	cmd.Flags().String("root", "", "directory scanned for groq-tagged queries (default: project root)")
	cmd.Flags().StringSlice("include", nil, "glob of source files to scan, relative to --root (repeatable)")
	cmd.Flags().StringSlice("exclude", nil, "glob of source files to skip (repeatable)")
	cmd.Flags().Int("workers", 0, "queries converted concurrently (default: GOMAXPROCS)")
	cmd.Flags().Int("cache-size", 0, "parsed queries kept in memory")
}

// generate loads the schema and queries and converts them. Fatal problems
// are reported through formatter and returned as an *ExitError; per-query
// and per-file problems are collected in the generation.
func (o *RootOptions) generate(ctx context.Context, formatter *OutputFormatter) (*generation, error) {
	cfg := o.Config
	if cfg.Schema == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeSchema,
			errors.New("no schema configured: pass --schema or set schema in groqgen.yaml"))
	}

	formatter.VerboseLog("Loading schema %s", cfg.Schema)
	s, err := schema.LoadFile(cfg.Schema)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeSchema, err)
	}

	gen := &generation{SchemaPath: cfg.Schema, Sources: map[string]string{}}
	queries, err := o.collectQueries(ctx, gen, formatter)
	if err != nil {
		return nil, err
	}
	formatter.VerboseLog("Converting %d queries", len(queries))

	g, err := codegen.New(s, codegen.Options{
		Workers:   cfg.Workers,
		CacheSize: cfg.CacheSize,
		Logger:    o.Logger,
	})
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	result, err := g.Generate(ctx, queries)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, errorCode(err), err)
	}
	gen.Result = result

	for _, qe := range result.Errors {
		gen.Problems = append(gen.Problems, ProblemReport{
			Code:    errorCode(qe),
			Source:  qe.Source,
			Message: fmt.Sprintf("query %s: %v", qe.Key, qe.Err),
		})
	}
	return gen, nil
}

func (o *RootOptions) collectQueries(ctx context.Context, gen *generation, formatter *OutputFormatter) ([]codegen.Query, error) {
	cfg := o.Config

	var found []pluck.Query
	if cfg.Manifest != "" {
		formatter.VerboseLog("Reading manifest %s", cfg.Manifest)
		qs, err := pluck.Manifest(cfg.Manifest)
		if err != nil {
			return nil, formatter.Fail(ExitCommandError, ErrCodeQuerySource, err)
		}
		found = qs
	} else {
		formatter.VerboseLog("Scanning %s for queries", cfg.Root)
		qs, errs := pluck.Files(ctx, cfg.Root, cfg.Include, cfg.Exclude)
		for _, err := range errs {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
			}
			problem := ProblemReport{Code: ErrCodeQuerySource, Message: err.Error()}
			var pe *pluck.Error
			if errors.As(err, &pe) {
				problem.Source = fmt.Sprintf("%s:%d", pe.File, pe.Line)
				problem.Message = pe.Message
			}
			gen.Problems = append(gen.Problems, problem)
		}
		found = qs
	}

	queries := make([]codegen.Query, len(found))
	for i, q := range found {
		queries[i] = codegen.Query{Key: q.Key, Text: q.Text, Source: q.Source()}
		gen.Sources[q.Key] = q.Source()
	}
	return queries, nil
}

// queryReports returns the converted queries in key order.
func (g *generation) queryReports() []QueryReport {
	reports := make([]QueryReport, len(g.Result.Queries))
	for i, q := range g.Result.Queries {
		reports[i] = QueryReport{Key: q.Key, Source: g.Sources[q.Key], Type: tstype.Print(q.Type)}
	}
	return reports
}

// aliasReports returns the shared aliases in name order.
func (g *generation) aliasReports() []AliasReport {
	reports := make([]AliasReport, len(g.Result.References))
	for i, a := range g.Result.References {
		reports[i] = AliasReport{Name: a.Name, Type: tstype.Print(a.Type)}
	}
	return reports
}

// run converts the generation into a run for the history store.
func (g *generation) run() store.Run {
	run := store.Run{
		Digest:     g.Result.Digest(),
		SchemaPath: g.SchemaPath,
		ErrorCount: len(g.Problems),
	}
	for _, q := range g.queryReports() {
		run.Queries = append(run.Queries, store.RunQuery{Key: q.Key, Source: q.Source, TypeText: q.Type})
	}
	for _, a := range g.aliasReports() {
		run.Aliases = append(run.Aliases, store.RunAlias{Name: a.Name, TypeText: a.Type})
	}
	return run
}

// openHistory opens the run history database, creating its directory.
func (o *RootOptions) openHistory() (*store.Store, error) {
	path := o.Config.History
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	var opts []store.Option
	if o.IDs != nil {
		opts = append(opts, store.WithIDGenerator(o.IDs))
	}
	s, err := store.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return s, nil
}

// recordRun stores the generation as a new run.
func (o *RootOptions) recordRun(ctx context.Context, hist *store.Store, gen *generation) (store.Run, error) {
	run := gen.run()
	run.RecordedAt = o.now()
	recorded, err := hist.RecordRun(ctx, run)
	if err != nil {
		return store.Run{}, err
	}
	o.Logger.Info("recorded run",
		"run", recorded.ID,
		"seq", recorded.Seq,
		"digest", recorded.Digest,
	)
	return recorded, nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printProblems prints problems in text form.
func printProblems(formatter *OutputFormatter, problems []ProblemReport) {
	for _, p := range problems {
		if p.Source != "" {
			fmt.Fprintf(formatter.Writer, "✗ %s\n  %s: %s\n", p.Source, p.Code, p.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", p.Code, p.Message)
		}
	}
}
