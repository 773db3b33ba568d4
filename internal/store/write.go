package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run is one recorded generation run.
type Run struct {
	ID         string
	Seq        int64
	Digest     string
	SchemaPath string
	QueryCount int
	AliasCount int
	ErrorCount int
	RecordedAt time.Time

	// Queries and Aliases are written by RecordRun. Reads that return runs
	// leave them empty; use RunQueries and RunAliases.
	Queries []RunQuery
	Aliases []RunAlias
}

// RunQuery is the printed type of one query of a run.
type RunQuery struct {
	Key      string
	Source   string
	TypeText string
}

// RunAlias is the printed type of one alias of a run.
type RunAlias struct {
	Name     string
	TypeText string
}

// RecordRun stores run with its queries and aliases in one transaction.
//
// The store assigns ID (when empty) and the next Seq; QueryCount and
// AliasCount are taken from the slices. The stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.NewID()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now()
	}
	run.QueryCount = len(run.Queries)
	run.AliasCount = len(run.Aliases)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, digest, schema_path, query_count, alias_count, error_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Digest,
		run.SchemaPath,
		run.QueryCount,
		run.AliasCount,
		run.ErrorCount,
		run.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := insertQueries(ctx, tx, run.ID, run.Queries); err != nil {
		return Run{}, err
	}
	if err := insertAliases(ctx, tx, run.ID, run.Aliases); err != nil {
		return Run{}, err
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

func insertQueries(ctx context.Context, tx *sql.Tx, runID string, queries []RunQuery) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_queries (run_id, key, source, type_text)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record run queries: %w", err)
	}
	defer stmt.Close()

	for _, q := range queries {
		if _, err := stmt.ExecContext(ctx, runID, q.Key, q.Source, q.TypeText); err != nil {
			return fmt.Errorf("record run query %q: %w", q.Key, err)
		}
	}
	return nil
}

func insertAliases(ctx context.Context, tx *sql.Tx, runID string, aliases []RunAlias) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_aliases (run_id, name, type_text)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record run aliases: %w", err)
	}
	defer stmt.Close()

	for _, a := range aliases {
		if _, err := stmt.ExecContext(ctx, runID, a.Name, a.TypeText); err != nil {
			return fmt.Errorf("record run alias %q: %w", a.Name, err)
		}
	}
	return nil
}
