package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, seq, digest, schema_path, query_count, alias_count, error_count, recorded_at`

// LatestRun returns the run with the highest seq. The bool is false when no
// run has been recorded.
func (s *Store) LatestRun(ctx context.Context) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT 1
	`)
	return scanOptionalRun(row)
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)
	return scanOptionalRun(row)
}

// FindRunByDigest returns the earliest run that produced digest.
func (s *Store) FindRunByDigest(ctx context.Context, digest string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE digest = ?
		ORDER BY seq ASC
		LIMIT 1
	`, digest)
	return scanOptionalRun(row)
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
//
// Returns an empty slice (not nil) if no run exists.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunQueries returns the queries of a run ordered by key.
func (s *Store) RunQueries(ctx context.Context, runID string) ([]RunQuery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, source, type_text
		FROM run_queries
		WHERE run_id = ?
		ORDER BY key COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run queries: %w", err)
	}
	defer rows.Close()

	queries := []RunQuery{}
	for rows.Next() {
		var q RunQuery
		if err := rows.Scan(&q.Key, &q.Source, &q.TypeText); err != nil {
			return nil, fmt.Errorf("scan run query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run queries: %w", err)
	}
	return queries, nil
}

// RunAliases returns the aliases of a run ordered by name.
func (s *Store) RunAliases(ctx context.Context, runID string) ([]RunAlias, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type_text
		FROM run_aliases
		WHERE run_id = ?
		ORDER BY name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run aliases: %w", err)
	}
	defer rows.Close()

	aliases := []RunAlias{}
	for rows.Next() {
		var a RunAlias
		if err := rows.Scan(&a.Name, &a.TypeText); err != nil {
			return nil, fmt.Errorf("scan run alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run aliases: %w", err)
	}
	return aliases, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var recordedAt string
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Digest,
		&run.SchemaPath,
		&run.QueryCount,
		&run.AliasCount,
		&run.ErrorCount,
		&recordedAt,
	)
	if err != nil {
		return Run{}, err
	}
	run.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse recorded_at of run %s: %w", run.ID, err)
	}
	return run, nil
}

func scanOptionalRun(row *sql.Row) (Run, bool, error) {
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("scan run: %w", err)
	}
	return run, true, nil
}
