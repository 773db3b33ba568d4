package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/groqgen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// HistoryRun is one run in history output.
type HistoryRun struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Digest     string    `json:"digest"`
	SchemaPath string    `json:"schema_path"`
	Queries    int       `json:"queries"`
	Aliases    int       `json:"aliases"`
	Errors     int       `json:"errors"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryDetail is the JSON payload of history <run-id>.
type HistoryDetail struct {
	HistoryRun
	QueryTypes []QueryReport `json:"query_types"`
	AliasTypes []AliasReport `json:"alias_types"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or show the types of one run",
		Long: `List recorded generation runs, newest first.

With a run ID, print the type of every query and alias that run produced.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(opts, cmd, args[0])
			}
			return runHistoryList(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	cmd.Flags().String("history", "", "run history database (default: .groqgen/history.db)")

	return cmd
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	hist, err := opts.openHistory()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}
	defer hist.Close()

	runs, err := hist.ListRuns(ctx, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}

	list := make([]HistoryRun, len(runs))
	for i, r := range runs {
		list[i] = historyRun(r)
	}

	if formatter.JSON() {
		return formatter.Success(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tRECORDED\tQUERIES\tALIASES\tERRORS\tDIGEST")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Seq, r.ID, r.RecordedAt.UTC().Format(time.RFC3339),
			r.Queries, r.Aliases, r.Errors, shortDigest(r.Digest))
	}
	return tw.Flush()
}

func runHistoryShow(opts *HistoryOptions, cmd *cobra.Command, id string) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	hist, err := opts.openHistory()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}
	defer hist.Close()

	run, ok, err := hist.GetRun(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Errorf("run %q not found", id))
	}
	queries, err := hist.RunQueries(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}
	aliases, err := hist.RunAliases(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}

	detail := HistoryDetail{HistoryRun: historyRun(run)}
	for _, q := range queries {
		detail.QueryTypes = append(detail.QueryTypes, QueryReport{Key: q.Key, Source: q.Source, Type: q.TypeText})
	}
	for _, a := range aliases {
		detail.AliasTypes = append(detail.AliasTypes, AliasReport{Name: a.Name, Type: a.TypeText})
	}

	if formatter.JSON() {
		return formatter.Success(detail)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (seq %d) recorded %s\n", run.ID, run.Seq, run.RecordedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "schema: %s\ndigest: %s\n", run.SchemaPath, run.Digest)
	if len(detail.QueryTypes) > 0 {
		fmt.Fprintln(w, "\nQueries:")
		for _, q := range detail.QueryTypes {
			fmt.Fprintf(w, "  %s: %s\n", q.Key, q.Type)
		}
	}
	if len(detail.AliasTypes) > 0 {
		fmt.Fprintln(w, "\nAliases:")
		for _, a := range detail.AliasTypes {
			fmt.Fprintf(w, "  %s: %s\n", a.Name, a.Type)
		}
	}
	return nil
}

func historyRun(r store.Run) HistoryRun {
	return HistoryRun{
		ID:         r.ID,
		Seq:        r.Seq,
		Digest:     r.Digest,
		SchemaPath: r.SchemaPath,
		Queries:    r.QueryCount,
		Aliases:    r.AliasCount,
		Errors:     r.ErrorCount,
		RecordedAt: r.RecordedAt,
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
