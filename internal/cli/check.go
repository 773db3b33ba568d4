package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/groqgen/internal/store"
)

// Change statuses reported by check.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
	ChangeChanged = "changed"
)

// Change is one query or alias whose type differs from the previous run.
type Change struct {
	Kind   string `json:"kind"` // "query" | "alias"
	Name   string `json:"name"`
	Status string `json:"status"`
}

// RunSummary identifies a recorded run.
type RunSummary struct {
	ID     string `json:"id"`
	Seq    int64  `json:"seq"`
	Digest string `json:"digest"`
}

// CheckReport is the JSON payload of check.
type CheckReport struct {
	Digest   string          `json:"digest"`
	Run      RunSummary      `json:"run"`
	Previous *RunSummary     `json:"previous,omitempty"`
	Matches  *RunSummary     `json:"matches,omitempty"` // earliest run with the same digest
	Drift    bool            `json:"drift"`
	Changes  []Change        `json:"changes,omitempty"`
	Output   string          `json:"output,omitempty"`
	Stale    bool            `json:"stale"`
	Problems []ProblemReport `json:"problems,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Regenerate and compare against the latest recorded run",
		Long: `Regenerate declarations and compare them with the latest recorded run.

The new run is always recorded. The command exits with status 1 when the
output differs from the previous run (drift), when the configured --output
file is missing or out of date, or when any query fails to convert.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "declaration file expected to be up to date")
	cmd.Flags().String("history", "", "run history database (default: .groqgen/history.db)")

	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)
	cfg := opts.Config

	gen, err := opts.generate(ctx, formatter)
	if err != nil {
		return err
	}

	hist, err := opts.openHistory()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}
	defer hist.Close()

	previous, hasPrevious, err := hist.LatestRun(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}

	run, err := opts.recordRun(ctx, hist, gen)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
	}

	report := CheckReport{
		Digest:   run.Digest,
		Run:      summarize(run),
		Output:   cfg.Output,
		Problems: gen.Problems,
	}

	if hasPrevious {
		prev := summarize(previous)
		report.Previous = &prev
		if previous.Digest != run.Digest {
			report.Drift = true
			report.Changes, err = diffRuns(ctx, hist, previous.ID, run.ID)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
			}
			earliest, ok, err := hist.FindRunByDigest(ctx, run.Digest)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
			}
			if ok && earliest.ID != run.ID {
				m := summarize(earliest)
				report.Matches = &m
			}
		}
	}

	if cfg.Output != "" {
		stale, err := isStale(cfg.Output, gen.Result.Render())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
		report.Stale = stale
	}

	opts.Logger.Debug("checked run",
		"run", run.ID,
		"drift", report.Drift,
		"stale", report.Stale,
		"problems", len(report.Problems),
	)
	return outputCheck(formatter, report)
}

func summarize(r store.Run) RunSummary {
	return RunSummary{ID: r.ID, Seq: r.Seq, Digest: r.Digest}
}

// isStale reports whether the file at path is missing or differs from want.
func isStale(path, want string) (bool, error) {
	got, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(got) != want, nil
}

// diffRuns compares the printed types of two runs. Changes are ordered
// queries first, then aliases, each by name.
func diffRuns(ctx context.Context, hist *store.Store, prevID, curID string) ([]Change, error) {
	prevQueries, err := hist.RunQueries(ctx, prevID)
	if err != nil {
		return nil, err
	}
	curQueries, err := hist.RunQueries(ctx, curID)
	if err != nil {
		return nil, err
	}
	prevAliases, err := hist.RunAliases(ctx, prevID)
	if err != nil {
		return nil, err
	}
	curAliases, err := hist.RunAliases(ctx, curID)
	if err != nil {
		return nil, err
	}

	changes := diffTexts("query", queryTexts(prevQueries), queryTexts(curQueries))
	changes = append(changes, diffTexts("alias", aliasTexts(prevAliases), aliasTexts(curAliases))...)
	return changes, nil
}

func queryTexts(qs []store.RunQuery) map[string]string {
	m := make(map[string]string, len(qs))
	for _, q := range qs {
		m[q.Key] = q.TypeText
	}
	return m
}

func aliasTexts(as []store.RunAlias) map[string]string {
	m := make(map[string]string, len(as))
	for _, a := range as {
		m[a.Name] = a.TypeText
	}
	return m
}

func diffTexts(kind string, prev, cur map[string]string) []Change {
	var changes []Change
	for name, text := range cur {
		old, ok := prev[name]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: kind, Name: name, Status: ChangeAdded})
		case old != text:
			changes = append(changes, Change{Kind: kind, Name: name, Status: ChangeChanged})
		}
	}
	for name := range prev {
		if _, ok := cur[name]; !ok {
			changes = append(changes, Change{Kind: kind, Name: name, Status: ChangeRemoved})
		}
	}
	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Name, b.Name) })
	return changes
}

func outputCheck(formatter *OutputFormatter, report CheckReport) error {
	code, message := checkFailure(report)

	if formatter.JSON() {
		if code != "" {
			_ = formatter.Failure(code, message, report.Changes, report)
			return NewExitError(ExitFailure, message)
		}
		return formatter.Success(report)
	}

	w := formatter.Writer
	printProblems(formatter, report.Problems)
	if report.Previous == nil {
		fmt.Fprintf(w, "First recorded run %s (seq %d)\n", report.Run.ID, report.Run.Seq)
	} else if report.Drift {
		fmt.Fprintf(w, "✗ Output differs from run %s (seq %d)\n", report.Previous.ID, report.Previous.Seq)
		for _, c := range report.Changes {
			fmt.Fprintf(w, "  %-8s %s %s\n", c.Status, c.Kind, c.Name)
		}
		if report.Matches != nil {
			fmt.Fprintf(w, "  identical to earlier run %s (seq %d)\n", report.Matches.ID, report.Matches.Seq)
		}
	} else {
		fmt.Fprintf(w, "✓ Output matches run %s (seq %d)\n", report.Previous.ID, report.Previous.Seq)
	}
	if report.Stale {
		fmt.Fprintf(w, "✗ %s is out of date; run groqgen generate\n", report.Output)
	}
	fmt.Fprintf(w, "Recorded run %s\ndigest: %s\n", report.Run.ID, report.Digest)

	if code != "" {
		return NewExitError(ExitFailure, message)
	}
	return nil
}

// checkFailure returns the code and message of the most important failure,
// or empty strings when the check passed.
func checkFailure(report CheckReport) (string, string) {
	switch {
	case len(report.Problems) > 0:
		return ErrCodeQueryFailed, fmt.Sprintf("%d problem(s) while generating", len(report.Problems))
	case report.Drift:
		return ErrCodeDrift, fmt.Sprintf("%d change(s) since run %s", len(report.Changes), report.Previous.ID)
	case report.Stale:
		return ErrCodeStaleOutput, fmt.Sprintf("%s is out of date", report.Output)
	default:
		return "", ""
	}
}
