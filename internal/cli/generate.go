package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Record bool // record the run in the history database
}

// GenerateReport is the JSON payload of generate.
type GenerateReport struct {
	Digest       string          `json:"digest"`
	Output       string          `json:"output,omitempty"`
	RunID        string          `json:"run_id,omitempty"`
	Queries      []QueryReport   `json:"queries"`
	Aliases      []AliasReport   `json:"aliases"`
	Problems     []ProblemReport `json:"problems,omitempty"`
	Declarations string          `json:"declarations,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript declarations for GROQ queries",
		Long: `Generate a TypeScript declaration file for every configured query.

Queries come from a YAML manifest (--manifest) or from groq-tagged
template literals passed to query() in TypeScript and JavaScript sources
under --root. Without --output the declarations are printed to stdout.

Queries that fail to parse are reported and left out of the file; the
command then exits with status 1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "declaration file to write")
	cmd.Flags().String("history", "", "run history database (default: .groqgen/history.db)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the run in the history database")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)
	cfg := opts.Config

	gen, err := opts.generate(ctx, formatter)
	if err != nil {
		return err
	}
	declarations := gen.Result.Render()

	report := GenerateReport{
		Digest:   gen.Result.Digest(),
		Output:   cfg.Output,
		Queries:  gen.queryReports(),
		Aliases:  gen.aliasReports(),
		Problems: gen.Problems,
	}

	if cfg.Output != "" {
		if err := writeFile(cfg.Output, []byte(declarations)); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
		}
		formatter.VerboseLog("Wrote %s", cfg.Output)
	} else {
		report.Declarations = declarations
	}

	if opts.Record {
		hist, err := opts.openHistory()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
		}
		defer hist.Close()
		run, err := opts.recordRun(ctx, hist, gen)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeHistory, err)
		}
		report.RunID = run.ID
	}

	return outputGenerate(formatter, report)
}

func outputGenerate(formatter *OutputFormatter, report GenerateReport) error {
	failed := len(report.Problems) > 0
	message := fmt.Sprintf("%d problem(s) while generating", len(report.Problems))

	if formatter.JSON() {
		if failed {
			_ = formatter.Failure(ErrCodeQueryFailed, message, report.Problems, report)
			return NewExitError(ExitFailure, message)
		}
		return formatter.Success(report)
	}

	// Without --output stdout carries the declarations; the summary goes to stderr.
	w := formatter.Writer
	if report.Output == "" {
		fmt.Fprint(formatter.Writer, report.Declarations)
		w = formatter.GetErrWriter()
	}

	if failed {
		summary := &OutputFormatter{Format: "text", Writer: w, Verbose: formatter.Verbose}
		printProblems(summary, report.Problems)
		fmt.Fprintf(w, "✗ Generated %d query type(s), %d alias(es) with %s\n",
			len(report.Queries), len(report.Aliases), message)
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintf(w, "✓ Generated %d query type(s), %d alias(es)\n", len(report.Queries), len(report.Aliases))
	if report.Output != "" {
		fmt.Fprintf(w, "Wrote declarations to %s\n", report.Output)
	}
	if report.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", report.RunID)
	}
	fmt.Fprintf(w, "digest: %s\n", report.Digest)
	return nil
}
