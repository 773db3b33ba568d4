package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/groqgen/internal/codegen"
	"github.com/roach88/groqgen/internal/schema"
	"github.com/roach88/groqgen/internal/structure"
	"github.com/roach88/groqgen/internal/tstype"
)

// ExplainReport is the JSON payload of explain.
type ExplainReport struct {
	Query     string        `json:"query"`
	Structure string        `json:"structure"`
	Type      string        `json:"type"`
	Aliases   []AliasReport `json:"aliases,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <query|->",
		Short: "Show the inferred structure and type of one query",
		Long: `Show the structure groqgen infers for a single GROQ query and the
TypeScript type it lowers to. Pass "-" to read the query from stdin.`,
		Example:       `  groqgen explain --schema schema.cue '*[_type == "post"]{title}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, cmd, args[0])
		},
	}

	cmd.Flags().String("schema", "", "schema file (.cue, .json, .yaml)")

	return cmd
}

func runExplain(opts *RootOptions, cmd *cobra.Command, query string) error {
	formatter := opts.formatter(cmd)
	cfg := opts.Config

	if query == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Errorf("read query: %w", err))
		}
		query = string(data)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, errors.New("empty query"))
	}

	if cfg.Schema == "" {
		return formatter.Fail(ExitCommandError, ErrCodeSchema,
			errors.New("no schema configured: pass --schema or set schema in groqgen.yaml"))
	}
	s, err := schema.LoadFile(cfg.Schema)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSchema, err)
	}

	g, err := codegen.New(s, codegen.Options{Workers: 1, Logger: opts.Logger})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	st, typ, aliases, err := g.Explain(query)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), err)
	}

	report := ExplainReport{
		Query:     query,
		Structure: structure.Describe(st),
		Type:      tstype.Print(typ),
	}
	for _, a := range aliases {
		report.Aliases = append(report.Aliases, AliasReport{Name: a.Name, Type: tstype.Print(a.Type)})
	}

	if formatter.JSON() {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Structure:")
	fmt.Fprint(w, indent(report.Structure, "  "))
	fmt.Fprintln(w, "\nType:")
	fmt.Fprintln(w, indent(report.Type, "  "))
	for _, a := range report.Aliases {
		fmt.Fprintf(w, "\ntype %s = %s;\n", a.Name, a.Type)
	}
	return nil
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}
