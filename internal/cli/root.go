// Package cli implements the groqgen command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/groqgen/internal/config"
	"github.com/roach88/groqgen/internal/logging"
	"github.com/roach88/groqgen/internal/store"
)

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string // "json" | "text"
	LogLevel   string
	LogFile    string

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger

	// Now and IDs stamp recorded runs. Nil selects time.Now and UUIDv7 IDs.
	Now func() time.Time
	IDs store.IDGenerator

	closeLog func() error
}

// NewRootCommand creates the root command for the groqgen CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groqgen",
		Short: "groqgen - TypeScript types for GROQ queries",
		Long: `Generate TypeScript declarations for the result of GROQ queries.

groqgen reads a content schema and a set of named queries, infers the shape
each query returns, and writes a declaration file with one type per query.
Shapes reached by several queries are emitted once as shared aliases.`,
		SilenceUsage:  true, // Commands report their own errors
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: groqgen.yaml, searched upward)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write JSON logs to a rotated file instead of stderr")

	// Add subcommands
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))

	return cmd
}

// setup resolves the configuration and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile, cmd.Flags())
	if err != nil {
		formatter := &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
		if !formatter.JSON() {
			formatter.Format = "text"
		}
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.FilePath = cfg.Log.File
	logCfg.Stderr = cmd.ErrOrStderr()
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return o.formatter(cmd).Fail(ExitCommandError, ErrCodeConfig, err)
	}
	o.Logger = logger
	o.closeLog = closeLog

	if cfg.File != "" {
		o.formatter(cmd).VerboseLog("Using config file: %s", cfg.File)
	}
	return nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *RootOptions) close() {
	if o.closeLog != nil {
		_ = o.closeLog()
		o.closeLog = nil
	}
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	defer opts.close()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors from cobra have not been reported yet.
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}
