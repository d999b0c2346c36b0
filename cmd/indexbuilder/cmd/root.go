// Package cmd provides the CLI commands for indexbuilder.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/logger"
)

// app carries the settings shared by every subcommand.
type app struct {
	settingsPath string
	logLevel     string
	settings     *config.Config
}

// Execute runs the CLI against the process arguments and returns the exit
// status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return apperrors.ExitCode(err)
}

// NewRootCmd creates the root command. Without a subcommand it builds an
// index and prints the artifact.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var b buildFlags

	cmd := &cobra.Command{
		Use:   "indexbuilder [flags] <config_path> [document_path]",
		Short: "Build a serialized full-text search index",
		Long: `indexbuilder reads an index configuration and a JSON array of documents,
builds an inverted index with per-field statistics and stored fields, and
writes the MiniSearch-compatible JSON artifact to stdout.

The configuration names the indexed "fields", the "storedFields" kept
verbatim, and optionally the "idField" (default "id").

With --repeat N the build and serialize cycle runs N times and nothing is
printed, which is useful for timing. When only the config path is given and
the settings select the postgres source, documents are read from Postgres.`,
		Args:          usageArgs(cobra.RangeArgs(1, 2)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, a, b, args)
		},
	}

	cmd.PersistentFlags().StringVar(&a.settingsPath, "settings", "", "YAML runtime settings file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.Flags().IntVarP(&b.repeat, "repeat", "n", 0, "Repeat build and serialize N times without printing (benchmark mode)")
	cmd.Flags().IntVarP(&b.workers, "workers", "w", 0, "Number of build workers (default from settings)")
	cmd.Flags().StringVarP(&b.output, "output", "o", "", "Write the artifact to this file instead of stdout")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.setup(cmd)
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", apperrors.ErrUsage, err)
	})

	cmd.AddCommand(newInspectCmd(a))

	return cmd
}

// setup loads settings and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	settings, err := config.Load(a.settingsPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		settings.Logging.Level = a.logLevel
	}
	logger.SetupWriter(cmd.ErrOrStderr(), settings.Logging.Level, settings.Logging.Format)
	a.settings = settings
	return nil
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrUsage, err)
		}
		return nil
	}
}
