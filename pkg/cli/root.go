// Package cli provides the acidwave-bench commands for scoring page snapshots
// and inspecting benchmark results.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acidwave/acidwave-bench/pkg/util"
)

// Version is reported by the MCP server and --version. It is set at build time.
var Version = "dev"

// NewRootCmd creates the root acidwave-bench command
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "acidwave-bench",
		Short:   "Acidwave agent benchmark",
		Version: Version,
		Long: `acidwave-bench scores web agents on the Acidwave music player.
It validates captured page states against the task catalog and analyzes
benchmark results.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(util.WithVerbose(cmd.Context(), verbose))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output and debug logging")

	rootCmd.AddCommand(NewTasksCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewSummaryCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewPromptCmd())
	rootCmd.AddCommand(NewParseActionCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// newLogger builds the library logger: debug output when verbose,
// warnings and errors otherwise
func newLogger(ctx context.Context) (*zap.Logger, error) {
	if util.IsVerbose(ctx) {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
