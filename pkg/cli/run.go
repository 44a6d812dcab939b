package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/bench"
	"github.com/acidwave/acidwave-bench/pkg/metrics"
	"github.com/acidwave/acidwave-bench/pkg/results"
	"github.com/acidwave/acidwave-bench/pkg/util"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var outputFormat string
	var outputFile string
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "run <bench-config-file>",
		Short: "Score a benchmark run",
		Long: `Score the page snapshots of a benchmark run against the task catalog.

Results are written as JSON to --results (default acidwave-<name>-out.json).
Use 'acidwave-bench summary' to analyze them.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := bench.FromFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to load bench config: %w", err)
			}

			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			recorder := metrics.NewRecorderWithRegistry(prometheus.NewRegistry())
			validator := validate.New(validate.WithLogger(logger), validate.WithRecorder(recorder))

			runner, err := bench.NewRunner(spec, bench.WithValidator(validator), bench.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to create bench runner: %w", err)
			}

			out := cmd.OutOrStdout()
			display := newProgressDisplay(out, util.IsVerbose(cmd.Context()))

			records, err := runner.RunWithProgress(cmd.Context(), display.handleProgress)
			if err != nil {
				return fmt.Errorf("bench failed: %w", err)
			}

			if outputFile == "" {
				outputFile = fmt.Sprintf("acidwave-%s-out.json", spec.Metadata.Name)
			}
			if err := results.Save(outputFile, records); err != nil {
				return fmt.Errorf("failed to save results to file: %w", err)
			}
			if abs, err := filepath.Abs(outputFile); err == nil {
				outputFile = abs
			}
			fmt.Fprintf(out, "\n📄 Results saved to: %s\n", outputFile)

			if metricsFile != "" {
				if err := recorder.WriteFile(metricsFile); err != nil {
					return err
				}
				fmt.Fprintf(out, "📈 Metrics saved to: %s\n", metricsFile)
			}

			switch outputFormat {
			case "text":
				outputRunStats(out, results.CalculateStats(outputFile, records))
			case "json":
				return writeJSON(out, records)
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().StringVar(&outputFile, "results", "", "Results file to write")
	cmd.Flags().StringVar(&metricsFile, "metrics", "", "Write Prometheus metrics in text format to this file")

	return cmd
}

// progressDisplay prints bench progress events
type progressDisplay struct {
	out     io.Writer
	verbose bool
	green   *color.Color
	red     *color.Color
	yellow  *color.Color
	bold    *color.Color
}

func newProgressDisplay(out io.Writer, verbose bool) *progressDisplay {
	return &progressDisplay{
		out:     out,
		verbose: verbose,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		yellow:  color.New(color.FgYellow),
		bold:    color.New(color.Bold),
	}
}

func (d *progressDisplay) handleProgress(event bench.ProgressEvent) {
	switch event.Type {
	case bench.EventRunStart:
		_, _ = d.bold.Fprintln(d.out, "\n=== Starting Bench ===")
		fmt.Fprintln(d.out, event.Message)

	case bench.EventTaskStep:
		if d.verbose && event.Validation != nil {
			fmt.Fprintf(d.out, "  → %s %s: reward %.2f\n",
				event.Task.TaskName, filepath.Base(event.Snapshot), event.Validation.Reward)
		}

	case bench.EventTaskSkipped:
		if d.verbose {
			fmt.Fprintf(d.out, "  - skipped %s: %s\n", filepath.Base(event.Snapshot), event.Message)
		}

	case bench.EventTaskComplete:
		rec := event.Task
		switch {
		case rec.Error != "":
			_, _ = d.red.Fprintf(d.out, "  ✗ %s: %s\n", rec.TaskName, rec.Error)
		case rec.Success:
			_, _ = d.green.Fprintf(d.out, "  ✓ %s: reward %.2f in %d steps\n", rec.TaskName, rec.Reward, rec.Steps)
		case rec.Partial():
			_, _ = d.yellow.Fprintf(d.out, "  ~ %s: reward %.2f in %d steps\n", rec.TaskName, rec.Reward, rec.Steps)
		default:
			_, _ = d.red.Fprintf(d.out, "  ✗ %s: reward %.2f in %d steps\n", rec.TaskName, rec.Reward, rec.Steps)
		}

	case bench.EventRunComplete:
		fmt.Fprintln(d.out)
		_, _ = d.bold.Fprintln(d.out, "=== Bench Complete ===")
	}
}

func outputRunStats(w io.Writer, stats results.Stats) {
	green := color.New(color.FgGreen)
	bold := color.New(color.Bold)

	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "=== Overall Statistics ===")
	fmt.Fprintf(w, "Total Tasks: %d\n", stats.TasksTotal)
	if stats.TasksPassed == stats.TasksTotal {
		_, _ = green.Fprintf(w, "Tasks Passed: %d/%d\n", stats.TasksPassed, stats.TasksTotal)
	} else {
		fmt.Fprintf(w, "Tasks Passed: %d/%d\n", stats.TasksPassed, stats.TasksTotal)
	}
	fmt.Fprintf(w, "Partial: %d, Failed: %d, Errors: %d\n", stats.TasksPartial, stats.TasksFailed, stats.TasksWithError)
	fmt.Fprintf(w, "Average Reward: %.2f\n", stats.AverageReward)
}
