package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/results"
)

type thresholds struct {
	task   float64
	check  float64
	reward float64
}

type verification struct {
	taskMet   bool
	checkMet  bool
	rewardMet bool
}

func (v verification) passed() bool {
	return v.taskMet && v.checkMet && v.rewardMet
}

func verifyStats(stats results.Stats, t thresholds) verification {
	return verification{
		taskMet: stats.TaskPassRate >= t.task,
		// If no checks were recorded, skip the check threshold
		checkMet:  stats.ChecksTotal == 0 || stats.CheckPassRate >= t.check,
		rewardMet: stats.AverageReward >= t.reward,
	}
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var t thresholds

	cmd := &cobra.Command{
		Use:   "verify <results-file>",
		Short: "Verify benchmark results meet thresholds",
		Long: `Verify that benchmark results meet minimum thresholds.

Exits with code 0 if all thresholds are met, code 1 otherwise.
Use 'acidwave-bench summary' to view detailed results.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resultsFile := args[0]

			records, err := results.Load(resultsFile)
			if err != nil {
				return fmt.Errorf("failed to load results file: %w", err)
			}

			stats := results.CalculateStats(resultsFile, records)
			v := verifyStats(stats, t)

			outputVerifyResults(cmd.OutOrStdout(), stats, t, v)

			if !v.passed() {
				// silent error (SilenceErrors: true), sets exit code 1
				return fmt.Errorf("thresholds not met")
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&t.task, "task", 0.0, "Minimum task success rate (0.0-1.0)")
	cmd.Flags().Float64Var(&t.check, "check", 0.0, "Minimum check pass rate (0.0-1.0)")
	cmd.Flags().Float64Var(&t.reward, "reward", 0.0, "Minimum average reward (0.0-1.0)")

	return cmd
}

func outputVerifyResults(w io.Writer, stats results.Stats, t thresholds, v verification) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	bold := color.New(color.Bold)

	_, _ = bold.Fprintln(w, "=== Threshold Verification ===")
	fmt.Fprintln(w)

	if v.taskMet {
		_, _ = green.Fprintf(w, "Task Success Rate: %.2f%% >= %.2f%% ✓\n", stats.TaskPassRate*100, t.task*100)
	} else {
		_, _ = red.Fprintf(w, "Task Success Rate: %.2f%% < %.2f%% ✗\n", stats.TaskPassRate*100, t.task*100)
	}

	switch {
	case stats.ChecksTotal == 0:
		fmt.Fprintln(w, "Check Pass Rate:   N/A (no checks recorded)")
	case v.checkMet:
		_, _ = green.Fprintf(w, "Check Pass Rate:   %.2f%% >= %.2f%% ✓\n", stats.CheckPassRate*100, t.check*100)
	default:
		_, _ = red.Fprintf(w, "Check Pass Rate:   %.2f%% < %.2f%% ✗\n", stats.CheckPassRate*100, t.check*100)
	}

	if v.rewardMet {
		_, _ = green.Fprintf(w, "Average Reward:    %.3f >= %.3f ✓\n", stats.AverageReward, t.reward)
	} else {
		_, _ = red.Fprintf(w, "Average Reward:    %.3f < %.3f ✗\n", stats.AverageReward, t.reward)
	}

	fmt.Fprintln(w)
	if v.passed() {
		_, _ = green.Fprintln(w, "Result: PASSED")
	} else {
		_, _ = red.Fprintln(w, "Result: FAILED")
	}
}
