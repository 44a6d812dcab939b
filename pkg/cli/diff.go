package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/bench"
	"github.com/acidwave/acidwave-bench/pkg/results"
)

// DiffResult holds the comparison between two benchmark runs
type DiffResult struct {
	BaseStats    results.Stats
	HeadStats    results.Stats
	Regressions  []TaskDiff
	Improvements []TaskDiff
	New          []TaskDiff
	Removed      []TaskDiff
}

// TaskDiff holds the diff for a single task
type TaskDiff struct {
	TaskID        int
	TaskName      string
	BaseSuccess   bool
	HeadSuccess   bool
	BaseReward    float64
	HeadReward    float64
	FailureReason string
}

// NewDiffCmd creates the diff command
func NewDiffCmd() *cobra.Command {
	var outputFormat string
	var baseFile string
	var currentFile string

	cmd := &cobra.Command{
		Use:   "diff --base <results-file> --current <results-file>",
		Short: "Compare two benchmark results",
		Long: `Compare benchmark results between two runs (e.g., main vs PR).

Tasks are matched by task id. Shows regressions, improvements, and overall
success rate and reward changes.

Example:
  acidwave-bench diff --base results-main.json --current results-pr.json
  acidwave-bench diff --base results-main.json --current results-pr.json --output markdown`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseResults, err := results.Load(baseFile)
			if err != nil {
				return fmt.Errorf("failed to load base results: %w", err)
			}

			currentResults, err := results.Load(currentFile)
			if err != nil {
				return fmt.Errorf("failed to load current results: %w", err)
			}

			diff := calculateDiff(baseFile, currentFile, baseResults, currentResults)

			switch outputFormat {
			case "text":
				outputTextDiff(cmd.OutOrStdout(), diff)
			case "markdown":
				outputMarkdownDiff(cmd.OutOrStdout(), diff)
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&baseFile, "base", "", "Base results file (e.g., main branch)")
	cmd.Flags().StringVar(&currentFile, "current", "", "Current results file (e.g., PR branch)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, markdown)")

	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("current")

	return cmd
}

// byTaskID indexes the records of real tasks, skipping unreadable snapshots
func byTaskID(records []*results.Record) map[int]*results.Record {
	m := make(map[int]*results.Record, len(records))
	for _, r := range records {
		if r.TaskID != bench.UnreadableTaskID {
			m[r.TaskID] = r
		}
	}
	return m
}

func calculateDiff(baseFile, currentFile string, baseResults, currentResults []*results.Record) DiffResult {
	diff := DiffResult{
		BaseStats:    results.CalculateStats(baseFile, baseResults),
		HeadStats:    results.CalculateStats(currentFile, currentResults),
		Regressions:  make([]TaskDiff, 0),
		Improvements: make([]TaskDiff, 0),
		New:          make([]TaskDiff, 0),
		Removed:      make([]TaskDiff, 0),
	}

	baseMap := byTaskID(baseResults)
	currentMap := byTaskID(currentResults)

	for _, current := range currentResults {
		if current.TaskID == bench.UnreadableTaskID {
			continue
		}

		base, exists := baseMap[current.TaskID]
		if !exists {
			diff.New = append(diff.New, TaskDiff{
				TaskID:      current.TaskID,
				TaskName:    current.TaskName,
				HeadSuccess: current.Success,
				HeadReward:  current.Reward,
			})
			continue
		}

		taskDiff := TaskDiff{
			TaskID:        current.TaskID,
			TaskName:      current.TaskName,
			BaseSuccess:   base.Success,
			HeadSuccess:   current.Success,
			BaseReward:    base.Reward,
			HeadReward:    current.Reward,
			FailureReason: results.FailureReason(current),
		}

		if base.Success && !current.Success {
			diff.Regressions = append(diff.Regressions, taskDiff)
		} else if !base.Success && current.Success {
			diff.Improvements = append(diff.Improvements, taskDiff)
		}
	}

	for _, base := range baseResults {
		if base.TaskID == bench.UnreadableTaskID {
			continue
		}
		if _, exists := currentMap[base.TaskID]; !exists {
			diff.Removed = append(diff.Removed, TaskDiff{
				TaskID:      base.TaskID,
				TaskName:    base.TaskName,
				BaseSuccess: base.Success,
				BaseReward:  base.Reward,
			})
		}
	}

	return diff
}

func outputTextDiff(w io.Writer, diff DiffResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	_, _ = bold.Fprintln(w, "=== Benchmark Diff ===")
	fmt.Fprintln(w)

	if len(diff.Regressions) > 0 {
		_, _ = red.Fprintf(w, "Regressions (%d):\n", len(diff.Regressions))
		for _, r := range diff.Regressions {
			_, _ = red.Fprintf(w, "  ✗ %s: PASSED → FAILED (reward %.2f → %.2f)\n", r.TaskName, r.BaseReward, r.HeadReward)
			if r.FailureReason != "" {
				fmt.Fprintf(w, "      %s\n", r.FailureReason)
			}
		}
		fmt.Fprintln(w)
	}

	if len(diff.Improvements) > 0 {
		_, _ = green.Fprintf(w, "Improvements (%d):\n", len(diff.Improvements))
		for _, r := range diff.Improvements {
			_, _ = green.Fprintf(w, "  ✓ %s: FAILED → PASSED (reward %.2f → %.2f)\n", r.TaskName, r.BaseReward, r.HeadReward)
		}
		fmt.Fprintln(w)
	}

	if len(diff.New) > 0 {
		_, _ = yellow.Fprintf(w, "New Tasks (%d):\n", len(diff.New))
		for _, r := range diff.New {
			if r.HeadSuccess {
				_, _ = green.Fprintf(w, "  + %s: PASSED\n", r.TaskName)
			} else {
				_, _ = red.Fprintf(w, "  + %s: FAILED\n", r.TaskName)
			}
		}
		fmt.Fprintln(w)
	}

	if len(diff.Removed) > 0 {
		_, _ = yellow.Fprintf(w, "Removed Tasks (%d):\n", len(diff.Removed))
		for _, r := range diff.Removed {
			fmt.Fprintf(w, "  - %s\n", r.TaskName)
		}
		fmt.Fprintln(w)
	}

	_, _ = bold.Fprintln(w, "=== Summary ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "             Base        Head        Change\n")
	fmt.Fprintf(w, "Tasks:       %d/%-8d %d/%-8d ",
		diff.BaseStats.TasksPassed, diff.BaseStats.TasksTotal,
		diff.HeadStats.TasksPassed, diff.HeadStats.TasksTotal)
	printChange(w, diff.HeadStats.TaskPassRate-diff.BaseStats.TaskPassRate)

	fmt.Fprintf(w, "Reward:      %-11.3f %-11.3f ", diff.BaseStats.AverageReward, diff.HeadStats.AverageReward)
	printChange(w, diff.HeadStats.AverageReward-diff.BaseStats.AverageReward)
}

func printChange(w io.Writer, change float64) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if change > 0 {
		_, _ = green.Fprintf(w, "+%.1f%%\n", change*100)
	} else if change < 0 {
		_, _ = red.Fprintf(w, "%.1f%%\n", change*100)
	} else {
		fmt.Fprintln(w, "0.0%")
	}
}

func outputMarkdownDiff(w io.Writer, diff DiffResult) {
	taskChange := diff.HeadStats.TaskPassRate - diff.BaseStats.TaskPassRate
	rewardChange := diff.HeadStats.AverageReward - diff.BaseStats.AverageReward

	fmt.Fprintln(w, "### 📊 Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Metric | Base | Head | Change |")
	fmt.Fprintln(w, "|--------|------|------|--------|")
	fmt.Fprintf(w, "| Tasks | %d/%d (%.1f%%) | %d/%d (%.1f%%) | %s |\n",
		diff.BaseStats.TasksPassed, diff.BaseStats.TasksTotal, diff.BaseStats.TaskPassRate*100,
		diff.HeadStats.TasksPassed, diff.HeadStats.TasksTotal, diff.HeadStats.TaskPassRate*100,
		formatChangeMarkdown(taskChange))
	fmt.Fprintf(w, "| Avg Reward | %.3f | %.3f | %s |\n",
		diff.BaseStats.AverageReward, diff.HeadStats.AverageReward,
		formatChangeMarkdown(rewardChange))

	if len(diff.Regressions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "#### ❌ Regressions (%d)\n", len(diff.Regressions))
		for _, r := range diff.Regressions {
			fmt.Fprintf(w, "- `%s`: PASSED → FAILED", r.TaskName)
			if r.FailureReason != "" {
				fmt.Fprintf(w, " - %s", r.FailureReason)
			}
			fmt.Fprintln(w)
		}
	}

	if len(diff.Improvements) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "#### ✅ Improvements (%d)\n", len(diff.Improvements))
		for _, r := range diff.Improvements {
			fmt.Fprintf(w, "- `%s`: FAILED → PASSED\n", r.TaskName)
		}
	}

	if len(diff.New) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "#### 🆕 New Tasks (%d)\n", len(diff.New))
		for _, r := range diff.New {
			status := "PASSED"
			if !r.HeadSuccess {
				status = "FAILED"
			}
			fmt.Fprintf(w, "- `%s`: %s\n", r.TaskName, status)
		}
	}

	if len(diff.Removed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "#### 🗑️ Removed Tasks (%d)\n", len(diff.Removed))
		for _, r := range diff.Removed {
			fmt.Fprintf(w, "- `%s`\n", r.TaskName)
		}
	}
}

func formatChangeMarkdown(change float64) string {
	if change > 0 {
		return fmt.Sprintf("🟢 +%.1f%%", change*100)
	} else if change < 0 {
		return fmt.Sprintf("🔴 %.1f%%", change*100)
	}
	return "➖ 0.0%"
}
