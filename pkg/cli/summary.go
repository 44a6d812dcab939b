package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/results"
)

// SummaryOutput is the JSON form of the summary command
type SummaryOutput struct {
	results.Stats
	ByDifficulty   []results.DifficultyStats `json:"byDifficulty"`
	StepEfficiency []results.StepStats       `json:"stepEfficiency"`
	Tasks          []TaskSummary             `json:"tasks"`
}

// TaskSummary is a single task line of the summary
type TaskSummary struct {
	Name          string  `json:"name"`
	Difficulty    string  `json:"difficulty,omitempty"`
	Success       bool    `json:"success"`
	Partial       bool    `json:"partial,omitempty"`
	Reward        float64 `json:"reward"`
	Steps         int     `json:"steps"`
	FailureReason string  `json:"failureReason,omitempty"`
}

// NewSummaryCmd creates the summary command
func NewSummaryCmd() *cobra.Command {
	var outputFormat string
	var taskFilter string

	cmd := &cobra.Command{
		Use:   "summary <results-file>",
		Short: "Summarize benchmark results",
		Long: `Summarize the results written by 'acidwave-bench run': overall
statistics, a breakdown by difficulty, step efficiency of successful tasks
and the failed tasks.

Examples:
  acidwave-bench summary acidwave-nightly-out.json
  acidwave-bench summary --output markdown acidwave-nightly-out.json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := results.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load results file: %w", err)
			}

			filtered := results.Filter(records, taskFilter)
			if len(filtered) == 0 && taskFilter != "" {
				return fmt.Errorf("no tasks matched filter %q", taskFilter)
			}

			summary := buildSummaryOutput(args[0], filtered)

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "text":
				outputTextSummary(out, summary)
			case "markdown":
				outputMarkdownSummary(out, summary)
			case "json":
				return writeJSON(out, summary)
			default:
				return errors.New("unknown output format: " + outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, markdown, json)")
	cmd.Flags().StringVar(&taskFilter, "task", "", "Only summarize tasks whose name contains this value")

	return cmd
}

func buildSummaryOutput(resultsFile string, records []*results.Record) SummaryOutput {
	summary := SummaryOutput{
		Stats:          results.CalculateStats(resultsFile, records),
		ByDifficulty:   results.ByDifficulty(records),
		StepEfficiency: results.StepEfficiency(records),
		Tasks:          make([]TaskSummary, 0, len(records)),
	}

	for _, r := range records {
		ts := TaskSummary{
			Name:       r.TaskName,
			Difficulty: r.Difficulty,
			Success:    r.Success,
			Partial:    r.Partial(),
			Reward:     r.Reward,
			Steps:      r.Steps,
		}
		if !r.Success {
			ts.FailureReason = results.FailureReason(r)
		}
		summary.Tasks = append(summary.Tasks, ts)
	}

	return summary
}

func outputTextSummary(w io.Writer, summary SummaryOutput) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	_, _ = bold.Fprintln(w, "=== Benchmark Summary ===")
	fmt.Fprintln(w)

	s := summary.Stats
	fmt.Fprintf(w, "Results:        %s\n", s.ResultsFile)
	fmt.Fprintf(w, "Total Tasks:    %d\n", s.TasksTotal)
	if s.TasksTotal > 0 && s.TasksPassed == s.TasksTotal {
		_, _ = green.Fprintf(w, "Successful:     %d (%.1f%%)\n", s.TasksPassed, s.TaskPassRate*100)
	} else {
		fmt.Fprintf(w, "Successful:     %d (%.1f%%)\n", s.TasksPassed, s.TaskPassRate*100)
	}
	fmt.Fprintf(w, "Partial:        %d\n", s.TasksPartial)
	fmt.Fprintf(w, "Failed:         %d\n", s.TasksFailed)
	fmt.Fprintf(w, "Average Reward: %.3f\n", s.AverageReward)
	fmt.Fprintf(w, "Average Steps:  %.1f\n", s.AverageSteps)
	if s.ChecksTotal > 0 {
		fmt.Fprintf(w, "Checks Passed:  %d/%d\n", s.ChecksPassed, s.ChecksTotal)
	}

	if len(summary.ByDifficulty) > 0 {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "=== By Difficulty ===")
		fmt.Fprintf(w, "%-10s %6s %10s %8s %10s %9s\n", "Difficulty", "Total", "Successes", "Rate", "AvgReward", "AvgSteps")
		for _, row := range summary.ByDifficulty {
			fmt.Fprintf(w, "%-10s %6d %10d %7.1f%% %10.3f %9.1f\n",
				row.Difficulty, row.Total, row.Successes, row.SuccessRate*100, row.AvgReward, row.AvgSteps)
		}
	}

	if len(summary.StepEfficiency) > 0 {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "=== Step Efficiency (successful tasks) ===")
		for _, row := range summary.StepEfficiency {
			fmt.Fprintf(w, "%-10s avg %.1f, min %d, max %d, stddev %.2f (%d tasks)\n",
				row.Difficulty, row.AvgSteps, row.MinSteps, row.MaxSteps, row.StdDev, row.Tasks)
		}
	}

	failed := 0
	for _, t := range summary.Tasks {
		if !t.Success {
			failed++
		}
	}
	if failed == 0 {
		return
	}

	fmt.Fprintln(w)
	_, _ = bold.Fprintf(w, "=== Failed Tasks (%d) ===\n", failed)
	for _, t := range summary.Tasks {
		if t.Success {
			continue
		}
		c := red
		if t.Partial {
			c = yellow
		}
		_, _ = c.Fprintf(w, "  ✗ %s (reward %.2f, %d steps)\n", t.Name, t.Reward, t.Steps)
		if t.FailureReason != "" {
			fmt.Fprintf(w, "      %s\n", t.FailureReason)
		}
	}
}

func outputMarkdownSummary(w io.Writer, summary SummaryOutput) {
	s := summary.Stats

	fmt.Fprintln(w, "### 📊 Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Metric | Value |")
	fmt.Fprintln(w, "|--------|-------|")
	fmt.Fprintf(w, "| Tasks | %d/%d (%.1f%%) |\n", s.TasksPassed, s.TasksTotal, s.TaskPassRate*100)
	fmt.Fprintf(w, "| Partial | %d |\n", s.TasksPartial)
	fmt.Fprintf(w, "| Average Reward | %.3f |\n", s.AverageReward)
	fmt.Fprintf(w, "| Average Steps | %.1f |\n", s.AverageSteps)

	if len(summary.ByDifficulty) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "#### By Difficulty")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Difficulty | Total | Successes | Rate | Avg Reward | Avg Steps |")
		fmt.Fprintln(w, "|------------|-------|-----------|------|------------|-----------|")
		for _, row := range summary.ByDifficulty {
			fmt.Fprintf(w, "| %s | %d | %d | %.1f%% | %.3f | %.1f |\n",
				row.Difficulty, row.Total, row.Successes, row.SuccessRate*100, row.AvgReward, row.AvgSteps)
		}
	}

	var failures []TaskSummary
	for _, t := range summary.Tasks {
		if !t.Success {
			failures = append(failures, t)
		}
	}
	if len(failures) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "#### ❌ Failed Tasks (%d)\n", len(failures))
	for _, t := range failures {
		fmt.Fprintf(w, "- `%s`: reward %.2f", t.Name, t.Reward)
		if t.FailureReason != "" {
			fmt.Fprintf(w, " - %s", t.FailureReason)
		}
		fmt.Fprintln(w)
	}
}
