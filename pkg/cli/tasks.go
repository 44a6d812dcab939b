package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/task"
)

// NewTasksCmd creates the tasks command
func NewTasksCmd() *cobra.Command {
	var outputFormat string
	var difficulty string
	var taskIDs []int

	cmd := &cobra.Command{
		Use:   "tasks <catalog-file>",
		Short: "List the tasks of a catalog",
		Long: `Load and validate a task catalog, then list its tasks.

Example:
  acidwave-bench tasks tasks/test.raw.json --difficulty easy`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := task.LoadCatalog(args[0])
			if err != nil {
				return err
			}

			selected := catalog.Filter(task.Filter{TaskIDs: taskIDs, Difficulty: difficulty}).Tasks()

			switch outputFormat {
			case "text":
				outputTextTasks(cmd.OutOrStdout(), selected)
			case "json":
				return writeJSON(cmd.OutOrStdout(), selected)
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Only list tasks of this difficulty")
	cmd.Flags().IntSliceVar(&taskIDs, "task", nil, "Only list these task ids")

	return cmd
}

func outputTextTasks(w io.Writer, tasks []task.TaskSpec) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	_, _ = bold.Fprintf(w, "=== Tasks (%d) ===\n", len(tasks))
	for _, t := range tasks {
		evalTypes := make([]string, 0, len(t.Eval.EvalTypes))
		for _, et := range t.Eval.EvalTypes {
			evalTypes = append(evalTypes, string(et))
		}

		fmt.Fprintln(w)
		_, _ = cyan.Fprintf(w, "%s\n", task.EnvName(t.TaskID))
		fmt.Fprintf(w, "  Intent:     %s\n", t.Intent)
		fmt.Fprintf(w, "  Difficulty: %s\n", t.Difficulty)
		fmt.Fprintf(w, "  Start URL:  %s\n", t.StartURL)
		if len(evalTypes) > 0 {
			fmt.Fprintf(w, "  Eval:       %s\n", strings.Join(evalTypes, ", "))
		}
		if n := len(t.Eval.ProgramHTML); n > 0 {
			fmt.Fprintf(w, "  Checks:     %d element checks\n", n)
		}
	}
}
