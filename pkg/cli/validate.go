package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var outputFormat string
	var catalogFile string
	var taskID int

	cmd := &cobra.Command{
		Use:   "validate --catalog <catalog-file> <snapshot-file>",
		Short: "Score one page snapshot against its task",
		Long: `Score a captured page state against the success criteria of a task.

The task is taken from the snapshot's taskId unless --task is set.

Example:
  acidwave-bench validate --catalog tasks/test.raw.json snapshots/task3-step2.yaml`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := task.LoadCatalog(catalogFile)
			if err != nil {
				return err
			}

			snap, err := page.LoadSnapshot(args[0])
			if err != nil {
				return err
			}

			id := taskID
			if !cmd.Flags().Changed("task") {
				if snap.TaskID == nil {
					return fmt.Errorf("snapshot '%s' has no taskId, use --task", args[0])
				}
				id = *snap.TaskID
			}

			spec, ok := catalog.Get(id)
			if !ok {
				return fmt.Errorf("task %d not found in catalog", id)
			}

			insp, err := page.NewSnapshotInspector(snap)
			if err != nil {
				return err
			}

			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			v := validate.New(validate.WithLogger(logger))
			res := v.Validate(cmd.Context(), validate.InputFor(spec, insp, snap.Messages))

			switch outputFormat {
			case "text":
				outputTextValidation(cmd.OutOrStdout(), spec, res)
			case "json":
				return writeJSON(cmd.OutOrStdout(), res)
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Task catalog file")
	cmd.Flags().IntVar(&taskID, "task", 0, "Task id, overrides the snapshot's taskId")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")

	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func outputTextValidation(w io.Writer, spec task.TaskSpec, res *validate.Result) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	_, _ = bold.Fprintf(w, "Task: %s\n", task.EnvName(spec.TaskID))
	fmt.Fprintf(w, "  Intent: %s\n", spec.Intent)
	if res.PageURL != "" {
		fmt.Fprintf(w, "  URL:    %s\n", res.PageURL)
	}

	for _, s := range res.Scores {
		fmt.Fprintf(w, "  %-13s %.2f\n", s.Type+":", s.Score)
	}
	if res.Heuristic != nil {
		fmt.Fprintf(w, "  keywords:     %d/%d\n", res.Heuristic.Found, res.Heuristic.Total)
	}

	for _, c := range res.ChecksPassed {
		_, _ = green.Fprintf(w, "  ✓ %s\n", c)
	}
	for _, c := range res.ChecksFailed {
		_, _ = red.Fprintf(w, "  ✗ %s\n", c)
	}

	fmt.Fprintln(w)
	switch res.Outcome() {
	case validate.OutcomeSuccess:
		_, _ = green.Fprintf(w, "Reward: %.2f (done)\n", res.Reward)
	case validate.OutcomeError:
		_, _ = red.Fprintf(w, "Error: %s\n", res.Error)
	default:
		_, _ = yellow.Fprintf(w, "Reward: %.2f (continue)\n", res.Reward)
	}
	fmt.Fprintln(w, res.Message)
}
