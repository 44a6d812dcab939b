package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/prompts"
	"github.com/acidwave/acidwave-bench/pkg/task"
)

// NewPromptCmd creates the prompt command
func NewPromptCmd() *cobra.Command {
	var outputFormat string
	var catalogFile string
	var snapshotFile string
	var taskID int
	var reasoning bool
	var history []string
	var opts prompts.ObservationOptions

	cmd := &cobra.Command{
		Use:   "prompt --catalog <catalog-file> --task <id>",
		Short: "Render the agent conversation for a task",
		Long: `Render the messages an agent is shown for one step of a task: the
system prompt, the few-shot examples and the current observation.

The observation uses the task's start page unless --snapshot is set.

Example:
  acidwave-bench prompt --catalog tasks/test.raw.json --task 3 --reasoning
  acidwave-bench prompt --catalog tasks/test.raw.json --task 3 --snapshot snapshots/task3-step1.yaml --history "click('12')"`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := task.LoadCatalog(catalogFile)
			if err != nil {
				return err
			}

			spec, ok := catalog.Get(taskID)
			if !ok {
				return fmt.Errorf("task %d not found in catalog", taskID)
			}

			obs := prompts.Observation{
				Goal:    spec.Intent,
				URL:     spec.StartURL,
				History: history,
			}
			if snapshotFile != "" {
				snap, err := page.LoadSnapshot(snapshotFile)
				if err != nil {
					return err
				}
				obs.URL = snap.URL
				obs.HTML = snap.HTML
			}

			msgs, err := prompts.Conversation(obs, reasoning, opts)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "text":
				outputTextConversation(cmd.OutOrStdout(), msgs)
			case "json":
				return writeJSON(cmd.OutOrStdout(), msgs)
			default:
				return fmt.Errorf("unknown output format: %s", outputFormat)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Task catalog file")
	cmd.Flags().IntVar(&taskID, "task", 0, "Task id")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "Page snapshot to observe instead of the start page")
	cmd.Flags().BoolVar(&reasoning, "reasoning", false, "Ask the agent to reason before acting")
	cmd.Flags().StringArrayVar(&history, "history", nil, "Action already taken, oldest first (repeatable)")
	cmd.Flags().IntVar(&opts.MaxHistory, "max-history", prompts.DefaultMaxHistory, "Number of past actions shown")
	cmd.Flags().IntVar(&opts.MaxHTMLLength, "max-html", prompts.DefaultMaxHTMLLength, "Maximum characters of page html shown")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")

	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func outputTextConversation(w io.Writer, msgs []prompts.Message) {
	cyan := color.New(color.FgCyan, color.Bold)

	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		_, _ = cyan.Fprintf(w, "--- %s ---\n", m.Role)
		fmt.Fprintln(w, m.Content)
	}
}

// NewParseActionCmd creates the parse-action command
func NewParseActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse-action <response-file|->",
		Short: "Extract the action from a model response",
		Long: `Extract the action an agent response asks for, the way the harness
does before executing it. Only actions of the vocabulary are accepted.

Exits with code 1 when no valid action is found.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFileOrStdin(args[0])
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			action, err := prompts.ExtractAction(string(data))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), action)
			return nil
		},
	}

	return cmd
}

// readFileOrStdin reads path, or stdin when path is "-"
func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
