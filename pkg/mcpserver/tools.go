package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/prompts"
	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

const (
	ToolListTasks        = "list_tasks"
	ToolGetTask          = "get_task"
	ToolValidateSnapshot = "validate_snapshot"
)

type ListTasksInput struct {
	Difficulty string `json:"difficulty,omitempty" jsonschema:"only list tasks of this difficulty (easy, medium, hard)"`
}

type ListTasksOutput struct {
	Tasks []TaskSummary `json:"tasks"`
}

type TaskSummary struct {
	TaskID     int    `json:"task_id"`
	EnvName    string `json:"env_name"`
	Intent     string `json:"intent"`
	Difficulty string `json:"difficulty"`
	StartURL   string `json:"start_url"`
}

type GetTaskInput struct {
	TaskID int `json:"task_id" jsonschema:"id of the task in the catalog"`
}

type GetTaskOutput struct {
	Task             TaskSummary           `json:"task"`
	EvalTypes        []task.EvalType       `json:"eval_types"`
	ReferenceAnswers task.ReferenceAnswers `json:"reference_answers"`
	Locators         []string              `json:"locators,omitempty"`
	// Prompt is the first observation an agent would be shown
	Prompt string `json:"prompt"`
}

type ValidateSnapshotInput struct {
	TaskID   int                            `json:"task_id" jsonschema:"id of the task being attempted"`
	URL      string                         `json:"url" jsonschema:"current page url"`
	Text     string                         `json:"text,omitempty" jsonschema:"visible text of the page body"`
	HTML     string                         `json:"html,omitempty" jsonschema:"page html, used for element checks that are not listed in elements"`
	Elements map[string][]page.ElementState `json:"elements,omitempty" jsonschema:"captured elements keyed by css selector"`
	Messages []page.Message                 `json:"messages,omitempty" jsonschema:"chat log of the episode"`
}

func (t *tools) register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolListTasks,
		Description: "List the tasks of the catalog, optionally filtered by difficulty",
	}, t.listTasks)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolGetTask,
		Description: "Get a task with its success criteria and the goal prompt for its start page",
	}, t.getTask)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolValidateSnapshot,
		Description: "Score a page state against the success criteria of a task",
	}, t.validateSnapshot)
}

func (t *tools) listTasks(_ context.Context, _ *mcp.CallToolRequest, in ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	filter := task.Filter{Difficulty: in.Difficulty}

	out := ListTasksOutput{Tasks: []TaskSummary{}}
	for _, spec := range t.provider.Tasks() {
		if filter.Matches(spec) {
			out.Tasks = append(out.Tasks, summarize(spec))
		}
	}

	return nil, out, nil
}

func (t *tools) getTask(_ context.Context, _ *mcp.CallToolRequest, in GetTaskInput) (*mcp.CallToolResult, GetTaskOutput, error) {
	spec, ok := t.provider.Get(in.TaskID)
	if !ok {
		return toolError("task %d not found", in.TaskID), GetTaskOutput{}, nil
	}

	prompt, err := prompts.RenderObservation(prompts.Observation{
		Goal: spec.Intent,
		URL:  spec.StartURL,
	}, prompts.ObservationOptions{})
	if err != nil {
		return nil, GetTaskOutput{}, fmt.Errorf("failed to render goal prompt: %w", err)
	}

	out := GetTaskOutput{
		Task:             summarize(spec),
		EvalTypes:        spec.Eval.EvalTypes,
		ReferenceAnswers: spec.Eval.ReferenceAnswers,
		Prompt:           prompt,
	}
	for _, check := range spec.Eval.ProgramHTML {
		out.Locators = append(out.Locators, check.Locator)
	}

	return nil, out, nil
}

func (t *tools) validateSnapshot(ctx context.Context, _ *mcp.CallToolRequest, in ValidateSnapshotInput) (*mcp.CallToolResult, validate.Result, error) {
	spec, ok := t.provider.Get(in.TaskID)
	if !ok {
		return toolError("task %d not found", in.TaskID), validate.Result{}, nil
	}

	insp, err := page.NewSnapshotInspector(&page.Snapshot{
		TaskID:   &in.TaskID,
		URL:      in.URL,
		Text:     in.Text,
		HTML:     in.HTML,
		Elements: in.Elements,
		Messages: in.Messages,
	})
	if err != nil {
		return toolError("invalid page state: %v", err), validate.Result{}, nil
	}

	res := t.validator.Validate(ctx, validate.InputFor(spec, insp, in.Messages))
	t.logger.Debug("validated snapshot",
		zap.Int("task_id", in.TaskID),
		zap.Float64("reward", res.Reward),
		zap.Bool("done", res.Done))

	return nil, *res, nil
}

func summarize(spec task.TaskSpec) TaskSummary {
	return TaskSummary{
		TaskID:     spec.TaskID,
		EnvName:    task.EnvName(spec.TaskID),
		Intent:     spec.Intent,
		Difficulty: spec.Difficulty,
		StartURL:   spec.StartURL,
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}
