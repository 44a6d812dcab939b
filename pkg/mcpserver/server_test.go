package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

func testCatalog(t *testing.T) *task.Catalog {
	t.Helper()

	catalog, err := task.NewCatalog([]task.TaskSpec{
		{
			TaskID:     0,
			Intent:     "Navigate to the SONGS view",
			Difficulty: task.DifficultyEasy,
			Eval: task.EvalSpec{
				EvalTypes:        []task.EvalType{task.EvalTypeStringMatch},
				ReferenceAnswers: task.ReferenceAnswers{MustInclude: []string{"SONGS"}},
			},
		},
		{
			TaskID:     7,
			Intent:     "Start playback",
			Difficulty: task.DifficultyHard,
			Eval: task.EvalSpec{
				EvalTypes: []task.EvalType{task.EvalTypeProgramHTML},
				ProgramHTML: []task.ElementCheck{
					{Locator: "button[aria-label='Pause']", RequiredState: ptr.To(task.RequiredStateVisible)},
				},
			},
		},
	})
	require.NoError(t, err)

	return catalog
}

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()

	s, err := New(testCatalog(t), validate.New(), WithVersion("test"))
	require.NoError(t, err)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs
}

// callTool calls name and decodes the structured result into out
func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)

	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}

	return res
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	s, err := New(testCatalog(t), nil)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestListTools(t *testing.T) {
	cs := connect(t)

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolListTasks, ToolGetTask, ToolValidateSnapshot}, names)
}

func TestListTasks(t *testing.T) {
	tt := map[string]struct {
		args     map[string]any
		expected []int
	}{
		"all tasks": {
			args:     map[string]any{},
			expected: []int{0, 7},
		},
		"difficulty filter": {
			args:     map[string]any{"difficulty": "HARD"},
			expected: []int{7},
		},
		"no match": {
			args:     map[string]any{"difficulty": "medium"},
			expected: []int{},
		},
	}

	cs := connect(t)

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			var out ListTasksOutput
			res := callTool(t, cs, ToolListTasks, tc.args, &out)
			require.False(t, res.IsError)

			ids := []int{}
			for _, s := range out.Tasks {
				ids = append(ids, s.TaskID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestGetTask(t *testing.T) {
	cs := connect(t)

	var out GetTaskOutput
	res := callTool(t, cs, ToolGetTask, map[string]any{"task_id": 7}, &out)
	require.False(t, res.IsError)

	assert.Equal(t, "acidwave.task_7", out.Task.EnvName)
	assert.Equal(t, task.DefaultStartURL, out.Task.StartURL)
	assert.Equal(t, []task.EvalType{task.EvalTypeProgramHTML}, out.EvalTypes)
	assert.Equal(t, []string{"button[aria-label='Pause']"}, out.Locators)
	assert.Contains(t, out.Prompt, "Goal: Start playback")
	assert.Contains(t, out.Prompt, "Current URL: "+task.DefaultStartURL)

	res = callTool(t, cs, ToolGetTask, map[string]any{"task_id": 99}, nil)
	assert.True(t, res.IsError)
}

func TestValidateSnapshot(t *testing.T) {
	tt := map[string]struct {
		args    map[string]any
		reward  float64
		success bool
		done    bool
	}{
		"string match passes": {
			args: map[string]any{
				"task_id": 0,
				"url":     "http://localhost:5173/songs",
				"text":    "SONGS view",
			},
			reward:  1.0,
			success: true,
			done:    true,
		},
		"string match partial": {
			args: map[string]any{
				"task_id": 0,
				"url":     "http://localhost:5173",
				"text":    "HOME",
			},
			reward: 0.6,
		},
		"captured element": {
			args: map[string]any{
				"task_id": 7,
				"url":     "http://localhost:5173",
				"elements": map[string][]page.ElementState{
					"button[aria-label='Pause']": {{Text: "Pause"}},
				},
			},
			reward:  1.0,
			success: true,
			done:    true,
		},
		"element from html": {
			args: map[string]any{
				"task_id": 7,
				"url":     "http://localhost:5173",
				"html":    `<html><body><button aria-label="Pause" style="display:none">Pause</button></body></html>`,
			},
			reward: 0.0,
		},
	}

	cs := connect(t)

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			var out validate.Result
			res := callTool(t, cs, ToolValidateSnapshot, tc.args, &out)
			require.False(t, res.IsError)

			assert.InDelta(t, tc.reward, out.Reward, 1e-9)
			assert.Equal(t, tc.success, out.Success)
			assert.Equal(t, tc.done, out.Done)
		})
	}
}

func TestValidateSnapshotUnknownTask(t *testing.T) {
	cs := connect(t)

	res := callTool(t, cs, ToolValidateSnapshot, map[string]any{"task_id": 42, "url": "http://localhost:5173"}, nil)
	assert.True(t, res.IsError)
}

func TestStreamableHTTP(t *testing.T) {
	s, err := New(testCatalog(t), nil)
	require.NoError(t, err)

	ts := httptest.NewServer(Handler(s))
	defer ts.Close()

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL + Path}, nil)
	require.NoError(t, err)
	defer cs.Close()

	var out ListTasksOutput
	res := callTool(t, cs, ToolListTasks, map[string]any{}, &out)
	require.False(t, res.IsError)
	assert.Len(t, out.Tasks, 2)
}
