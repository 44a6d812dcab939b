package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acidwave/acidwave-bench/pkg/results"
)

func TestSummaryCommand(t *testing.T) {
	filePath := createTestResultsFile(t, sampleResults())

	tt := map[string]struct {
		args     []string
		contains []string
		excludes []string
	}{
		"text": {
			args: []string{filePath},
			contains: []string{
				"=== Benchmark Summary ===",
				"Total Tasks:    3",
				"Successful:     1 (33.3%)",
				"Partial:        1",
				"=== By Difficulty ===",
				"=== Failed Tasks (2) ===",
				"Element not found: .lyrics",
				"failed to read snapshot",
			},
		},
		"task filter": {
			args:     []string{filePath, "--task", "TASK_1"},
			contains: []string{"Total Tasks:    1", "Successful:     1 (100.0%)"},
			excludes: []string{"Failed Tasks"},
		},
		"markdown": {
			args: []string{filePath, "--output", "markdown"},
			contains: []string{
				"### 📊 Benchmark Results",
				"| Tasks | 1/3 (33.3%) |",
				"| easy | 1 | 1 | 100.0% | 1.000 | 3.0 |",
				"- `acidwave.task_3`: reward 0.00 - failed to read snapshot",
			},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			out, err := executeCmd(NewSummaryCmd(), tc.args...)
			require.NoError(t, err)

			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSummaryCommandJSONOutput(t *testing.T) {
	filePath := createTestResultsFile(t, sampleResults())

	out, err := executeCmd(NewSummaryCmd(), filePath, "--output", "json")
	require.NoError(t, err)

	var summary SummaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &summary))

	assert.Equal(t, 3, summary.TasksTotal)
	assert.Equal(t, 1, summary.TasksPassed)
	assert.Len(t, summary.ByDifficulty, 3)
	assert.Len(t, summary.StepEfficiency, 1)
	assert.Len(t, summary.Tasks, 3)
}

func TestSummaryCommandErrors(t *testing.T) {
	filePath := createTestResultsFile(t, sampleResults())

	tt := map[string][]string{
		"file not found": {"/nonexistent/path/results.json"},
		"no task match":  {filePath, "--task", "task-999"},
		"unknown format": {filePath, "--output", "yaml"},
	}

	for tn, args := range tt {
		t.Run(tn, func(t *testing.T) {
			_, err := executeCmd(NewSummaryCmd(), args...)
			assert.Error(t, err)
		})
	}
}

func TestSummaryCommandEmptyResults(t *testing.T) {
	filePath := createTestResultsFile(t, []*results.Record{})

	out, err := executeCmd(NewSummaryCmd(), filePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Tasks:    0")
	assert.NotContains(t, out, "By Difficulty")
}

func TestBuildSummaryOutput(t *testing.T) {
	summary := buildSummaryOutput("test.json", sampleResults())

	assert.Equal(t, "test.json", summary.ResultsFile)
	require.Len(t, summary.Tasks, 3)

	assert.Equal(t, TaskSummary{
		Name:       "acidwave.task_1",
		Difficulty: "easy",
		Success:    true,
		Reward:     1.0,
		Steps:      3,
	}, summary.Tasks[0])

	assert.True(t, summary.Tasks[1].Partial)
	assert.Equal(t, "Element not found: .lyrics", summary.Tasks[1].FailureReason)
	assert.Equal(t, "failed to read snapshot", summary.Tasks[2].FailureReason)
}
