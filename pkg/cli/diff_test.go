package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acidwave/acidwave-bench/pkg/bench"
	"github.com/acidwave/acidwave-bench/pkg/results"
)

func taskNames(diffs []TaskDiff) []string {
	names := make([]string, 0, len(diffs))
	for _, d := range diffs {
		names = append(names, d.TaskName)
	}
	return names
}

func TestCalculateDiff(t *testing.T) {
	diff := calculateDiff("base.json", "head.json", sampleResults(), sampleResultsImproved())

	assert.Equal(t, []string{"acidwave.task_1"}, taskNames(diff.Regressions))
	assert.Equal(t, []string{"acidwave.task_2"}, taskNames(diff.Improvements))
	assert.Equal(t, []string{"acidwave.task_4"}, taskNames(diff.New))
	assert.Equal(t, []string{"acidwave.task_3"}, taskNames(diff.Removed))

	require.Len(t, diff.Regressions, 1)
	assert.Equal(t, TaskDiff{
		TaskID:        1,
		TaskName:      "acidwave.task_1",
		BaseSuccess:   true,
		BaseReward:    1.0,
		HeadReward:    0.6,
		FailureReason: "Missing required: 'SONGS'",
	}, diff.Regressions[0])

	assert.Equal(t, 1, diff.BaseStats.TasksPassed)
	assert.Equal(t, 2, diff.HeadStats.TasksPassed)
}

func TestCalculateDiffMatchesByTaskID(t *testing.T) {
	base := []*results.Record{
		{TaskID: 7, TaskName: "renamed", Success: true},
		{TaskID: bench.UnreadableTaskID, TaskName: "broken.yaml", Error: "bad"},
	}
	head := []*results.Record{
		{TaskID: 7, TaskName: "acidwave.task_7", Success: true},
		{TaskID: bench.UnreadableTaskID, TaskName: "other.yaml", Error: "bad"},
	}

	diff := calculateDiff("a", "b", base, head)

	assert.Empty(t, diff.Regressions)
	assert.Empty(t, diff.Improvements)
	assert.Empty(t, diff.New)
	assert.Empty(t, diff.Removed)
}

func TestDiffCommand(t *testing.T) {
	baseFile := createTestResultsFile(t, sampleResults())
	currentFile := createTestResultsFile(t, sampleResultsImproved())

	tt := map[string]struct {
		args     []string
		contains []string
	}{
		"text": {
			args: []string{"--base", baseFile, "--current", currentFile},
			contains: []string{
				"Regressions (1):",
				"✗ acidwave.task_1: PASSED → FAILED (reward 1.00 → 0.60)",
				"Improvements (1):",
				"+ acidwave.task_4: PASSED",
				"- acidwave.task_3",
				"Tasks:       1/3        2/3        +33.3%",
			},
		},
		"markdown": {
			args: []string{"--base", baseFile, "--current", currentFile, "--output", "markdown"},
			contains: []string{
				"| Tasks | 1/3 (33.3%) | 2/3 (66.7%) | 🟢 +33.3% |",
				"- `acidwave.task_1`: PASSED → FAILED - Missing required: 'SONGS'",
				"#### 🆕 New Tasks (1)",
			},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			out, err := executeCmd(NewDiffCmd(), tc.args...)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestDiffCommandErrors(t *testing.T) {
	file := createTestResultsFile(t, sampleResults())

	tt := map[string][]string{
		"base not found":    {"--base", "/nonexistent/base.json", "--current", file},
		"current not found": {"--base", file, "--current", "/nonexistent/current.json"},
		"missing flags":     {"--base", file},
		"unknown format":    {"--base", file, "--current", file, "--output", "html"},
	}

	for tn, args := range tt {
		t.Run(tn, func(t *testing.T) {
			_, err := executeCmd(NewDiffCmd(), args...)
			assert.Error(t, err)
		})
	}
}
