package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/acidwave/acidwave-bench/pkg/results"
)

// createTestResultsFile creates a temporary results file for testing
func createTestResultsFile(t *testing.T, records []*results.Record) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, results.Save(filePath, records))

	return filePath
}

// executeCmd runs cmd with args and returns everything it wrote
func executeCmd(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// sampleResults returns a set of sample results for testing
func sampleResults() []*results.Record {
	return []*results.Record{
		{
			TaskID:       1,
			TaskName:     "acidwave.task_1",
			Difficulty:   "easy",
			Steps:        3,
			Reward:       1.0,
			Success:      true,
			Done:         true,
			ChecksPassed: []string{"Found required: 'SONGS'", "Correctly excluded: 'ALBUMS'"},
		},
		{
			TaskID:       2,
			TaskName:     "acidwave.task_2",
			Difficulty:   "medium",
			Steps:        12,
			Reward:       0.68,
			ChecksPassed: []string{"Element visible: .player", "Element exists: .queue"},
			ChecksFailed: []string{"Element not found: .lyrics"},
		},
		{
			TaskID:     3,
			TaskName:   "acidwave.task_3",
			Difficulty: "hard",
			Reward:     0,
			Done:       true,
			Error:      "failed to read snapshot",
		},
	}
}

// sampleResultsImproved regresses task 1, fixes task 2, drops task 3 and adds task 4
func sampleResultsImproved() []*results.Record {
	return []*results.Record{
		{
			TaskID:       1,
			TaskName:     "acidwave.task_1",
			Difficulty:   "easy",
			Steps:        30,
			MaxSteps:     30,
			Reward:       0.6,
			Truncated:    true,
			ChecksFailed: []string{"Missing required: 'SONGS'"},
		},
		{
			TaskID:     2,
			TaskName:   "acidwave.task_2",
			Difficulty: "medium",
			Steps:      8,
			Reward:     1.0,
			Success:    true,
			Done:       true,
		},
		{
			TaskID:     4,
			TaskName:   "acidwave.task_4",
			Difficulty: "easy",
			Steps:      2,
			Reward:     0.92,
			Success:    true,
			Done:       true,
		},
	}
}
