package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acidwave/acidwave-bench/pkg/results"
)

func TestVerifyCommand(t *testing.T) {
	filePath := createTestResultsFile(t, sampleResults())

	// Task success rate is 1/3, check pass rate is 4/5, average reward is 0.56
	tt := map[string]struct {
		args    []string
		passes  bool
		message string
	}{
		"no thresholds": {
			args:   []string{filePath},
			passes: true,
		},
		"below all thresholds": {
			args:   []string{filePath, "--task", "0.3", "--check", "0.8", "--reward", "0.5"},
			passes: true,
		},
		"task threshold not met": {
			args:    []string{filePath, "--task", "0.5"},
			message: "Task Success Rate: 33.33% < 50.00% ✗",
		},
		"check threshold not met": {
			args:    []string{filePath, "--check", "0.9"},
			message: "Check Pass Rate:   80.00% < 90.00% ✗",
		},
		"reward threshold not met": {
			args:    []string{filePath, "--reward", "0.6"},
			message: "Average Reward:    0.560 < 0.600 ✗",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			out, err := executeCmd(NewVerifyCmd(), tc.args...)
			if tc.passes {
				assert.NoError(t, err)
				assert.Contains(t, out, "Result: PASSED")
				return
			}

			assert.Error(t, err)
			assert.Contains(t, out, "Result: FAILED")
			assert.Contains(t, out, tc.message)
		})
	}
}

func TestVerifyCommandNoChecks(t *testing.T) {
	filePath := createTestResultsFile(t, []*results.Record{
		{TaskID: 1, TaskName: "acidwave.task_1", Reward: 1, Success: true, Done: true},
	})

	out, err := executeCmd(NewVerifyCmd(), filePath, "--task", "1.0", "--check", "1.0")
	assert.NoError(t, err)
	assert.Contains(t, out, "N/A (no checks recorded)")
}

func TestVerifyCommandFileNotFound(t *testing.T) {
	_, err := executeCmd(NewVerifyCmd(), "/nonexistent/path/results.json")
	assert.Error(t, err)
}

func TestVerifyStats(t *testing.T) {
	stats := results.Stats{TaskPassRate: 0.5, ChecksTotal: 0, AverageReward: 0.7}

	v := verifyStats(stats, thresholds{task: 0.5, check: 1.0, reward: 0.7})
	assert.True(t, v.passed())

	v = verifyStats(stats, thresholds{task: 0.51})
	assert.False(t, v.taskMet)
	assert.False(t, v.passed())
}
