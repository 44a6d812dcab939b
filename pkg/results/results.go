// Package results provides utilities for loading, filtering, and analyzing benchmark results.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acidwave/acidwave-bench/pkg/validate"
)

// PartialThreshold is the reward above which an unsuccessful task counts as
// partially solved
const PartialThreshold = 0.3

// Record is the result of one task in a benchmark run
type Record struct {
	TaskID     int    `json:"taskId"`
	TaskName   string `json:"taskName"`
	Intent     string `json:"intent,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	// Snapshot is the page snapshot file the task was scored on
	Snapshot     string                    `json:"snapshot,omitempty"`
	Steps        int                       `json:"steps"`
	MaxSteps     int                       `json:"maxSteps,omitempty"`
	Reward       float64                   `json:"reward"`
	Success      bool                      `json:"success"`
	Done         bool                      `json:"done"`
	Truncated    bool                      `json:"truncated,omitempty"`
	Message      string                    `json:"message,omitempty"`
	ChecksPassed []string                  `json:"checksPassed,omitempty"`
	ChecksFailed []string                  `json:"checksFailed,omitempty"`
	Scores       []validate.DimensionScore `json:"scores,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// Partial reports an unsuccessful task that still made meaningful progress
func (r *Record) Partial() bool {
	return !r.Success && r.Reward > PartialThreshold
}

// Stats holds computed statistics from benchmark results.
type Stats struct {
	ResultsFile    string  `json:"resultsFile"`
	TasksTotal     int     `json:"tasksTotal"`
	TasksPassed    int     `json:"tasksPassed"`
	TasksPartial   int     `json:"tasksPartial"`
	TasksFailed    int     `json:"tasksFailed"`
	TaskPassRate   float64 `json:"taskPassRate"`
	ChecksTotal    int     `json:"checksTotal"`
	ChecksPassed   int     `json:"checksPassed"`
	CheckPassRate  float64 `json:"checkPassRate"`
	AverageReward  float64 `json:"averageReward"`
	AverageSteps   float64 `json:"averageSteps"`
	TasksWithError int     `json:"tasksWithError"`
}

// Load reads a JSON results file and returns the parsed records.
func Load(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse results JSON: %w", err)
	}

	return records, nil
}

// Save writes records as indented JSON, creating the parent directory.
func Save(path string, records []*Record) error {
	if records == nil {
		records = []*Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}

// Filter returns the subset of records whose task names contain the filter substring.
func Filter(records []*Record, filter string) []*Record {
	if filter == "" {
		return records
	}

	filter = strings.ToLower(filter)
	filtered := make([]*Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.TaskName), filter) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// CalculateStats computes statistics from benchmark results.
func CalculateStats(resultsFile string, records []*Record) Stats {
	stats := Stats{
		ResultsFile: resultsFile,
		TasksTotal:  len(records),
	}

	var rewards, steps float64
	for _, r := range records {
		switch {
		case r.Success:
			stats.TasksPassed++
		case r.Partial():
			stats.TasksPartial++
		default:
			stats.TasksFailed++
		}

		if r.Error != "" {
			stats.TasksWithError++
		}

		stats.ChecksPassed += len(r.ChecksPassed)
		stats.ChecksTotal += len(r.ChecksPassed) + len(r.ChecksFailed)
		rewards += r.Reward
		steps += float64(r.Steps)
	}

	if stats.TasksTotal > 0 {
		stats.TaskPassRate = float64(stats.TasksPassed) / float64(stats.TasksTotal)
		stats.AverageReward = rewards / float64(stats.TasksTotal)
		stats.AverageSteps = steps / float64(stats.TasksTotal)
	}
	if stats.ChecksTotal > 0 {
		stats.CheckPassRate = float64(stats.ChecksPassed) / float64(stats.ChecksTotal)
	}

	return stats
}

// Failures returns the unsuccessful records in their original order.
func Failures(records []*Record) []*Record {
	failures := make([]*Record, 0)
	for _, r := range records {
		if !r.Success {
			failures = append(failures, r)
		}
	}
	return failures
}

// FailureReason returns the most useful explanation of an unsuccessful record.
func FailureReason(r *Record) string {
	if r.Error != "" {
		return r.Error
	}
	if len(r.ChecksFailed) > 0 {
		return r.ChecksFailed[0]
	}
	if r.Truncated {
		return fmt.Sprintf("step budget of %d exhausted", r.MaxSteps)
	}
	return ""
}
