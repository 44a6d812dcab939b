package results

import (
	"math"
	"slices"
	"strings"

	"github.com/acidwave/acidwave-bench/pkg/task"
)

var difficultyOrder = []string{task.DifficultyEasy, task.DifficultyMedium, task.DifficultyHard}

// DifficultyStats is one row of the per-difficulty breakdown
type DifficultyStats struct {
	Difficulty  string  `json:"difficulty"`
	Total       int     `json:"total"`
	Successes   int     `json:"successes"`
	SuccessRate float64 `json:"successRate"`
	AvgReward   float64 `json:"avgReward"`
	AvgSteps    float64 `json:"avgSteps"`
}

// StepStats describes the steps successful tasks of one difficulty needed
type StepStats struct {
	Difficulty string  `json:"difficulty"`
	Tasks      int     `json:"tasks"`
	AvgSteps   float64 `json:"avgSteps"`
	MinSteps   int     `json:"minSteps"`
	MaxSteps   int     `json:"maxSteps"`
	// StdDev is the sample standard deviation, 0 for a single task
	StdDev float64 `json:"stdDev"`
}

func difficultyOf(r *Record) string {
	if r.Difficulty == "" {
		return task.DifficultyUnknown
	}
	return strings.ToLower(r.Difficulty)
}

// groupByDifficulty keeps record order within a group. Groups are ordered
// easy, medium, hard, then the remaining difficulties alphabetically.
func groupByDifficulty(records []*Record) ([]string, map[string][]*Record) {
	groups := make(map[string][]*Record)
	for _, r := range records {
		d := difficultyOf(r)
		groups[d] = append(groups[d], r)
	}

	keys := make([]string, 0, len(groups))
	for _, d := range difficultyOrder {
		if _, ok := groups[d]; ok {
			keys = append(keys, d)
		}
	}

	var others []string
	for d := range groups {
		if !slices.Contains(difficultyOrder, d) {
			others = append(others, d)
		}
	}
	slices.Sort(others)

	return append(keys, others...), groups
}

// ByDifficulty breaks the records down by task difficulty
func ByDifficulty(records []*Record) []DifficultyStats {
	keys, groups := groupByDifficulty(records)

	rows := make([]DifficultyStats, 0, len(keys))
	for _, d := range keys {
		group := groups[d]
		row := DifficultyStats{Difficulty: d, Total: len(group)}

		var rewards, steps float64
		for _, r := range group {
			if r.Success {
				row.Successes++
			}
			rewards += r.Reward
			steps += float64(r.Steps)
		}

		n := float64(len(group))
		row.SuccessRate = float64(row.Successes) / n
		row.AvgReward = rewards / n
		row.AvgSteps = steps / n
		rows = append(rows, row)
	}

	return rows
}

// StepEfficiency summarizes the steps of successful tasks per difficulty
func StepEfficiency(records []*Record) []StepStats {
	successful := make([]*Record, 0, len(records))
	for _, r := range records {
		if r.Success {
			successful = append(successful, r)
		}
	}

	keys, groups := groupByDifficulty(successful)

	rows := make([]StepStats, 0, len(keys))
	for _, d := range keys {
		group := groups[d]
		row := StepStats{
			Difficulty: d,
			Tasks:      len(group),
			MinSteps:   group[0].Steps,
			MaxSteps:   group[0].Steps,
		}

		var sum float64
		for _, r := range group {
			sum += float64(r.Steps)
			row.MinSteps = min(row.MinSteps, r.Steps)
			row.MaxSteps = max(row.MaxSteps, r.Steps)
		}
		row.AvgSteps = sum / float64(len(group))

		if len(group) > 1 {
			var sq float64
			for _, r := range group {
				diff := float64(r.Steps) - row.AvgSteps
				sq += diff * diff
			}
			row.StdDev = math.Sqrt(sq / float64(len(group)-1))
		}

		rows = append(rows, row)
	}

	return rows
}
