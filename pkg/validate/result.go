package validate

import (
	"fmt"
	"strings"

	"github.com/acidwave/acidwave-bench/pkg/task"
)

const (
	// SuccessThreshold is the minimum score every active dimension needs for
	// the aggregate to count as successful
	SuccessThreshold = 0.95

	// HeuristicThreshold is the keyword ratio above which the fallback counts
	// as successful
	HeuristicThreshold = 0.7

	perfectReward  = 0.98
	acceptedReward = 0.9
	mostlyReward   = 0.7

	maxListedIssues = 3
)

// Result is the outcome of a single validation call
type Result struct {
	Reward       float64          `json:"reward"`
	Done         bool             `json:"done"`
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	ChecksPassed []string         `json:"checksPassed"`
	ChecksFailed []string         `json:"checksFailed"`
	Scores       []DimensionScore `json:"scores,omitempty"`
	Heuristic    *HeuristicScore  `json:"heuristic,omitempty"`
	PageURL      string           `json:"pageUrl,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// DimensionScore is the score of one active eval type
type DimensionScore struct {
	Type  task.EvalType `json:"type"`
	Score float64       `json:"score"`
}

// HeuristicScore records the keyword fallback, used only when no eval type
// produced a score
type HeuristicScore struct {
	Found int `json:"found"`
	Total int `json:"total"`
}

// Outcome classifies the result for metrics and reporting
func (r *Result) Outcome() string {
	switch {
	case r.Error != "":
		return OutcomeError
	case r.Success:
		return OutcomeSuccess
	default:
		return OutcomeContinue
	}
}

const (
	OutcomeSuccess  = "success"
	OutcomeContinue = "continue"
	OutcomeError    = "error"
)

// Score returns the score recorded for an eval type and whether it was active
func (r *Result) Score(t task.EvalType) (float64, bool) {
	for _, s := range r.Scores {
		if s.Type == t {
			return s.Score, true
		}
	}

	return 0, false
}

func fatal(err error) *Result {
	return &Result{
		Reward:       0,
		Done:         true,
		Success:      false,
		Message:      fmt.Sprintf("Error: %v", err),
		ChecksPassed: []string{},
		ChecksFailed: []string{},
		Error:        err.Error(),
	}
}

// decide applies the continuation table to the aggregated reward. It is the
// last step of a validation and overrides any earlier success flag.
func decide(reward float64, passed, failed []string) (success, done bool, message string) {
	switch {
	case reward >= perfectReward:
		success, done = true, true
		message = "Task completed successfully"
	case reward >= acceptedReward:
		success, done = true, true
		message = fmt.Sprintf("Task completed (score: %.2f)", reward)
	case reward >= mostlyReward:
		message = fmt.Sprintf("Task mostly completed (score: %.2f), but not all checks passed. Continue...", reward)
	case reward > 0:
		message = fmt.Sprintf("Task in progress (score: %.2f), %d/%d checks passed. Continue...",
			reward, len(passed), len(passed)+len(failed))
	default:
		message = fmt.Sprintf("Task not completed (score: %.2f). Keep trying...", reward)
	}

	if len(passed) > 0 || len(failed) > 0 {
		message += fmt.Sprintf("\n   Passed: %d, Failed: %d", len(passed), len(failed))
		if len(failed) > 0 && len(failed) <= maxListedIssues {
			message += "\n   Issues: " + strings.Join(failed, "; ")
		}
	}

	return success, done, message
}
