// Package episode applies a step budget on top of repeated validations. The
// validator never terminates a failing task on its own; the budget does.
package episode

import (
	"errors"
	"fmt"

	"github.com/acidwave/acidwave-bench/pkg/validate"
)

const DefaultMaxSteps = 30

var ErrEpisodeOver = errors.New("episode is already over")

// Outcome is the state of the episode after a step
type Outcome struct {
	Step    int     `json:"step"`
	Reward  float64 `json:"reward"`
	Success bool    `json:"success"`
	// Terminated is set when the validator reported done
	Terminated bool `json:"terminated"`
	// Truncated is set when the step budget ran out first
	Truncated bool   `json:"truncated"`
	Message   string `json:"message,omitempty"`
}

func (o Outcome) Over() bool {
	return o.Terminated || o.Truncated
}

// Episode is not safe for concurrent use
type Episode struct {
	MaxSteps int

	last Outcome
}

func New(maxSteps int) *Episode {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	return &Episode{MaxSteps: maxSteps}
}

// Observe records the validation of one agent step. The episode reward is the
// reward of the latest step.
func (e *Episode) Observe(res *validate.Result) (Outcome, error) {
	if res == nil {
		return e.last, fmt.Errorf("cannot observe a nil validation result")
	}

	if e.last.Over() {
		return e.last, ErrEpisodeOver
	}

	step := e.last.Step + 1
	e.last = Outcome{
		Step:       step,
		Reward:     res.Reward,
		Success:    res.Success,
		Terminated: res.Done,
		Truncated:  !res.Done && step >= e.maxSteps(),
		Message:    res.Message,
	}

	return e.last, nil
}

func (e *Episode) Outcome() Outcome {
	return e.last
}

func (e *Episode) Steps() int {
	return e.last.Step
}

func (e *Episode) maxSteps() int {
	if e.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return e.MaxSteps
}
