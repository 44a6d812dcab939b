package task

import (
	"encoding/json"
	"fmt"
	"slices"

	"k8s.io/utils/ptr"
)

const (
	DifficultyEasy    = "easy"
	DifficultyMedium  = "medium"
	DifficultyHard    = "hard"
	DifficultyUnknown = "unknown"

	DefaultStartURL = "http://localhost:5173"

	// RequiredStateVisible is the only required_state value with a dedicated check
	RequiredStateVisible = "visible"

	// CheckTextChanged passes when the element has non-empty text. It does not
	// compare against the state at task start.
	CheckTextChanged = "text_changed"
)

type EvalType string

const (
	EvalTypeStringMatch  EvalType = "string_match"
	EvalTypeProgramHTML  EvalType = "program_html"
	EvalTypeURLMatch     EvalType = "url_match"
	EvalTypeElementState EvalType = "element_state"
)

// EvalTypes lists every eval type the validator understands, in evaluation order.
var EvalTypes = []EvalType{
	EvalTypeStringMatch,
	EvalTypeProgramHTML,
	EvalTypeURLMatch,
	EvalTypeElementState,
}

// TaskSpec is a single Acidwave task as stored in the task catalog.
type TaskSpec struct {
	TaskID     int      `json:"task_id"`
	Intent     string   `json:"intent"`
	Difficulty string   `json:"difficulty"`
	StartURL   string   `json:"start_url"`
	Eval       EvalSpec `json:"eval"`
}

// EvalSpec holds the declarative success criteria of a task
type EvalSpec struct {
	EvalTypes        []EvalType       `json:"eval_types"`
	ReferenceAnswers ReferenceAnswers `json:"reference_answers"`
	ProgramHTML      []ElementCheck   `json:"program_html,omitempty"`
}

// Has reports whether the eval type is listed
func (e *EvalSpec) Has(t EvalType) bool {
	return slices.Contains(e.EvalTypes, t)
}

// ReferenceAnswers parameterizes string_match and url_match. ExactMatch is read
// as page text by string_match and as a full URL by url_match.
type ReferenceAnswers struct {
	ExactMatch  string   `json:"exact_match,omitempty"`
	MustInclude []string `json:"must_include,omitempty"`
	MustExclude []string `json:"must_exclude,omitempty"`
	URLPattern  string   `json:"url_pattern,omitempty"`
}

// ElementCheck is one assertion about the first element matching Locator.
// Optional string fields count as set only when non-nil and non-empty.
type ElementCheck struct {
	Locator          string  `json:"locator"`
	RequiredState    *string `json:"required_state,omitempty"`
	RequiredContents *string `json:"required_contents,omitempty"`
	Attribute        *string `json:"attribute,omitempty"`
	RequiredRange    *Range  `json:"required_range,omitempty"`
	Check            *string `json:"check,omitempty"`
}

func (c *ElementCheck) RequiresVisible() bool {
	return ptr.Deref(c.RequiredState, "") == RequiredStateVisible
}

func (c *ElementCheck) AttributeName() string {
	return ptr.Deref(c.Attribute, "")
}

func (c *ElementCheck) Contents() string {
	return ptr.Deref(c.RequiredContents, "")
}

func (c *ElementCheck) CheckType() string {
	return ptr.Deref(c.Check, "")
}

// Range is an inclusive numeric interval encoded as a two-element JSON array
type Range struct {
	Min float64
	Max float64
}

func (r *Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var bounds []float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("required_range must be an array of two numbers: %w", err)
	}

	if len(bounds) != 2 {
		return fmt.Errorf("required_range must have exactly two elements, got %d", len(bounds))
	}

	r.Min, r.Max = bounds[0], bounds[1]

	return nil
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{r.Min, r.Max})
}
