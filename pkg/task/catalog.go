package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"sigs.k8s.io/yaml"
)

// Catalog is an immutable, ordered set of tasks keyed by task id
type Catalog struct {
	tasks []TaskSpec
	index map[int]int
}

var _ Provider = &Catalog{}

// Filter narrows a catalog. Zero values match everything.
type Filter struct {
	TaskIDs    []int
	Difficulty string
}

// Matches reports whether the task passes the filter
func (f Filter) Matches(t TaskSpec) bool {
	if len(f.TaskIDs) > 0 && !slices.Contains(f.TaskIDs, t.TaskID) {
		return false
	}

	return f.Difficulty == "" || strings.EqualFold(t.Difficulty, f.Difficulty)
}

// NewCatalog applies defaults and validates the tasks. Every problem found is
// reported in the returned error.
func NewCatalog(tasks []TaskSpec) (*Catalog, error) {
	c := &Catalog{
		tasks: make([]TaskSpec, 0, len(tasks)),
		index: make(map[int]int, len(tasks)),
	}

	var err error
	for i, t := range tasks {
		if _, exists := c.index[t.TaskID]; exists {
			err = errors.Join(err, fmt.Errorf("tasks[%d]: duplicate task_id %d", i, t.TaskID))
			continue
		}

		if t.Eval.ReferenceAnswers.URLPattern != "" {
			if _, rxErr := regexp.Compile(t.Eval.ReferenceAnswers.URLPattern); rxErr != nil {
				err = errors.Join(err, fmt.Errorf("tasks[%d] (task_id %d): invalid url_pattern: %w", i, t.TaskID, rxErr))
			}
		}

		for j, check := range t.Eval.ProgramHTML {
			if strings.TrimSpace(check.Locator) == "" {
				err = errors.Join(err, fmt.Errorf("tasks[%d] (task_id %d): program_html[%d] has an empty locator", i, t.TaskID, j))
			}
			if r := check.RequiredRange; r != nil && r.Min > r.Max {
				err = errors.Join(err, fmt.Errorf("tasks[%d] (task_id %d): program_html[%d] required_range min %g is greater than max %g", i, t.TaskID, j, r.Min, r.Max))
			}
		}

		if t.StartURL == "" {
			t.StartURL = DefaultStartURL
		}
		if t.Difficulty == "" {
			t.Difficulty = DifficultyUnknown
		}

		c.index[t.TaskID] = len(c.tasks)
		c.tasks = append(c.tasks, t)
	}

	if err != nil {
		return nil, err
	}

	return c, nil
}

// ReadCatalog decodes a JSON (or YAML) array of tasks
func ReadCatalog(data []byte) (*Catalog, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := validateSchema(jsonData); err != nil {
		return nil, err
	}

	var tasks []TaskSpec
	if err := json.Unmarshal(jsonData, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return NewCatalog(tasks)
}

// LoadCatalog reads the task catalog stored at path
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s' for task catalog: %w", path, err)
	}

	c, err := ReadCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load task catalog '%s': %w", path, err)
	}

	return c, nil
}

// Tasks returns a copy of the tasks in catalog order
func (c *Catalog) Tasks() []TaskSpec {
	return slices.Clone(c.tasks)
}

func (c *Catalog) Get(id int) (TaskSpec, bool) {
	i, ok := c.index[id]
	if !ok {
		return TaskSpec{}, false
	}
	return c.tasks[i], true
}

func (c *Catalog) Len() int {
	return len(c.tasks)
}

// Filter returns a new catalog holding the tasks that match f, in catalog order
func (c *Catalog) Filter(f Filter) *Catalog {
	out := &Catalog{
		tasks: make([]TaskSpec, 0, len(c.tasks)),
		index: make(map[int]int),
	}

	for _, t := range c.tasks {
		if !f.Matches(t) {
			continue
		}

		out.index[t.TaskID] = len(out.tasks)
		out.tasks = append(out.tasks, t)
	}

	return out
}

// ByDifficulty returns the tasks with the given difficulty, compared case-insensitively
func (c *Catalog) ByDifficulty(difficulty string) []TaskSpec {
	return c.Filter(Filter{Difficulty: difficulty}).tasks
}
