package task

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

const (
	basePath = "testdata"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(fmt.Sprintf("%s/%s", basePath, "test.raw.json"))
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	tasks := c.Tasks()
	assert.Equal(t, []int{0, 1, 2, 3}, []int{tasks[0].TaskID, tasks[1].TaskID, tasks[2].TaskID, tasks[3].TaskID})

	first, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, TaskSpec{
		TaskID:     0,
		Intent:     "Navigate to the SONGS view to see the complete song library",
		Difficulty: DifficultyEasy,
		StartURL:   DefaultStartURL,
		Eval: EvalSpec{
			EvalTypes: []EvalType{EvalTypeStringMatch},
			ReferenceAnswers: ReferenceAnswers{
				MustInclude: []string{"SONGS"},
			},
		},
	}, first)

	play, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, DefaultStartURL, play.StartURL)
	assert.Equal(t, []ElementCheck{
		{
			Locator:       "button:has(svg[class*='Pause'])",
			RequiredState: ptr.To(RequiredStateVisible),
		},
		{
			Locator:          "[data-testid='now-playing-title']",
			RequiredContents: ptr.To("Vibrant Horizon"),
		},
	}, play.Eval.ProgramHTML)

	volume, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, DifficultyUnknown, volume.Difficulty)
	require.NotNil(t, volume.Eval.ProgramHTML[0].RequiredRange)
	assert.Equal(t, Range{Min: 40, Max: 60}, *volume.Eval.ProgramHTML[0].RequiredRange)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestLoadCatalogErrors(t *testing.T) {
	tt := map[string]struct {
		file        string
		errContains string
	}{
		"missing file": {
			file:        "does-not-exist.json",
			errContains: "failed to read file",
		},
		"duplicate ids": {
			file:        "duplicate-ids.json",
			errContains: "duplicate task_id 1",
		},
		"unknown eval type": {
			file:        "bad-eval-type.json",
			errContains: "does not match schema",
		},
		"range with three bounds": {
			file:        "bad-range.json",
			errContains: "does not match schema",
		},
		"invalid url pattern": {
			file:        "bad-pattern.json",
			errContains: "invalid url_pattern",
		},
		"inverted range": {
			file:        "inverted-range.json",
			errContains: "required_range min 100 is greater than max 80",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			_, err := LoadCatalog(fmt.Sprintf("%s/%s", basePath, tc.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	c, err := LoadCatalog(fmt.Sprintf("%s/%s", basePath, "catalog.yaml"))
	require.NoError(t, err)

	got, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, "ACOUSTIC", got.Eval.ReferenceAnswers.ExactMatch)
	assert.True(t, got.Eval.Has(EvalTypeStringMatch))
	assert.False(t, got.Eval.Has(EvalTypeURLMatch))
}

func TestCatalogFilter(t *testing.T) {
	c, err := LoadCatalog(fmt.Sprintf("%s/%s", basePath, "test.raw.json"))
	require.NoError(t, err)

	tt := map[string]struct {
		filter   Filter
		expected []int
	}{
		"empty filter keeps everything": {
			filter:   Filter{},
			expected: []int{0, 1, 2, 3},
		},
		"subset keeps catalog order": {
			filter:   Filter{TaskIDs: []int{3, 0}},
			expected: []int{0, 3},
		},
		"difficulty is case-insensitive": {
			filter:   Filter{Difficulty: "hard"},
			expected: []int{2},
		},
		"subset and difficulty combine": {
			filter:   Filter{TaskIDs: []int{0, 1}, Difficulty: "MEDIUM"},
			expected: []int{1},
		},
		"nothing matches": {
			filter:   Filter{Difficulty: "impossible"},
			expected: []int{},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			filtered := c.Filter(tc.filter)
			ids := make([]int, 0, filtered.Len())
			for _, task := range filtered.Tasks() {
				ids = append(ids, task.TaskID)
				_, ok := filtered.Get(task.TaskID)
				assert.True(t, ok)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}

	assert.Equal(t, 4, c.Len(), "filtering must not change the source catalog")
}

func TestCatalogTasksIsACopy(t *testing.T) {
	c, err := NewCatalog([]TaskSpec{{TaskID: 1, Intent: "a"}})
	require.NoError(t, err)

	tasks := c.Tasks()
	tasks[0].Intent = "changed"

	got, _ := c.Get(1)
	assert.Equal(t, "a", got.Intent)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "acidwave.task_12", EnvName(12))

	id, err := ParseEnvName("acidwave.task_12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = ParseEnvName("webarena.task_12")
	assert.Error(t, err)

	_, err = ParseEnvName("acidwave.task_x")
	assert.Error(t, err)
}

func TestRangeJSON(t *testing.T) {
	var r Range
	require.NoError(t, r.UnmarshalJSON([]byte(`[0.5, 1]`)))
	assert.Equal(t, Range{Min: 0.5, Max: 1}, r)
	assert.True(t, r.Contains(0.5))
	assert.True(t, r.Contains(1))
	assert.False(t, r.Contains(1.01))

	assert.Error(t, r.UnmarshalJSON([]byte(`[1]`)))
	assert.Error(t, r.UnmarshalJSON([]byte(`"1-2"`)))

	out, err := Range{Min: 1, Max: 2}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 2]`, string(out))
}

func TestElementCheckAccessors(t *testing.T) {
	check := ElementCheck{
		Locator:          ".now-playing",
		RequiredState:    ptr.To("visible"),
		RequiredContents: ptr.To(""),
	}

	assert.True(t, check.RequiresVisible())
	assert.Equal(t, "", check.AttributeName())
	assert.Equal(t, "", check.Contents())
	assert.Equal(t, "", check.CheckType())
}
