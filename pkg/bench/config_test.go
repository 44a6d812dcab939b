package bench

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acidwave/acidwave-bench/pkg/task"
)

const basePath = "testdata"

func TestFromFile(t *testing.T) {
	absBase, err := filepath.Abs(basePath)
	require.NoError(t, err)

	tt := map[string]struct {
		file     string
		expected *BenchSpec
	}{
		"full config": {
			file: "bench.yaml",
			expected: &BenchSpec{
				Metadata: BenchMetadata{Name: "test"},
				Config: BenchConfig{
					Catalog:     filepath.Join(absBase, "tasks.json"),
					Snapshots:   filepath.Join(absBase, "snapshots/*.yaml"),
					MaxSteps:    3,
					Parallelism: 2,
				},
			},
		},
		"absolute catalog and filters": {
			file: "minimal.yaml",
			expected: &BenchSpec{
				Metadata: BenchMetadata{Name: "minimal"},
				Config: BenchConfig{
					Catalog:    "/abs/tasks.json",
					Snapshots:  filepath.Join(absBase, "snapshots/*.yaml"),
					TaskIDs:    []int{0, 2},
					Difficulty: "easy",
				},
			},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			spec, err := FromFile(filepath.Join(basePath, tc.file))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, spec)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	spec, err := FromFile(filepath.Join(basePath, "minimal.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, spec.Config.GetMaxSteps())
	assert.Equal(t, DefaultParallelism, spec.Config.GetParallelism())
	assert.Equal(t, task.Filter{TaskIDs: []int{0, 2}, Difficulty: "easy"}, spec.Config.Filter())
}

func TestReadErrors(t *testing.T) {
	tt := map[string]struct {
		data string
		err  string
	}{
		"wrong kind": {
			data: "kind: Eval\nconfig:\n  catalog: a\n  snapshots: b\n",
			err:  "invalid kind 'Eval'",
		},
		"unknown api version": {
			data: "kind: Bench\napiVersion: acidwave/v2\nconfig:\n  catalog: a\n  snapshots: b\n",
			err:  "unknown apiVersion",
		},
		"missing catalog and snapshots": {
			data: "kind: Bench\nconfig: {}\n",
			err:  "config.catalog is required",
		},
		"bad glob": {
			data: "kind: Bench\nconfig:\n  catalog: a\n  snapshots: '[x'\n",
			err:  "config.snapshots is not a valid glob",
		},
		"negative parallelism": {
			data: "kind: Bench\nconfig:\n  catalog: a\n  snapshots: b\n  parallelism: -1\n",
			err:  "config.parallelism must not be negative",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			_, err := Read([]byte(tc.data), "/base")
			assert.ErrorContains(t, err, tc.err)
		})
	}

	_, err := FromFile(filepath.Join(basePath, "missing.yaml"))
	assert.Error(t, err)
}

func TestReadExpandsEnv(t *testing.T) {
	t.Setenv("ACIDWAVE_RUN", "nightly")
	t.Setenv("ACIDWAVE_CATALOG", "")

	data := "kind: Bench\nconfig:\n  catalog: ${ACIDWAVE_CATALOG:-tasks.json}\n  snapshots: runs/${ACIDWAVE_RUN}/*.yaml\n"
	spec, err := Read([]byte(data), "/base")
	require.NoError(t, err)
	assert.Equal(t, "/base/tasks.json", spec.Config.Catalog)
	assert.Equal(t, "/base/runs/nightly/*.yaml", spec.Config.Snapshots)

	_, err = Read([]byte("kind: Bench\nconfig:\n  catalog: ${ACIDWAVE_UNSET_CATALOG}\n  snapshots: b\n"), "/base")
	assert.ErrorContains(t, err, "required environment variable(s) not set")
}
