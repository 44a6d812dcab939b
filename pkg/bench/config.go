package bench

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/acidwave/acidwave-bench/pkg/episode"
	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/util"
)

const (
	KindBench = "Bench"

	DefaultParallelism = 4
)

type BenchSpec struct {
	Metadata BenchMetadata `json:"metadata"`
	Config   BenchConfig   `json:"config"`
}

type BenchMetadata struct {
	Name string `json:"name"`
}

type BenchConfig struct {
	// Catalog is the task catalog file. Catalog and Snapshots may reference
	// environment variables as ${VAR} or ${VAR:-default}.
	Catalog string `json:"catalog"`
	// Snapshots is a glob matching the captured page snapshots
	Snapshots string `json:"snapshots"`

	TaskIDs    []int  `json:"taskIds,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	MaxSteps    int `json:"maxSteps,omitempty"`
	Parallelism int `json:"parallelism,omitempty"`
}

func (b *BenchSpec) UnmarshalJSON(data []byte) error {
	type Doppleganger BenchSpec

	tmp := (*Doppleganger)(b)
	return util.UnmarshalWithKind(data, tmp, KindBench)
}

// Filter is the task selection of the bench
func (c *BenchConfig) Filter() task.Filter {
	return task.Filter{TaskIDs: c.TaskIDs, Difficulty: c.Difficulty}
}

func (c *BenchConfig) GetMaxSteps() int {
	if c.MaxSteps <= 0 {
		return episode.DefaultMaxSteps
	}
	return c.MaxSteps
}

func (c *BenchConfig) GetParallelism() int {
	if c.Parallelism <= 0 {
		return DefaultParallelism
	}
	return c.Parallelism
}

func (b *BenchSpec) Validate() error {
	var err error
	if b.Config.Catalog == "" {
		err = errors.Join(err, fmt.Errorf("config.catalog is required"))
	}
	if b.Config.Snapshots == "" {
		err = errors.Join(err, fmt.Errorf("config.snapshots is required"))
	} else if _, globErr := filepath.Match(b.Config.Snapshots, ""); globErr != nil {
		err = errors.Join(err, fmt.Errorf("config.snapshots is not a valid glob: %w", globErr))
	}
	if b.Config.MaxSteps < 0 {
		err = errors.Join(err, fmt.Errorf("config.maxSteps must not be negative"))
	}
	if b.Config.Parallelism < 0 {
		err = errors.Join(err, fmt.Errorf("config.parallelism must not be negative"))
	}

	return err
}

func Read(data []byte, basePath string) (*BenchSpec, error) {
	spec := &BenchSpec{}

	err := yaml.Unmarshal(data, spec)
	if err != nil {
		return nil, err
	}

	for _, field := range []*string{&spec.Config.Catalog, &spec.Config.Snapshots} {
		if *field, err = util.ExpandEnv(*field); err != nil {
			return nil, fmt.Errorf("invalid bench config: %w", err)
		}
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bench config: %w", err)
	}

	resolveFilePath(&spec.Config.Catalog, basePath)
	resolveFilePath(&spec.Config.Snapshots, basePath)

	return spec, nil
}

func resolveFilePath(filePath *string, basePath string) {
	if filePath == nil || *filePath == "" || filepath.IsAbs(*filePath) {
		return
	}

	*filePath = filepath.Join(basePath, *filePath)
}

func FromFile(path string) (*BenchSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s' for bench spec: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", path, err)
	}

	return Read(data, filepath.Dir(absPath))
}
