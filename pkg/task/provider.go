package task

import (
	"fmt"
	"strconv"
	"strings"
)

const envNamePrefix = "acidwave.task_"

// Provider hands tasks to whatever runs them. Callers receive a Provider
// explicitly instead of looking tasks up in a shared registry.
type Provider interface {
	Tasks() []TaskSpec
	Get(id int) (TaskSpec, bool)
}

// EnvName returns the environment name a runner uses for the task
func EnvName(id int) string {
	return fmt.Sprintf("%s%d", envNamePrefix, id)
}

// ParseEnvName extracts the task id from an environment name produced by EnvName
func ParseEnvName(name string) (int, error) {
	raw, ok := strings.CutPrefix(name, envNamePrefix)
	if !ok {
		return 0, fmt.Errorf("environment name '%s' does not start with '%s'", name, envNamePrefix)
	}

	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid task id in environment name '%s': %w", name, err)
	}

	return id, nil
}
