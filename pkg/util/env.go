package util

import (
	"fmt"
	"os"
	"regexp"
)

// maxExpansions bounds nested ${...} expansion
const maxExpansions = 10

var envRefPattern = regexp.MustCompile(`\$\{([^:}]+)(:-([^}]*))?\}`)

// ExpandEnv expands environment variable references in a config value:
//   - ${VAR} is required, an unset or empty variable is an error
//   - ${VAR:-default} falls back to default
//
// Values produced by an expansion are expanded again, so defaults may refer
// to other variables.
func ExpandEnv(value string) (string, error) {
	result := value

	for range maxExpansions {
		var missing []string
		next := envRefPattern.ReplaceAllStringFunc(result, func(match string) string {
			m := envRefPattern.FindStringSubmatch(match)
			if val, ok := os.LookupEnv(m[1]); ok && val != "" {
				return val
			}
			if m[2] != "" {
				return m[3]
			}
			missing = append(missing, match)
			return match
		})

		if len(missing) > 0 {
			return "", fmt.Errorf("required environment variable(s) not set: %v", missing)
		}

		if next == result {
			break
		}
		result = next
	}

	return result, nil
}
