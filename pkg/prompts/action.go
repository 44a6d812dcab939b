package prompts

import (
	"errors"
	"regexp"
	"slices"
	"strings"
)

var ErrNoAction = errors.New("could not parse valid action from response")

var (
	pythonBlockRe  = regexp.MustCompile("(?s)```python\\s*\\n(.*?)\\n```")
	genericBlockRe = regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```")
	inlineCodeRe   = regexp.MustCompile("`([^`]+)`")

	inlineKeywords = []string{"click", "fill", "send_msg", "scroll", "press", "hover"}
)

// ParseAction extracts the action code from a model response: the last
// python block, else the last plain fenced block, else the first inline code
// span that mentions an action
func ParseAction(response string) (string, bool) {
	for _, re := range []*regexp.Regexp{pythonBlockRe, genericBlockRe} {
		if m := re.FindAllStringSubmatch(response, -1); len(m) > 0 {
			return strings.TrimSpace(m[len(m)-1][1]), true
		}
	}

	for _, m := range inlineCodeRe.FindAllStringSubmatch(response, -1) {
		for _, kw := range inlineKeywords {
			if strings.Contains(m[1], kw) {
				return strings.TrimSpace(m[1]), true
			}
		}
	}

	return "", false
}

// ActionName is the identifier before the first parenthesis
func ActionName(action string) string {
	name, _, _ := strings.Cut(action, "(")
	return strings.TrimSpace(name)
}

func ValidAction(action string) bool {
	name := ActionName(action)
	return slices.ContainsFunc(Actions, func(a Action) bool {
		return a.Name == name
	})
}

// ExtractAction parses and validates the action of a response. Without a code
// block the first line that is itself a valid action is used.
func ExtractAction(response string) (string, error) {
	if action, ok := ParseAction(response); ok {
		if ValidAction(action) {
			return action, nil
		}
		return "", ErrNoAction
	}

	for line := range strings.Lines(response) {
		line = strings.TrimSpace(line)
		if ValidAction(line) {
			return line, nil
		}
	}

	return "", ErrNoAction
}
