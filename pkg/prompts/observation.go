package prompts

import (
	"bytes"
	"fmt"
	"strings"
)

// Observation is what the agent sees at one step
type Observation struct {
	Goal string
	URL  string
	// HTML is the pruned page html or accessibility tree
	HTML string
	// History holds the actions taken so far, oldest first
	History []string
}

type ObservationOptions struct {
	MaxHistory    int
	MaxHTMLLength int
}

func (o ObservationOptions) withDefaults() ObservationOptions {
	if o.MaxHistory <= 0 {
		o.MaxHistory = DefaultMaxHistory
	}
	if o.MaxHTMLLength <= 0 {
		o.MaxHTMLLength = DefaultMaxHTMLLength
	}
	return o
}

// FormatHistory lists the last maxHistory actions, numbered from 1
func FormatHistory(actions []string, maxHistory int) string {
	if len(actions) == 0 {
		return "Action History: None yet"
	}

	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	recent := actions[max(0, len(actions)-maxHistory):]

	var b strings.Builder
	b.WriteString("Recent Actions:")
	for i, a := range recent {
		fmt.Fprintf(&b, "\n%d. %s", i+1, a)
	}

	return b.String()
}

// RenderObservation renders the user turn for the current step
func RenderObservation(obs Observation, opts ObservationOptions) (string, error) {
	opts = opts.withDefaults()

	html := obs.HTML
	if html == "" {
		html = noHTML
	}
	if len(html) > opts.MaxHTMLLength {
		html = html[:opts.MaxHTMLLength] + truncatedTag
	}

	var out bytes.Buffer
	err := observationTemplate.Execute(&out, struct {
		Goal    string
		URL     string
		HTML    string
		History string
	}{
		Goal:    obs.Goal,
		URL:     obs.URL,
		HTML:    html,
		History: FormatHistory(obs.History, opts.MaxHistory),
	})
	if err != nil {
		return "", err
	}

	return out.String(), nil
}

// Conversation builds the full message list for one step: system prompt,
// few-shot examples and the rendered observation
func Conversation(obs Observation, reasoning bool, opts ObservationOptions) ([]Message, error) {
	system, err := SystemPrompt(reasoning)
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	user, err := RenderObservation(obs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to render observation: %w", err)
	}

	msgs := make([]Message, 0, len(examples)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	msgs = append(msgs, examples...)
	msgs = append(msgs, Message{Role: RoleUser, Content: user})

	return msgs, nil
}
