// Package prompts renders the instructions and observations given to an agent
// operating the Acidwave UI, and parses the actions it answers with.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"sigs.k8s.io/yaml"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultMaxHistory    = 5
	DefaultMaxHTMLLength = 8192

	noHTML       = "<No HTML available>"
	truncatedTag = "\n\n[... HTML truncated ...]"
)

// Action is one entry of the action vocabulary
type Action struct {
	Name        string
	Signature   string
	Description string
	Example     string
}

var Actions = []Action{
	{Name: "click", Signature: "click(selector)", Description: "Click an element", Example: `click("[aria-label='SONGS']")`},
	{Name: "fill", Signature: "fill(selector, text)", Description: "Fill a text input", Example: `fill("input[placeholder*='FILTER']", "ACOUSTIC")`},
	{Name: "press", Signature: "press(key)", Description: "Press a keyboard key", Example: `press("Enter")`},
	{Name: "hover", Signature: "hover(selector)", Description: "Hover over an element", Example: `hover("button.play-button")`},
	{Name: "scroll", Signature: "scroll(direction)", Description: "Scroll the page up or down", Example: `scroll("down")`},
	{Name: "send_msg_to_user", Signature: "send_msg_to_user(message)", Description: "Send the final answer once the task is complete", Example: `send_msg_to_user("Task completed successfully")`},
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

//go:embed examples.yaml
var examplesYAML []byte

var examples = mustParseExamples(examplesYAML)

func mustParseExamples(data []byte) []Message {
	var msgs []Message
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		panic(fmt.Sprintf("invalid few-shot examples: %v", err))
	}
	return msgs
}

// Examples returns the few-shot conversation shown before the observation
func Examples() []Message {
	return append([]Message(nil), examples...)
}

var (
	systemPromptTemplate = template.Must(template.New("systemPrompt").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(
		`You are an expert web automation agent operating the Acidwave music player.

## Available Actions

Wrap every action in a ` + "```python" + ` code block.
{{range $i, $a := .Actions}}
{{inc $i}}. **{{$a.Signature}}** - {{$a.Description}}
   Example: {{$a.Example}}
{{end}}
## Selectors

Use CSS selectors:
- By aria-label: ` + "`[aria-label='SONGS']`" + `
- By class: ` + "`.play-button`, `[class*='Pause']`" + `
- By placeholder: ` + "`input[placeholder*='FILTER']`" + `
- By text: ` + "`button:has-text('PLAY ALL')`" + `
- By icon: ` + "`button:has(svg[class*='Pause'])`" + `

## Acidwave UI

- Navigation links: SONGS, ALBUMS, ARTISTS and PLAYLISTS, each addressed by its aria-label.
- The player bar at the bottom holds Play/Pause, SkipForward, SkipBack, Shuffle and Repeat icon buttons and a volume slider ` + "`input[type='range'][aria-label*='volume' i]`" + `.
- A pause icon in the player bar means a song is playing.
- In the SONGS view every song row has role="button" and plays the song when clicked. Address rows with ` + "`[aria-label*=\"Play {title} by {artist}\"]`" + ` or ` + "`[data-song-title=\"{title}\"]`" + `. The heart icon only adds the song to favorites.
- The filter input ` + "`input[placeholder*='FILTER']`" + ` filters by title, artist, album and genre.
- Album pages have a PLAY ALL button. Playlists are created from the NEW PLAYLIST button.

## Strategy

Read the goal, inspect the current page, then perform exactly ONE action and wait for the next observation.
Text matching on the page is case-sensitive and labels are uppercase.
When the task is complete, report it:

` + "```python" + `
send_msg_to_user("Navigation to SONGS view successful")
` + "```" + `
{{if .Reasoning}}
## Reasoning

Before each action write a short REASONING block naming the current state, the goal, the next step, the expected result and how you will verify it. Then give the action.
{{end}}`))

	observationTemplate = template.Must(template.New("observation").Parse(
		`Goal: {{.Goal}}

Current URL: {{.URL}}

Current Page:
{{.HTML}}

{{.History}}

What is the next action to achieve the goal? Output a single action in a code block.`))
)

type systemPromptData struct {
	Actions   []Action
	Reasoning bool
}

// SystemPrompt renders the system instructions. reasoning adds the
// chain-of-thought section.
func SystemPrompt(reasoning bool) (string, error) {
	var out bytes.Buffer
	err := systemPromptTemplate.Execute(&out, systemPromptData{
		Actions:   Actions,
		Reasoning: reasoning,
	})
	if err != nil {
		return "", err
	}

	return out.String(), nil
}
