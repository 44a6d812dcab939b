package page

import (
	"context"
	"fmt"
	"os"

	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"
)

// Snapshot is page state captured at the end of an agent step. Snapshots of
// the same task are ordered by Step.
type Snapshot struct {
	TaskID   *int                      `json:"taskId,omitempty"`
	Step     int                       `json:"step,omitempty"`
	URL      string                    `json:"url"`
	Text     string                    `json:"text,omitempty"`
	HTML     string                    `json:"html,omitempty"`
	Elements map[string][]ElementState `json:"elements,omitempty"`
	Messages []Message                 `json:"messages,omitempty"`
}

// ElementState is a captured element. Visible defaults to true.
type ElementState struct {
	Visible    *bool             `json:"visible,omitempty"`
	Text       string            `json:"text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Message is one entry of the agent/environment chat log
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func ReadSnapshot(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := yaml.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return snap, nil
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s' for snapshot: %w", path, err)
	}

	snap, err := ReadSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot '%s': %w", path, err)
	}

	return snap, nil
}

type snapshotInspector struct {
	snap *Snapshot
	dom  *HTMLInspector
}

var _ Inspector = &snapshotInspector{}

// NewSnapshotInspector answers queries from the captured elements first and
// falls back to the captured HTML for selectors that were not recorded.
func NewSnapshotInspector(snap *Snapshot) (Inspector, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}

	s := &snapshotInspector{snap: snap}

	if snap.HTML != "" {
		dom, err := NewHTMLInspector(snap.HTML, snap.URL)
		if err != nil {
			return nil, err
		}
		s.dom = dom
	}

	return s, nil
}

func (s *snapshotInspector) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.snap.Text == "" && s.dom != nil {
		return s.dom.Text(ctx)
	}

	return s.snap.Text, nil
}

func (s *snapshotInspector) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.snap.URL, nil
}

func (s *snapshotInspector) Query(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if states, ok := s.snap.Elements[selector]; ok {
		elements := make([]Element, 0, len(states))
		for _, state := range states {
			elements = append(elements, capturedElement{state: state})
		}
		return elements, nil
	}

	if s.dom != nil {
		return s.dom.Query(ctx, selector)
	}

	return []Element{}, nil
}

type capturedElement struct {
	state ElementState
}

func (e capturedElement) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return ptr.Deref(e.state.Visible, true), nil
}

func (e capturedElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := e.state.Attributes[name]
	return v, ok, nil
}

func (e capturedElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.state.Text, nil
}
