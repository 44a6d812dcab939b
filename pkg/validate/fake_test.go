package validate

import (
	"context"
	"sync"

	"github.com/acidwave/acidwave-bench/pkg/page"
)

type fakeInspector struct {
	text     string
	url      string
	textErr  error
	urlErr   error
	elements map[string][]page.Element
	queryErr map[string]error
}

var _ page.Inspector = &fakeInspector{}

func (f *fakeInspector) Text(context.Context) (string, error) {
	return f.text, f.textErr
}

func (f *fakeInspector) URL(context.Context) (string, error) {
	return f.url, f.urlErr
}

func (f *fakeInspector) Query(_ context.Context, selector string) ([]page.Element, error) {
	if err, ok := f.queryErr[selector]; ok {
		return nil, err
	}
	return f.elements[selector], nil
}

type fakeElement struct {
	visible bool
	text    string
	attrs   map[string]string
	err     error
}

var _ page.Element = fakeElement{}

func (e fakeElement) IsVisible(context.Context) (bool, error) {
	return e.visible, e.err
}

func (e fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	if e.err != nil {
		return "", false, e.err
	}
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e fakeElement) Text(context.Context) (string, error) {
	return e.text, e.err
}

type fakeRecorder struct {
	mu          sync.Mutex
	outcomes    []string
	rewards     []float64
	checkPassed int
	checkFailed int
}

func (f *fakeRecorder) ObserveValidation(outcome string, reward float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
	f.rewards = append(f.rewards, reward)
}

func (f *fakeRecorder) ObserveElementCheck(passed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if passed {
		f.checkPassed++
	} else {
		f.checkFailed++
	}
}
