package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/randalmurphal/storyflow/agent"
	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/task"
)

// Call is one recorded StubWriter call.
type Call struct {
	Method string // plot, characters, theme, screenplay, market_analysis, or the review role
	Brief  agent.Brief
}

// StubWriter is an agent.Writer that returns the sample fixtures and
// records every call. Set Errors[method] to make a method fail.
type StubWriter struct {
	Errors map[string]error

	mu    sync.Mutex
	calls []Call
}

var _ agent.Writer = (*StubWriter)(nil)

// NewStubWriter creates a StubWriter that always succeeds.
func NewStubWriter() *StubWriter {
	return &StubWriter{Errors: make(map[string]error)}
}

// FailOn makes method return err.
func (w *StubWriter) FailOn(method string, err error) *StubWriter {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Errors[method] = err
	return w
}

// Calls returns the recorded calls in order.
func (w *StubWriter) Calls() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Call(nil), w.calls...)
}

// Methods returns the method names of the recorded calls.
func (w *StubWriter) Methods() []string {
	var methods []string
	for _, c := range w.Calls() {
		methods = append(methods, c.Method)
	}
	return methods
}

// Count returns how often method was called.
func (w *StubWriter) Count(method string) int {
	n := 0
	for _, c := range w.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (w *StubWriter) record(method string, b agent.Brief) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, Call{Method: method, Brief: b})
	return w.Errors[method]
}

func (w *StubWriter) Plot(ctx context.Context, b agent.Brief) (story.Plot, error) {
	if err := w.record("plot", b); err != nil {
		return story.Plot{}, err
	}
	return SamplePlot(), nil
}

func (w *StubWriter) Characters(ctx context.Context, b agent.Brief) ([]story.Character, error) {
	if err := w.record("characters", b); err != nil {
		return nil, err
	}
	return SampleCharacters(), nil
}

func (w *StubWriter) Theme(ctx context.Context, b agent.Brief) (story.Theme, error) {
	if err := w.record("theme", b); err != nil {
		return story.Theme{}, err
	}
	return SampleTheme(), nil
}

func (w *StubWriter) Screenplay(ctx context.Context, b agent.Brief) (story.Screenplay, error) {
	if err := w.record("screenplay", b); err != nil {
		return story.Screenplay{}, err
	}
	return SampleScreenplay(), nil
}

func (w *StubWriter) MarketAnalysis(ctx context.Context, b agent.Brief) (story.MarketAnalysis, error) {
	if err := w.record("market_analysis", b); err != nil {
		return story.MarketAnalysis{}, err
	}
	return SampleMarketAnalysis(), nil
}

// Review returns "<role> review N" where N counts that role's calls.
func (w *StubWriter) Review(ctx context.Context, role task.Role, b agent.Brief) (string, error) {
	if err := w.record(string(role), b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s review %d", role, w.Count(string(role))), nil
}
