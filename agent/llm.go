package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/storyflow/prompt"
	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/task"
	"github.com/randalmurphal/storyflow/transcript"
)

// Shapes describe the JSON each structured role must return.
const (
	plotShape = `{"premise": string, "synopsis": string, "setting": string, ` +
		`"turning_points": [string], "resolution": string}`
	charactersShape = `{"characters": [{"name": string, "role": string, "background": string, ` +
		`"arc": string, "personality": string}]}`
	themeShape = `{"main_theme": string, "moral": string, "subthemes": [string]}`
	screenplayShape = `{"acts": [string], "key_scenes": [string], "dialogue": [string]}`
	marketShape = `{"target_audience": [string], "genre_positioning": string, ` +
		`"unique_selling_points": [string], "comparisons": [string]}`
)

// LLMWriter implements Writer with prompt templates and a Completer.
type LLMWriter struct {
	completer Completer
	prompts   *prompt.Loader
	logger    *slog.Logger
}

// NewLLMWriter creates a writer. prompts supplies the role templates.
func NewLLMWriter(completer Completer, prompts *prompt.Loader) *LLMWriter {
	return &LLMWriter{
		completer: completer,
		prompts:   prompts,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger used for per-call logging.
func (w *LLMWriter) WithLogger(logger *slog.Logger) *LLMWriter {
	w.logger = logger
	return w
}

// Plot develops the plot from the concept.
func (w *LLMWriter) Plot(ctx context.Context, b Brief) (story.Plot, error) {
	var plot story.Plot
	err := w.structured(ctx, task.PlotDeveloper, b, "object", plotShape, &plot)
	return plot, err
}

// Characters designs the cast for the plot.
func (w *LLMWriter) Characters(ctx context.Context, b Brief) ([]story.Character, error) {
	var out struct {
		Characters []story.Character `json:"characters"`
	}
	if err := w.structured(ctx, task.CharacterDesigner, b, "object", charactersShape, &out); err != nil {
		return nil, err
	}
	if len(out.Characters) == 0 {
		return nil, fmt.Errorf("%s: reply contained no characters", task.CharacterDesigner)
	}
	return out.Characters, nil
}

// Theme analyzes the plot and cast for themes.
func (w *LLMWriter) Theme(ctx context.Context, b Brief) (story.Theme, error) {
	var theme story.Theme
	err := w.structured(ctx, task.ThemeAnalyst, b, "object", themeShape, &theme)
	return theme, err
}

// Screenplay writes the screenplay outline.
func (w *LLMWriter) Screenplay(ctx context.Context, b Brief) (story.Screenplay, error) {
	var sp story.Screenplay
	err := w.structured(ctx, task.Screenwriter, b, "object", screenplayShape, &sp)
	return sp, err
}

// MarketAnalysis assesses the market for the film.
func (w *LLMWriter) MarketAnalysis(ctx context.Context, b Brief) (story.MarketAnalysis, error) {
	var m story.MarketAnalysis
	err := w.structured(ctx, task.MarketAnalyst, b, "object", marketShape, &m)
	return m, err
}

// Review returns free-text notes from a reviewing role.
func (w *LLMWriter) Review(ctx context.Context, role task.Role, b Brief) (string, error) {
	if role != task.Director && role != task.Critic {
		return "", fmt.Errorf("review: unsupported role %q", role)
	}

	system, user, err := w.render(role, b)
	if err != nil {
		return "", err
	}

	resp, err := w.complete(ctx, Request{Role: role, System: system, Prompt: user})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// structured renders the role's prompts plus the output contract, completes
// and decodes the JSON reply into out.
func (w *LLMWriter) structured(ctx context.Context, role task.Role, b Brief, kind, shape string, out any) error {
	system, user, err := w.render(role, b)
	if err != nil {
		return err
	}

	contract, err := w.prompts.LoadWithVars("structured-output", map[string]any{
		"Kind":  kind,
		"Shape": shape,
	})
	if err != nil {
		return err
	}

	system = prompt.NewBuilder().Add(system).Add(contract).Build()

	resp, err := w.complete(ctx, Request{Role: role, System: system, Prompt: user})
	if err != nil {
		return err
	}

	if err := decodeJSON(resp.Content, out); err != nil {
		return fmt.Errorf("%s: decode reply: %w", role, err)
	}
	return nil
}

func (w *LLMWriter) render(role task.Role, b Brief) (system, user string, err error) {
	system, err = w.prompts.Load(string(role) + "-system")
	if err != nil {
		return "", "", err
	}

	user, err = w.prompts.LoadWithVars(string(role)+"-request", briefVars(b))
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

// complete runs the request and records both sides to the run transcript.
func (w *LLMWriter) complete(ctx context.Context, req Request) (Response, error) {
	w.record(ctx, transcript.Turn{Role: "user", Agent: string(req.Role), Content: req.Prompt})

	start := time.Now()
	resp, err := w.completer.Complete(ctx, req)
	duration := time.Since(start)
	if err != nil {
		w.logger.Error("completion failed", "role", req.Role, "duration", duration, "error", err)
		return Response{}, fmt.Errorf("%s: %w", req.Role, err)
	}

	w.logger.Debug("completion finished",
		"role", req.Role,
		"model", task.SelectModel(req.Role),
		"duration", duration,
		"tokens_in", resp.TokensIn,
		"tokens_out", resp.TokensOut,
	)

	w.record(ctx, transcript.Turn{
		Role:       "assistant",
		Agent:      string(req.Role),
		Content:    resp.Content,
		TokensIn:   resp.TokensIn,
		TokensOut:  resp.TokensOut,
		DurationMs: duration.Milliseconds(),
	})
	return resp, nil
}

func (w *LLMWriter) record(ctx context.Context, turn transcript.Turn) {
	if err := transcript.Record(ctx, turn); err != nil {
		w.logger.Warn("failed to record transcript turn", "agent", turn.Agent, "error", err)
	}
}

func briefVars(b Brief) map[string]any {
	return map[string]any{
		"Concept":        b.Concept,
		"Plot":           b.Plot,
		"Characters":     b.Characters,
		"Theme":          b.Theme,
		"Screenplay":     b.Screenplay,
		"CriticFeedback": b.CriticFeedback,
		"Feedback":       b.Feedback,
	}
}

// decodeJSON decodes the first JSON value in s, skipping any markdown code
// fence or prose the model put around it.
func decodeJSON(s string, out any) error {
	body := extractJSON(s)
	if body == "" {
		return fmt.Errorf("no JSON object in reply")
	}
	return json.Unmarshal([]byte(body), out)
}

func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		// drop the info string (```json)
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return ""
	}
	return s[start : end+1]
}
