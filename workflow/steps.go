package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/randalmurphal/storyflow/agent"
	"github.com/randalmurphal/storyflow/feedback"
	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/task"
)

// Step names, in graph order. The names double as flowgraph node IDs.
const (
	StepDevelopPlot        = feedback.StepDevelopPlot
	StepCreateCharacters   = feedback.StepCreateCharacters
	StepDevelopTheme       = feedback.StepDevelopTheme
	StepWriteScreenplay    = feedback.StepWriteScreenplay
	StepDirectorReview     = "director_review"
	StepCriticReview       = "critic_review"
	StepMarketAnalysis     = "market_analysis"
	StepHandleUserFeedback = "handle_user_feedback"
)

// StepFunc computes one step's partial update from the current state.
// Steps never modify the state they are given; the engine merges the
// returned update.
type StepFunc func(ctx context.Context, state story.State, w agent.Writer) (story.Update, error)

// Step pairs a step name with its function.
type Step struct {
	Name string
	Run  StepFunc
}

// Chain lists the agent steps in execution order. handle_user_feedback is
// not part of the chain; it is the interrupt point after it.
var Chain = []Step{
	{StepDevelopPlot, DevelopPlot},
	{StepCreateCharacters, CreateCharacters},
	{StepDevelopTheme, DevelopTheme},
	{StepWriteScreenplay, WriteScreenplay},
	{StepDirectorReview, DirectorReview},
	{StepCriticReview, CriticReview},
	{StepMarketAnalysis, MarketAnalysis},
}

// =============================================================================
// Story Steps
// =============================================================================

// DevelopPlot drafts the plot from the concept.
//
// Prerequisites: state.Concept
// Updates: state.Plot, state.Messages
func DevelopPlot(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequireConcept); err != nil {
		return story.Update{}, err
	}

	plot, err := w.Plot(ctx, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		Plot:     &plot,
		Messages: assistantMessage(task.PlotDeveloper, plot),
	}, nil
}

// CreateCharacters designs the cast for the plot.
//
// Prerequisites: state.Plot
// Updates: state.Characters (replaced), state.Messages
func CreateCharacters(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequirePlot); err != nil {
		return story.Update{}, err
	}

	chars, err := w.Characters(ctx, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		Characters: chars,
		Messages:   assistantMessage(task.CharacterDesigner, chars),
	}, nil
}

// DevelopTheme analyzes the plot and cast for themes.
//
// Prerequisites: state.Plot, state.Characters
// Updates: state.Theme, state.Messages
func DevelopTheme(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequirePlot, story.RequireCharacters); err != nil {
		return story.Update{}, err
	}

	theme, err := w.Theme(ctx, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		Theme:    &theme,
		Messages: assistantMessage(task.ThemeAnalyst, theme),
	}, nil
}

// WriteScreenplay turns plot, cast and theme into a screenplay outline.
//
// Prerequisites: state.Plot, state.Characters, state.Theme
// Updates: state.Screenplay, state.Messages
func WriteScreenplay(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequirePlot, story.RequireCharacters, story.RequireTheme); err != nil {
		return story.Update{}, err
	}

	sp, err := w.Screenplay(ctx, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		Screenplay: &sp,
		Messages:   assistantMessage(task.Screenwriter, sp),
	}, nil
}

// =============================================================================
// Review Steps
// =============================================================================

// DirectorReview adds one director note on the screenplay.
//
// Prerequisites: state.Screenplay
// Updates: state.DirectorNotes (appended), state.Messages
func DirectorReview(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequireScreenplay); err != nil {
		return story.Update{}, err
	}

	notes, err := w.Review(ctx, task.Director, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		DirectorNotes: []string{notes},
		Messages:      assistantMessage(task.Director, notes),
	}, nil
}

// CriticReview adds one critic review of the whole concept.
//
// Prerequisites: state.Plot, state.Theme, state.Screenplay
// Updates: state.CriticFeedback (appended), state.Messages
func CriticReview(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequirePlot, story.RequireTheme, story.RequireScreenplay); err != nil {
		return story.Update{}, err
	}

	review, err := w.Review(ctx, task.Critic, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		CriticFeedback: []string{review},
		Messages:       assistantMessage(task.Critic, review),
	}, nil
}

// MarketAnalysis assesses the commercial prospects.
//
// Prerequisites: state.Plot, state.Theme, state.CriticFeedback
// Updates: state.MarketAnalysis, state.Messages
func MarketAnalysis(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	if err := state.Validate(story.RequirePlot, story.RequireTheme, story.RequireCriticFeedback); err != nil {
		return story.Update{}, err
	}

	m, err := w.MarketAnalysis(ctx, briefFor(state))
	if err != nil {
		return story.Update{}, err
	}

	return story.Update{
		MarketAnalysis: &m,
		Messages:       assistantMessage(task.MarketAnalyst, m),
	}, nil
}

// HandleUserFeedback does nothing. It exists so the run has a node to
// suspend before and to route from.
//
// Updates: None
func HandleUserFeedback(ctx context.Context, state story.State, w agent.Writer) (story.Update, error) {
	return story.Update{}, nil
}

// =============================================================================
// Helpers
// =============================================================================

// briefFor builds an agent brief from state. Feedback is the entries
// injected since the run last suspended, so a restarted step and every
// step after it see what the reviewer asked for.
func briefFor(state story.State) agent.Brief {
	b := agent.Brief{
		Concept:        state.Concept,
		Plot:           state.Plot,
		Characters:     state.Characters,
		Theme:          state.Theme,
		Screenplay:     state.Screenplay,
		CriticFeedback: state.CriticFeedback,
	}

	seen := min(max(state.FeedbackSeen, 0), len(state.UserFeedback))
	for _, entry := range state.UserFeedback[seen:] {
		b.Feedback = append(b.Feedback, entry.Text)
	}
	return b
}

// assistantMessage records a step's output in the message history. Records
// are stored as JSON, free text as is.
func assistantMessage(role task.Role, v any) []story.Message {
	content, ok := v.(string)
	if !ok {
		// story records always marshal
		data, _ := json.Marshal(v)
		content = string(data)
	}
	return []story.Message{{
		Role:      "assistant",
		Name:      string(role),
		Content:   content,
		Timestamp: time.Now(),
	}}
}
