package story

import (
	"errors"
	"fmt"
	"slices"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/storyflow/feedback"
)

// ErrMissingPrerequisite is returned when a step runs before the step that
// produces one of its inputs.
var ErrMissingPrerequisite = errors.New("missing prerequisite")

// =============================================================================
// Messages
// =============================================================================

// Message is one entry of the run's message history.
type Message struct {
	Role      string    `json:"role"` // "user", "assistant"
	Name      string    `json:"name,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// State - Full Project State
// =============================================================================

// State is the complete project record for one workflow run.
type State struct {
	// Identification
	RunID string `json:"run_id"`

	// Input, set once
	Concept string `json:"concept"`

	// Agent output
	Plot           *Plot           `json:"plot,omitempty"`
	Characters     []Character     `json:"characters,omitempty"`
	Theme          *Theme          `json:"theme,omitempty"`
	Screenplay     *Screenplay     `json:"screenplay,omitempty"`
	MarketAnalysis *MarketAnalysis `json:"market_analysis,omitempty"`

	// Append-only lists
	DirectorNotes  []string         `json:"director_notes,omitempty"`
	CriticFeedback []string         `json:"critic_feedback,omitempty"`
	UserFeedback   []feedback.Entry `json:"user_feedback,omitempty"`
	Messages       []Message        `json:"messages,omitempty"`

	// Execution bookkeeping
	Trail         []string  `json:"trail,omitempty"`
	InterruptedAt string    `json:"interrupted_at,omitempty"`
	FeedbackSeen  int       `json:"feedback_seen,omitempty"`
	StartTime     time.Time `json:"start_time"`
}

// NewState creates the initial state for a concept.
func NewState(concept string) State {
	return State{
		RunID:     generateRunID(),
		Concept:   concept,
		StartTime: time.Now(),
	}
}

// WithRunID sets a custom run ID
func (s State) WithRunID(runID string) State {
	s.RunID = runID
	return s
}

// AddFeedback returns a copy of s with text appended to UserFeedback,
// tagged with its classified category.
func (s State) AddFeedback(text string) State {
	return Merge(s, Update{UserFeedback: []feedback.Entry{feedback.NewEntry(text)}})
}

// AddFeedbackAs appends feedback with an explicit category instead of
// classifying the text.
func (s State) AddFeedbackAs(text string, category feedback.Category) State {
	return Merge(s, Update{UserFeedback: []feedback.Entry{{Text: text, Category: category}}})
}

// LatestFeedback returns the most recently appended feedback entry.
func (s State) LatestFeedback() (feedback.Entry, bool) {
	if len(s.UserFeedback) == 0 {
		return feedback.Entry{}, false
	}
	return s.UserFeedback[len(s.UserFeedback)-1], true
}

// Interrupted reports whether the run is paused waiting for feedback.
func (s State) Interrupted() bool {
	return s.InterruptedAt != ""
}

// =============================================================================
// Partial Updates
// =============================================================================

// Update is the partial result of one step. Nil fields leave the state
// untouched. Record fields replace; list fields append.
type Update struct {
	Plot           *Plot
	Characters     []Character // replaces when non-nil
	Theme          *Theme
	Screenplay     *Screenplay
	MarketAnalysis *MarketAnalysis

	DirectorNotes  []string
	CriticFeedback []string
	UserFeedback   []feedback.Entry
	Messages       []Message
}

// Merge folds u into s and returns the result. s is not modified and the
// result shares no slice backing arrays with it.
func Merge(s State, u Update) State {
	if u.Plot != nil {
		p := *u.Plot
		s.Plot = &p
	}
	if u.Characters != nil {
		s.Characters = slices.Clone(u.Characters)
	}
	if u.Theme != nil {
		t := *u.Theme
		s.Theme = &t
	}
	if u.Screenplay != nil {
		sp := *u.Screenplay
		s.Screenplay = &sp
	}
	if u.MarketAnalysis != nil {
		m := *u.MarketAnalysis
		s.MarketAnalysis = &m
	}

	s.DirectorNotes = appendCopy(s.DirectorNotes, u.DirectorNotes)
	s.CriticFeedback = appendCopy(s.CriticFeedback, u.CriticFeedback)
	s.UserFeedback = appendCopy(s.UserFeedback, u.UserFeedback)
	s.Messages = appendCopy(s.Messages, u.Messages)
	return s
}

func appendCopy[T any](base, extra []T) []T {
	if len(extra) == 0 {
		return base
	}
	return slices.Concat(base, extra)
}

// =============================================================================
// State Validation
// =============================================================================

// Requirement names a state prerequisite.
type Requirement string

const (
	RequireConcept        Requirement = "concept"
	RequirePlot           Requirement = "plot"
	RequireCharacters     Requirement = "characters"
	RequireTheme          Requirement = "theme"
	RequireScreenplay     Requirement = "screenplay"
	RequireCriticFeedback Requirement = "critic_feedback"
)

// Validate checks that every requirement is populated.
func (s State) Validate(requirements ...Requirement) error {
	for _, req := range requirements {
		var ok bool
		switch req {
		case RequireConcept:
			ok = s.Concept != ""
		case RequirePlot:
			ok = s.Plot != nil
		case RequireCharacters:
			ok = len(s.Characters) > 0
		case RequireTheme:
			ok = s.Theme != nil
		case RequireScreenplay:
			ok = s.Screenplay != nil
		case RequireCriticFeedback:
			ok = len(s.CriticFeedback) > 0
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingPrerequisite, req)
		}
	}
	return nil
}

// =============================================================================
// State Summary
// =============================================================================

// Summary returns a human-readable summary of the state
func (s State) Summary() string {
	var status string
	switch {
	case s.Interrupted():
		status = "awaiting feedback"
	case s.MarketAnalysis != nil:
		status = "analyzed"
	case s.Screenplay != nil:
		status = "scripted"
	case s.Plot != nil:
		status = "drafting"
	default:
		status = "pending"
	}

	return fmt.Sprintf("Run %s [%s]: %d characters, %d director notes, %d critic reviews, %d feedback entries",
		s.RunID, status, len(s.Characters), len(s.DirectorNotes), len(s.CriticFeedback), len(s.UserFeedback))
}

// =============================================================================
// Helper Functions
// =============================================================================

const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateRunID creates a unique run ID
func generateRunID() string {
	timestamp := time.Now().Format("2006-01-02")
	suffix, err := nanoid.Generate(runIDAlphabet, 8)
	if err != nil {
		suffix = fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%s", timestamp, suffix)
}
