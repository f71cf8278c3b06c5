package story

import (
	"errors"
	"strings"
	"testing"

	"github.com/randalmurphal/storyflow/feedback"
)

func TestNewState(t *testing.T) {
	state := NewState("A time-traveling chef")

	if state.Concept != "A time-traveling chef" {
		t.Errorf("Concept = %q", state.Concept)
	}
	if state.RunID == "" {
		t.Error("RunID should be generated")
	}
	if state.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}
	if state.Plot != nil || state.Theme != nil || state.Screenplay != nil || state.MarketAnalysis != nil {
		t.Error("records should start empty")
	}
}

func TestState_WithRunID(t *testing.T) {
	state := NewState("concept").WithRunID("custom-run-id")

	if state.RunID != "custom-run-id" {
		t.Errorf("RunID = %q, want %q", state.RunID, "custom-run-id")
	}
}

func TestMerge_ReplacesRecords(t *testing.T) {
	state := NewState("concept")
	state = Merge(state, Update{Plot: &Plot{Premise: "first"}})
	state = Merge(state, Update{Plot: &Plot{Premise: "second"}})

	if state.Plot.Premise != "second" {
		t.Errorf("Plot.Premise = %q, want %q", state.Plot.Premise, "second")
	}

	state = Merge(state, Update{Characters: []Character{{Name: "A"}, {Name: "B"}}})
	state = Merge(state, Update{Characters: []Character{{Name: "C"}}})

	if len(state.Characters) != 1 || state.Characters[0].Name != "C" {
		t.Errorf("Characters = %+v, want only C", state.Characters)
	}
}

func TestMerge_NilFieldsUntouched(t *testing.T) {
	state := Merge(NewState("concept"), Update{
		Plot:  &Plot{Premise: "p"},
		Theme: &Theme{MainTheme: "t"},
	})

	state = Merge(state, Update{Screenplay: &Screenplay{Acts: []string{"I"}}})

	if state.Plot == nil || state.Plot.Premise != "p" {
		t.Error("Plot should survive an unrelated update")
	}
	if state.Theme == nil || state.Theme.MainTheme != "t" {
		t.Error("Theme should survive an unrelated update")
	}
	if state.Concept != "concept" {
		t.Error("Concept should never change")
	}
}

func TestMerge_AppendsLists(t *testing.T) {
	state := NewState("concept")
	state = Merge(state, Update{DirectorNotes: []string{"n1"}, CriticFeedback: []string{"c1"}})
	state = Merge(state, Update{DirectorNotes: []string{"n2"}, CriticFeedback: []string{"c2"}})

	if strings.Join(state.DirectorNotes, ",") != "n1,n2" {
		t.Errorf("DirectorNotes = %v", state.DirectorNotes)
	}
	if strings.Join(state.CriticFeedback, ",") != "c1,c2" {
		t.Errorf("CriticFeedback = %v", state.CriticFeedback)
	}
}

func TestMerge_DoesNotAlias(t *testing.T) {
	base := Merge(NewState("concept"), Update{DirectorNotes: []string{"n1"}})
	plot := &Plot{Premise: "original"}

	a := Merge(base, Update{DirectorNotes: []string{"a"}, Plot: plot})
	b := Merge(base, Update{DirectorNotes: []string{"b"}})

	if a.DirectorNotes[1] != "a" || b.DirectorNotes[1] != "b" {
		t.Errorf("branches share storage: a=%v b=%v", a.DirectorNotes, b.DirectorNotes)
	}
	if len(base.DirectorNotes) != 1 {
		t.Errorf("base modified: %v", base.DirectorNotes)
	}

	plot.Premise = "mutated"
	if a.Plot.Premise != "original" {
		t.Error("merged plot should not alias the update's pointer")
	}
}

func TestState_AddFeedback(t *testing.T) {
	state := NewState("concept")
	inputs := []string{"more plot twists", "deepen the theme", "love it"}

	for i, in := range inputs {
		state = state.AddFeedback(in)
		if len(state.UserFeedback) != i+1 {
			t.Fatalf("after %d additions len = %d", i+1, len(state.UserFeedback))
		}
	}

	for i, in := range inputs {
		if state.UserFeedback[i].Text != in {
			t.Errorf("UserFeedback[%d] = %q, want %q", i, state.UserFeedback[i].Text, in)
		}
	}

	wantCats := []feedback.Category{feedback.Plot, feedback.Theme, feedback.Other}
	for i, want := range wantCats {
		if got := state.UserFeedback[i].Category; got != want {
			t.Errorf("UserFeedback[%d].Category = %q, want %q", i, got, want)
		}
	}
}

func TestState_AddFeedbackAs(t *testing.T) {
	state := NewState("concept").AddFeedbackAs("make it darker", feedback.Screenplay)

	latest, ok := state.LatestFeedback()
	if !ok {
		t.Fatal("expected feedback")
	}
	if latest.Category != feedback.Screenplay {
		t.Errorf("Category = %q, want %q", latest.Category, feedback.Screenplay)
	}
}

func TestState_LatestFeedback_Empty(t *testing.T) {
	if _, ok := NewState("concept").LatestFeedback(); ok {
		t.Error("LatestFeedback should report false on an empty list")
	}
}

func TestState_Validate(t *testing.T) {
	full := Merge(NewState("concept"), Update{
		Plot:           &Plot{},
		Characters:     []Character{{Name: "A"}},
		Theme:          &Theme{},
		Screenplay:     &Screenplay{},
		CriticFeedback: []string{"fine"},
	})

	if err := full.Validate(RequireConcept, RequirePlot, RequireCharacters,
		RequireTheme, RequireScreenplay, RequireCriticFeedback); err != nil {
		t.Errorf("Validate() on full state = %v", err)
	}

	tests := []struct {
		name  string
		state State
		req   Requirement
	}{
		{"concept", State{}, RequireConcept},
		{"plot", NewState("c"), RequirePlot},
		{"characters", NewState("c"), RequireCharacters},
		{"theme", NewState("c"), RequireTheme},
		{"screenplay", NewState("c"), RequireScreenplay},
		{"critic feedback", NewState("c"), RequireCriticFeedback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate(tt.req)
			if !errors.Is(err, ErrMissingPrerequisite) {
				t.Fatalf("Validate(%s) = %v, want ErrMissingPrerequisite", tt.req, err)
			}
			if !strings.Contains(err.Error(), string(tt.req)) {
				t.Errorf("error %q should name %q", err, tt.req)
			}
		})
	}
}

func TestState_Validate_Unknown(t *testing.T) {
	err := NewState("c").Validate("budget")
	if err == nil || errors.Is(err, ErrMissingPrerequisite) {
		t.Errorf("Validate(unknown) = %v, want plain error", err)
	}
}

func TestState_Summary(t *testing.T) {
	state := NewState("concept").WithRunID("run-1")
	if !strings.Contains(state.Summary(), "pending") {
		t.Errorf("Summary() = %q, want pending", state.Summary())
	}

	state = Merge(state, Update{Plot: &Plot{}})
	if !strings.Contains(state.Summary(), "drafting") {
		t.Errorf("Summary() = %q, want drafting", state.Summary())
	}

	state.InterruptedAt = "handle_user_feedback"
	summary := state.Summary()
	if !strings.Contains(summary, "awaiting feedback") || !strings.Contains(summary, "run-1") {
		t.Errorf("Summary() = %q", summary)
	}
}
