package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/testutil"
)

func draftedState() story.State {
	plot := testutil.SamplePlot()
	theme := testutil.SampleTheme()
	sp := testutil.SampleScreenplay()
	s := story.NewState(concept)
	s.Plot = &plot
	s.Characters = testutil.SampleCharacters()
	s.Theme = &theme
	s.Screenplay = &sp
	s.CriticFeedback = []string{"earlier review"}
	return s
}

func TestSteps_MissingPrerequisites(t *testing.T) {
	tests := []struct {
		name  string
		run   StepFunc
		state story.State
	}{
		{"develop_plot without concept", DevelopPlot, story.State{}},
		{"create_characters without plot", CreateCharacters, story.NewState(concept)},
		{"develop_theme without characters", DevelopTheme, func() story.State {
			s := draftedState()
			s.Characters = nil
			return s
		}()},
		{"write_screenplay without theme", WriteScreenplay, func() story.State {
			s := draftedState()
			s.Theme = nil
			return s
		}()},
		{"director_review without screenplay", DirectorReview, func() story.State {
			s := draftedState()
			s.Screenplay = nil
			return s
		}()},
		{"critic_review without theme", CriticReview, func() story.State {
			s := draftedState()
			s.Theme = nil
			return s
		}()},
		{"market_analysis without critic feedback", MarketAnalysis, func() story.State {
			s := draftedState()
			s.CriticFeedback = nil
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.NewStubWriter()

			_, err := tt.run(context.Background(), tt.state, w)
			assert.ErrorIs(t, err, story.ErrMissingPrerequisite)
			assert.Empty(t, w.Calls(), "writer must not be called")
		})
	}
}

func TestSteps_ReturnUpdatesOnly(t *testing.T) {
	state := draftedState()
	before := len(state.CriticFeedback)

	u, err := CriticReview(context.Background(), state, testutil.NewStubWriter())
	require.NoError(t, err)

	assert.Equal(t, []string{"critic review 1"}, u.CriticFeedback)
	assert.Len(t, state.CriticFeedback, before, "input state is untouched")
	require.Len(t, u.Messages, 1)
	assert.Equal(t, "assistant", u.Messages[0].Role)
	assert.Equal(t, "critic", u.Messages[0].Name)
}

func TestSteps_StructuredMessageIsJSON(t *testing.T) {
	u, err := DevelopPlot(context.Background(), story.NewState(concept), testutil.NewStubWriter())
	require.NoError(t, err)

	require.NotNil(t, u.Plot)
	require.Len(t, u.Messages, 1)
	assert.Contains(t, u.Messages[0].Content, `"premise":`)
	assert.Equal(t, "plot_developer", u.Messages[0].Name)
}

func TestHandleUserFeedback_NoOp(t *testing.T) {
	u, err := HandleUserFeedback(context.Background(), draftedState(), nil)
	require.NoError(t, err)
	assert.Equal(t, story.Update{}, u)
}

func TestBriefFor_OnlyUnroutedFeedback(t *testing.T) {
	s := draftedState().AddFeedback("the plot").AddFeedback("the theme")
	s.FeedbackSeen = 1

	b := briefFor(s)
	assert.Equal(t, []string{"the theme"}, b.Feedback)
	assert.Equal(t, concept, b.Concept)
	assert.Equal(t, s.CriticFeedback, b.CriticFeedback)

	s.FeedbackSeen = 10
	assert.Empty(t, briefFor(s).Feedback)
}
