package agent

import (
	"context"

	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/task"
)

// Brief is everything an agent may be shown for one request. Fields a role
// does not need are left zero.
type Brief struct {
	Concept        string
	Plot           *story.Plot
	Characters     []story.Character
	Theme          *story.Theme
	Screenplay     *story.Screenplay
	CriticFeedback []string

	// Feedback is user feedback to address, oldest first.
	Feedback []string
}

// Writer produces the story artifacts. Structured methods return a record
// that replaces the previous one; Review returns free text for the director
// and critic roles.
type Writer interface {
	Plot(ctx context.Context, b Brief) (story.Plot, error)
	Characters(ctx context.Context, b Brief) ([]story.Character, error)
	Theme(ctx context.Context, b Brief) (story.Theme, error)
	Screenplay(ctx context.Context, b Brief) (story.Screenplay, error)
	MarketAnalysis(ctx context.Context, b Brief) (story.MarketAnalysis, error)
	Review(ctx context.Context, role task.Role, b Brief) (string, error)
}

// Request is a single completion call.
type Request struct {
	Role   task.Role
	System string
	Prompt string
}

// Response is the completion text plus token usage.
type Response struct {
	Content   string
	TokensIn  int
	TokensOut int
}

// Completer performs one completion.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
