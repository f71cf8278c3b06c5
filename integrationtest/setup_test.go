package integrationtest

import (
	"context"
	"testing"

	llm "github.com/randalmurphal/llmkit/claude"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/storyflow/agent"
	"github.com/randalmurphal/storyflow/artifact"
	"github.com/randalmurphal/storyflow/logging"
	"github.com/randalmurphal/storyflow/notify"
	"github.com/randalmurphal/storyflow/prompt"
	"github.com/randalmurphal/storyflow/task"
	"github.com/randalmurphal/storyflow/transcript"
	"github.com/randalmurphal/storyflow/workflow"
)

// cannedReplies are what each role's mock model answers.
var cannedReplies = map[task.Role]string{
	task.PlotDeveloper: `{"premise":"A keeper finds a door in the sea","synopsis":"She opens it.",` +
		`"setting":"North Atlantic, 1952","turning_points":["the door appears","the storm"],"resolution":"She stays."}`,
	task.CharacterDesigner: "```json\n" + `{"characters":[{"name":"Mara","role":"protagonist",` +
		`"background":"keeper","arc":"from fear to wonder","personality":"stubborn"}]}` + "\n```",
	task.ThemeAnalyst:  `{"main_theme":"thresholds","moral":"some doors choose you","subthemes":["isolation"]}`,
	task.Screenwriter:  `{"acts":["setup","storm","return"],"key_scenes":["the door"],"dialogue":["Who knocked?"]}`,
	task.Director:      "Slow the second act down.",
	task.Critic:        "A quiet, confident fable.",
	task.MarketAnalyst: `{"target_audience":["adults"],"genre_positioning":"literary fantasy","unique_selling_points":["one location"],"comparisons":["The Lighthouse"]}`,
}

// stack is a fully wired storyflow engine over mock models.
type stack struct {
	engine      *workflow.Engine
	mocks       map[task.Role]*llm.MockClient
	transcripts *transcript.FileStore
	artifacts   *artifact.Manager
	events      *[]notify.Event
}

func newStack(t *testing.T) *stack {
	t.Helper()
	return newStackWith(t, nil)
}

// newStackWith is newStack with some roles answering differently.
func newStackWith(t *testing.T, overrides map[task.Role]string) *stack {
	t.Helper()
	dir := t.TempDir()

	mocks := make(map[task.Role]*llm.MockClient, len(task.Roles))
	completer := agent.NewClientCompleter(nil)
	for _, role := range task.Roles {
		reply, ok := overrides[role]
		if !ok {
			reply = cannedReplies[role]
		}
		mocks[role] = llm.NewMockClient("").WithResponses(reply)
		completer.WithRoleClient(role, mocks[role])
	}

	writer := agent.NewLLMWriter(completer, prompt.NewLoader(dir)).WithLogger(logging.NewTest())

	store, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: dir})
	require.NoError(t, err)

	var events []notify.Event
	engine, err := workflow.NewEngine(writer,
		workflow.WithLogger(logging.NewTest()),
		workflow.WithTranscripts(store),
		workflow.WithNotifier(&notificationCapture{events: &events}),
	)
	require.NoError(t, err)

	return &stack{
		engine:      engine,
		mocks:       mocks,
		transcripts: store,
		artifacts:   artifact.NewManager(artifact.Config{BaseDir: dir}),
		events:      &events,
	}
}

// notificationCapture captures notifications for testing.
type notificationCapture struct {
	events *[]notify.Event
}

func (n *notificationCapture) Notify(ctx context.Context, event notify.Event) error {
	*n.events = append(*n.events, event)
	return nil
}
