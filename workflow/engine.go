package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/storyflow/agent"
	"github.com/randalmurphal/storyflow/feedback"
	"github.com/randalmurphal/storyflow/metrics"
	"github.com/randalmurphal/storyflow/notify"
	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/transcript"
)

// FlowID identifies the screenplay flow in transcripts and notifications.
const FlowID = "screenplay"

// Engine errors
var (
	ErrNoWriter     = errors.New("workflow: writer is required")
	ErrNotSuspended = errors.New("workflow: run is not waiting for feedback")
	ErrRunFinished  = errors.New("workflow: run already completed")
	ErrEmptyConcept = errors.New("workflow: concept is empty")

	ErrUnknownCategory = errors.New("workflow: unknown feedback category")
)

// Status is the outcome of one engine invocation.
type Status string

const (
	// StatusSuspended means the draft is ready and the run waits for
	// feedback before handle_user_feedback.
	StatusSuspended Status = "suspended"
	// StatusCompleted means the run terminated.
	StatusCompleted Status = "completed"
)

// Result is what an invocation returns.
type Result struct {
	State  story.State
	Status Status
	Next   string // step the run resumes at; empty when completed
}

// Suspended reports whether the run is waiting for feedback.
func (r Result) Suspended() bool {
	return r.Status == StatusSuspended
}

// Engine drives the screenplay graph. It is safe for concurrent use as
// long as each run's state is only handled by one caller at a time.
type Engine struct {
	writer      agent.Writer
	logger      *slog.Logger
	notifier    notify.Notifier
	transcripts transcript.Manager

	draft  *flowgraph.CompiledGraph[story.State]
	revise *flowgraph.CompiledGraph[story.State]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithNotifier sets where run events are sent. Without one the engine
// falls back to a notifier carried by the invocation context.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithTranscripts records every run in m.
func WithTranscripts(m transcript.Manager) Option {
	return func(e *Engine) {
		e.transcripts = m
	}
}

// NewEngine compiles the screenplay graphs around w.
func NewEngine(w agent.Writer, opts ...Option) (*Engine, error) {
	if w == nil {
		return nil, ErrNoWriter
	}

	e := &Engine{
		writer: w,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.draft, err = e.buildDraft(); err != nil {
		return nil, fmt.Errorf("compile draft graph: %w", err)
	}
	if e.revise, err = e.buildRevise(); err != nil {
		return nil, fmt.Errorf("compile revise graph: %w", err)
	}
	return e, nil
}

// Start begins a new run for concept and drives it to the first interrupt.
func (e *Engine) Start(ctx context.Context, concept string) (Result, error) {
	if concept == "" {
		return Result{}, ErrEmptyConcept
	}
	return e.Invoke(ctx, story.NewState(concept))
}

// Resume injects feedback into a suspended run and continues it. Feedback
// naming a step re-runs the chain from that step; anything else ends the
// run.
func (e *Engine) Resume(ctx context.Context, state story.State, text string) (Result, error) {
	return e.ResumeAs(ctx, state, text, feedback.Classify(text))
}

// ResumeAs is Resume with the feedback routed by category instead of by
// its wording. feedback.None falls back to classifying the text.
func (e *Engine) ResumeAs(ctx context.Context, state story.State, text string, category feedback.Category) (Result, error) {
	if !state.Interrupted() {
		return Result{State: state}, ErrNotSuspended
	}
	if !category.Valid() {
		return Result{State: state}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if category == feedback.None {
		category = feedback.Classify(text)
	}

	entry := feedback.Entry{Text: text, Category: category}
	metrics.RecordFeedback(string(entry.Category))
	e.logger.Info("feedback received", "run_id", state.RunID, "category", entry.Category)

	state = story.Merge(state, story.Update{
		UserFeedback: []feedback.Entry{entry},
		Messages:     []story.Message{{Role: "user", Content: text, Timestamp: time.Now()}},
	})
	return e.Invoke(ctx, state)
}

// Invoke runs state from where it stands: from develop_plot when it is
// fresh, from handle_user_feedback when it is suspended. Feedback already
// appended to a suspended state is routed on; with none the run ends.
func (e *Engine) Invoke(ctx context.Context, state story.State) (Result, error) {
	resuming := state.Interrupted()
	if !resuming && len(state.Trail) > 0 {
		return Result{State: state}, ErrRunFinished
	}
	if state.RunID == "" {
		state.RunID = story.NewState(state.Concept).RunID
	}

	logger := e.logger.With("run_id", state.RunID)
	notifier := e.notifierFor(ctx)
	ctx = notify.WithNotifier(ctx, notifier)
	ctx = e.startTranscript(ctx, state, logger)

	graph, event := e.draft, notify.EventRunStarted
	if resuming {
		graph, event = e.revise, notify.EventRunResumed
	}
	logger.Info("run invoked", "resuming", resuming)
	e.notify(ctx, notify.Event{
		Type:     event,
		RunID:    state.RunID,
		Message:  "run " + string(event),
		Severity: notify.SeverityInfo,
	})

	// The interrupt marker only describes the stored state; clear it for
	// the pass that is about to run.
	in := state
	in.InterruptedAt = ""

	out, err := graph.Run(flowgraph.NewContext(ctx), in,
		flowgraph.WithRunID(state.RunID),
		flowgraph.WithObservabilityLogger(logger))
	if err != nil {
		return e.fail(ctx, state, err, logger)
	}

	result := Result{State: out, Status: StatusCompleted}
	if n := len(out.Trail); n > 0 && out.Trail[n-1] == StepMarketAnalysis {
		result.State.InterruptedAt = StepHandleUserFeedback
		result.State.FeedbackSeen = len(out.UserFeedback)
		result.Status = StatusSuspended
		result.Next = StepHandleUserFeedback
	}

	e.finish(ctx, result, logger)
	return result, nil
}

func (e *Engine) fail(ctx context.Context, state story.State, err error, logger *slog.Logger) (Result, error) {
	metrics.RecordRun("failed")
	logger.Error("run failed", "error", err)

	if e.transcripts != nil {
		if terr := e.transcripts.EndRunWithError(state.RunID, err); terr != nil {
			logger.Warn("failed to end transcript", "error", terr)
		}
	}

	var step string
	var nodeErr *flowgraph.NodeError
	if errors.As(err, &nodeErr) {
		step = nodeErr.NodeID
	}
	e.notify(ctx, notify.Event{
		Type:     notify.EventRunFailed,
		RunID:    state.RunID,
		Step:     step,
		Message:  err.Error(),
		Severity: notify.SeverityError,
	})

	return Result{State: state}, fmt.Errorf("run %s: %w", state.RunID, err)
}

func (e *Engine) finish(ctx context.Context, result Result, logger *slog.Logger) {
	metrics.RecordRun(string(result.Status))
	logger.Info("run "+string(result.Status), "steps", len(result.State.Trail))

	if e.transcripts != nil {
		status := transcript.RunStatusCompleted
		if result.Suspended() {
			status = transcript.RunStatusSuspended
		}
		if err := e.transcripts.EndRun(result.State.RunID, status); err != nil {
			logger.Warn("failed to end transcript", "error", err)
		}
	}

	event := notify.Event{
		Type:     notify.EventRunCompleted,
		RunID:    result.State.RunID,
		Message:  "run completed",
		Severity: notify.SeverityInfo,
	}
	if result.Suspended() {
		event.Type = notify.EventDraftReady
		event.Step = result.Next
		event.Message = "draft ready for feedback"
	}
	e.notify(ctx, event)
}

// startTranscript opens (or reopens) the run's transcript and returns a
// context agents can record into.
func (e *Engine) startTranscript(ctx context.Context, state story.State, logger *slog.Logger) context.Context {
	if e.transcripts == nil {
		return ctx
	}

	err := e.transcripts.StartRun(state.RunID, transcript.RunMetadata{
		FlowID: FlowID,
		Input:  map[string]any{"concept": state.Concept},
	})
	if err != nil {
		logger.Warn("failed to start transcript", "error", err)
		return ctx
	}

	ctx = transcript.WithManager(ctx, e.transcripts)
	return transcript.WithRunID(ctx, state.RunID)
}

func (e *Engine) notifierFor(ctx context.Context) notify.Notifier {
	if e.notifier != nil {
		return e.notifier
	}
	if n := notify.NotifierFromContext(ctx); n != nil {
		return n
	}
	return notify.NopNotifier{}
}

// notify sends an event without failing the run on delivery errors.
func (e *Engine) notify(ctx context.Context, event notify.Event) {
	n := notify.NotifierFromContext(ctx)
	if n == nil {
		n = e.notifierFor(ctx)
	}
	event.FlowID = FlowID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := n.Notify(ctx, event); err != nil {
		e.logger.Warn("notification failed", "event", event.Type, "error", err)
	}
}
