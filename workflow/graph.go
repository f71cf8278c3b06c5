package workflow

import (
	"slices"
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/storyflow/feedback"
	"github.com/randalmurphal/storyflow/metrics"
	"github.com/randalmurphal/storyflow/notify"
	"github.com/randalmurphal/storyflow/story"
)

// buildDraft compiles the first pass: develop_plot through market_analysis.
// Reaching END after market_analysis is the interrupt.
func (e *Engine) buildDraft() (*flowgraph.CompiledGraph[story.State], error) {
	graph := flowgraph.NewGraph[story.State]()
	e.addChain(graph)
	return graph.SetEntry(Chain[0].Name).Compile()
}

// buildRevise compiles the resume path: handle_user_feedback, the feedback
// router, then the chain from whichever step the router picks.
func (e *Engine) buildRevise() (*flowgraph.CompiledGraph[story.State], error) {
	graph := flowgraph.NewGraph[story.State]()
	e.addChain(graph)
	return graph.
		AddNode(StepHandleUserFeedback, e.node(Step{StepHandleUserFeedback, HandleUserFeedback})).
		AddConditionalEdge(StepHandleUserFeedback, RouteFeedback).
		SetEntry(StepHandleUserFeedback).
		Compile()
}

func (e *Engine) addChain(graph *flowgraph.Graph[story.State]) {
	for i, step := range Chain {
		graph.AddNode(step.Name, e.node(step))
		next := flowgraph.END
		if i+1 < len(Chain) {
			next = Chain[i+1].Name
		}
		graph.AddEdge(step.Name, next)
	}
}

// RouteFeedback picks the step to restart at from the most recent feedback
// entry. Only an entry injected after the run suspended counts; with none,
// or with feedback that names no step, the run ends.
func RouteFeedback(ctx flowgraph.Context, state story.State) string {
	if len(state.UserFeedback) <= state.FeedbackSeen {
		return flowgraph.END
	}

	latest, _ := state.LatestFeedback()
	category := latest.Category
	if category == feedback.None {
		// entries restored from older snapshots may be untagged
		category = feedback.Classify(latest.Text)
	}

	if step := category.Step(); step != "" {
		return step
	}
	return flowgraph.END
}

// node adapts a step into a flowgraph node: it runs the step, merges the
// update, extends the trail and records logs and metrics.
func (e *Engine) node(step Step) flowgraph.NodeFunc[story.State] {
	return func(ctx flowgraph.Context, state story.State) (story.State, error) {
		logger := e.logger.With("run_id", state.RunID, "step", step.Name)
		logger.Debug("step started")

		start := time.Now()
		update, err := step.Run(ctx, state, e.writer)
		duration := time.Since(start)
		metrics.RecordStep(step.Name, duration, err)

		if err != nil {
			logger.Error("step failed", "duration", duration, "error", err)
			return state, err
		}

		next := story.Merge(state, update)
		next.Trail = append(slices.Clone(state.Trail), step.Name)

		logger.Info("step completed", "duration", duration)
		e.notify(ctx, notify.Event{
			Type:     notify.EventStepCompleted,
			RunID:    state.RunID,
			Step:     step.Name,
			Message:  "step " + step.Name + " completed",
			Severity: notify.SeverityInfo,
			Metadata: map[string]any{"duration_ms": duration.Milliseconds()},
		})
		return next, nil
	}
}
