// Package workflow runs the screenplay flow as a flowgraph graph.
//
// The chain is seven agent steps:
//
//	develop_plot -> create_characters -> develop_theme -> write_screenplay
//	  -> director_review -> critic_review -> market_analysis
//
// After market_analysis the run suspends before handle_user_feedback. The
// caller shows the draft, then resumes with feedback. Feedback about the
// plot, characters, theme or screenplay restarts the chain at that step;
// anything else, or no feedback at all, ends the run.
//
// Steps are pure functions of the state that return a story.Update. The
// Engine merges updates, keeps the trail of executed steps, and records
// logs, metrics, transcripts and notifications around every step.
//
// Example usage:
//
//	engine, err := workflow.NewEngine(writer, workflow.WithLogger(logger))
//	res, err := engine.Start(ctx, "A lighthouse keeper finds a message in a bottle")
//	for res.Suspended() {
//	    res, err = engine.Resume(ctx, res.State, readFeedback())
//	}
package workflow
