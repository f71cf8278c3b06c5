// Package story defines the project state threaded through the movie-concept
// workflow and the structured records each agent produces.
//
// Core types:
//   - State: The full project record for one run
//   - Update: A partial update returned by a single step
//   - Plot, Character, Theme, Screenplay, MarketAnalysis: Structured agent output
//
// Steps never mutate State directly. They return an Update and the
// orchestrator folds it in with Merge:
//
//	state := story.NewState("A time-traveling chef")
//	state = story.Merge(state, story.Update{Plot: &plot})
//
// Records are replaced wholesale. Note and feedback lists are appended.
package story
