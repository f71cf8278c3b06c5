// Package transcript records the agent conversations of a story run.
//
// Core types:
//   - Transcript: a recorded run with metadata and turns
//   - Turn: a single prompt or completion, tagged with the agent role
//   - Manager: interface for transcript lifecycle management
//   - FileStore: file-based implementation under <base>/runs/<run-id>
//   - Viewer: transcript display and markdown export
//
// A run that suspends for user feedback ends with RunStatusSuspended.
// Calling StartRun again with the same run ID reopens it, so one transcript
// covers the draft and every revision.
//
// Example usage:
//
//	store, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: ".storyflow"})
//	err = store.StartRun("2026-01-02-abc123", transcript.RunMetadata{
//	    FlowID: "screenplay",
//	    Input:  map[string]any{"concept": concept},
//	})
//	err = store.RecordTurn("2026-01-02-abc123", transcript.Turn{
//	    Role:    "assistant",
//	    Agent:   "plot_developer",
//	    Content: plotJSON,
//	})
package transcript
