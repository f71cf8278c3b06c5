// Package artifact exports the records of story runs and manages the
// lifetime of run directories.
//
// A run directory, runs/<run-id>, is shared with the run's transcript:
// the transcript store writes metadata.json and transcript.json, and
// Manager writes artifacts/ beside them. Text artifacts above a size
// threshold are stored gzipped and decompressed transparently on Load.
//
// Example usage:
//
//	mgr := artifact.NewManager(artifact.Config{BaseDir: settings.TranscriptDir})
//	names, err := mgr.SaveStory(result.State)
//	res, err := mgr.Cleanup(artifact.DefaultRetentionConfig(), dryRun)
package artifact
