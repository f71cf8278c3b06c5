package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/storyflow/artifact"
	"github.com/randalmurphal/storyflow/config"
	"github.com/randalmurphal/storyflow/logging"
	"github.com/randalmurphal/storyflow/transcript"
	"github.com/randalmurphal/storyflow/workflow"
)

func transcriptsCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("transcripts: expected list, show or restore")
	}

	fs := flag.NewFlagSet("transcripts "+args[0], flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum runs to list")
	summary := fs.Bool("summary", false, "one line per turn")
	markdown := fs.Bool("markdown", false, "export as markdown")
	asJSON := fs.Bool("json", false, "export as JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	settings, err := config.Load(config.LoadOptions{Logger: logging.New(false)})
	if err != nil {
		return err
	}
	store, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: settings.TranscriptDir})
	if err != nil {
		return fmt.Errorf("open transcripts: %w", err)
	}
	viewer := transcript.NewViewer()

	switch args[0] {
	case "list":
		metas, err := store.List(transcript.ListFilter{FlowID: workflow.FlowID, Limit: *limit})
		if err != nil {
			return err
		}
		return viewer.FormatMetaList(os.Stdout, metas)
	case "show":
		if fs.NArg() != 1 {
			return errors.New("usage: storyflow transcripts show <run-id>")
		}
		t, err := store.Load(fs.Arg(0))
		if err != nil {
			return err
		}
		switch {
		case *asJSON:
			return viewer.ExportJSON(os.Stdout, t)
		case *markdown:
			return viewer.ExportMarkdown(os.Stdout, t)
		case *summary:
			return viewer.ViewSummary(os.Stdout, t)
		default:
			return viewer.ViewFull(os.Stdout, t)
		}
	case "restore":
		if fs.NArg() != 1 {
			return errors.New("usage: storyflow transcripts restore <run-id>")
		}
		mgr := artifact.NewManager(artifact.Config{BaseDir: settings.TranscriptDir})
		if err := mgr.Restore(fs.Arg(0)); err != nil {
			return err
		}
		fmt.Printf("Restored %s\n", fs.Arg(0))
		return nil
	default:
		return fmt.Errorf("transcripts: unknown subcommand %q", args[0])
	}
}

func cleanCommand(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	policy := artifact.DefaultRetentionConfig()
	dryRun := fs.Bool("dry-run", false, "show what would be removed")
	fs.IntVar(&policy.RetentionDays, "retention-days", policy.RetentionDays, "delete runs that ended this many days ago")
	fs.IntVar(&policy.ArchiveAfterDays, "archive-after-days", policy.ArchiveAfterDays, "archive runs that ended this many days ago")
	fs.IntVar(&policy.KeepMinRuns, "keep", policy.KeepMinRuns, "always keep this many runs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(config.LoadOptions{Logger: logging.New(false)})
	if err != nil {
		return err
	}
	mgr := artifact.NewManager(artifact.Config{BaseDir: settings.TranscriptDir})

	res, err := mgr.Cleanup(policy, *dryRun)
	if err != nil {
		return err
	}

	verb := ""
	if *dryRun {
		verb = "would be "
	}
	fmt.Printf("%d runs %sarchived, %d %sdeleted, %d kept (%d bytes freed)\n",
		len(res.Archived), verb, len(res.Deleted), verb, len(res.Kept), res.SpaceSaved)
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
	return nil
}
