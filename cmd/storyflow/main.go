// Command storyflow drafts a movie concept with a chain of writing agents
// and revises it from reviewer feedback.
//
// Usage:
//
//	storyflow run [flags] <concept>
//	storyflow resume [flags] --state run.json [--category c] <feedback>
//	storyflow config show
//	storyflow config set [--global] <key> <value>
//	storyflow config unset [--global] <key>
//	storyflow transcripts list
//	storyflow transcripts show <run-id>
//	storyflow transcripts restore <run-id>
//	storyflow clean [--dry-run]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sferrors "github.com/randalmurphal/storyflow/errors"
)

const usage = `usage: storyflow <command> [flags]

commands:
  run <concept>             draft a concept and collect feedback interactively
  resume <feedback>         continue a saved run (--state, --category)
  config show               print resolved settings and their sources
  config set <key> <value>  write a setting to .storyflow.yaml (--global for user config)
  config unset <key>        remove a setting
  transcripts list          list recorded runs
  transcripts show <id>     print a run transcript
  transcripts restore <id>  unpack an archived run
  clean                     archive and delete old runs (--dry-run to preview)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		var cliErr *sferrors.CLIError
		if errors.As(err, &cliErr) {
			fmt.Fprintln(os.Stderr, cliErr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "run":
		return runStory(ctx, args[1:])
	case "resume":
		return resumeStory(ctx, args[1:])
	case "config":
		return configCommand(args[1:])
	case "transcripts":
		return transcriptsCommand(args[1:])
	case "clean":
		return cleanCommand(args[1:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}
