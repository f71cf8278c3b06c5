package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/storyflow/agent"
	"github.com/randalmurphal/storyflow/artifact"
	"github.com/randalmurphal/storyflow/config"
	"github.com/randalmurphal/storyflow/feedback"
	sferrors "github.com/randalmurphal/storyflow/errors"
	"github.com/randalmurphal/storyflow/logging"
	"github.com/randalmurphal/storyflow/notify"
	"github.com/randalmurphal/storyflow/prompt"
	"github.com/randalmurphal/storyflow/story"
	"github.com/randalmurphal/storyflow/task"
	"github.com/randalmurphal/storyflow/transcript"
	"github.com/randalmurphal/storyflow/workflow"
)

// storyFlags are shared by run and resume.
type storyFlags struct {
	fs        *flag.FlagSet
	overrides map[string]*string
	verbose   *bool
	state     *string
	batch     *bool
}

func newStoryFlags(name string) *storyFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &storyFlags{
		fs: fs,
		overrides: map[string]*string{
			"backend":        fs.String("backend", "", "language model backend: claude-cli or anthropic"),
			"model":          fs.String("model", "", "model for every role (default: per-role tiers)"),
			"prompt_dir":     fs.String("prompt-dir", "", "directory with prompt overrides"),
			"transcript_dir": fs.String("transcript-dir", "", "where run transcripts are written"),
			"webhook_url":    fs.String("webhook-url", "", "POST run events to this URL"),
		},
		verbose: fs.BoolP("verbose", "v", false, "enable debug logging"),
		state:   fs.String("state", "", "JSON file to load the run from and save it to"),
		batch:   fs.Bool("no-interactive", false, "stop at the first draft instead of asking for feedback"),
	}
	return f
}

func (f *storyFlags) flagValues() map[string]string {
	values := make(map[string]string, len(f.overrides)+1)
	for key, v := range f.overrides {
		values[key] = *v
	}
	if *f.verbose {
		values["verbose"] = "true"
	}
	return values
}

// app holds what a story command needs.
type app struct {
	engine    *workflow.Engine
	settings  *config.Settings
	artifacts *artifact.Manager
	logger    *slog.Logger
}

func newApp(f *storyFlags) (*app, error) {
	settings, err := config.Load(config.LoadOptions{
		Flags:  f.flagValues(),
		Logger: logging.New(*f.verbose),
	})
	if err != nil {
		return nil, err
	}
	logger := logging.New(settings.Verbose)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	writer, err := buildWriter(settings, logger)
	if err != nil {
		return nil, err
	}

	store, err := transcript.NewFileStore(transcript.StoreConfig{BaseDir: settings.TranscriptDir})
	if err != nil {
		return nil, fmt.Errorf("open transcripts: %w", err)
	}

	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if settings.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(settings.WebhookURL, nil))
	}

	engine, err := workflow.NewEngine(writer,
		workflow.WithLogger(logger),
		workflow.WithNotifier(notify.NewMultiNotifier(notifiers...)),
		workflow.WithTranscripts(store),
	)
	if err != nil {
		return nil, err
	}
	return &app{
		engine:    engine,
		settings:  settings,
		artifacts: artifact.NewManager(artifact.Config{BaseDir: settings.TranscriptDir}),
		logger:    logger,
	}, nil
}

// buildWriter wires the configured backend behind the prompt templates.
func buildWriter(s *config.Settings, logger *slog.Logger) (agent.Writer, error) {
	var completer agent.Completer
	switch s.Backend {
	case config.BackendAnthropic:
		c, err := agent.NewAnthropicCompleter(agent.AnthropicConfig{
			APIKey:    s.AnthropicAPIKey,
			Model:     s.Model,
			MaxTokens: int64(s.MaxTokens),
		})
		if err != nil {
			return nil, err
		}
		completer = c
	default:
		var models map[task.Role]string
		if s.Model != "" {
			models = make(map[task.Role]string, len(task.Roles))
			for _, role := range task.Roles {
				models[role] = s.Model
			}
		}
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		completer = agent.NewClaudeCLICompleter(cwd, models)
	}

	prompts := prompt.NewLoader(".")
	if s.PromptDir != "" {
		prompts.AddSearchDir(s.PromptDir)
	}
	return agent.NewLLMWriter(completer, prompts).WithLogger(logger), nil
}

func runStory(ctx context.Context, args []string) error {
	f := newStoryFlags("run")
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	concept := strings.TrimSpace(strings.Join(f.fs.Args(), " "))
	if concept == "" {
		return errors.New("run: a concept is required")
	}

	a, err := newApp(f)
	if err != nil {
		return err
	}

	res, err := a.engine.Start(ctx, concept)
	if err != nil {
		return sferrors.WrapLLMError(err, a.settings.Backend)
	}
	return a.loop(ctx, res, *f.batch, *f.state, os.Stdin, os.Stdout)
}

func resumeStory(ctx context.Context, args []string) error {
	f := newStoryFlags("resume")
	categoryName := f.fs.String("category", "", "route the feedback to plot, characters, theme, screenplay or other instead of classifying it")
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	if *f.state == "" {
		return errors.New("resume: --state is required")
	}
	category := feedback.None
	if *categoryName != "" {
		c, ok := feedback.Parse(*categoryName)
		if !ok {
			return fmt.Errorf("resume: unknown category %q", *categoryName)
		}
		category = c
	}

	state, err := loadState(*f.state)
	if err != nil {
		return err
	}
	a, err := newApp(f)
	if err != nil {
		return err
	}

	res, err := a.engine.ResumeAs(ctx, state, strings.Join(f.fs.Args(), " "), category)
	if err != nil {
		return sferrors.WrapLLMError(err, a.settings.Backend)
	}
	return a.loop(ctx, res, *f.batch, *f.state, os.Stdin, os.Stdout)
}

// loop shows each draft and feeds reviewer input back until the run
// completes. In batch mode it stops at the first suspension.
func (a *app) loop(ctx context.Context, res workflow.Result, batch bool, statePath string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		printDraft(out, res.State)
		if statePath != "" {
			if err := saveState(statePath, res.State); err != nil {
				return err
			}
		}
		if a.artifacts != nil {
			if _, err := a.artifacts.SaveStory(res.State); err != nil {
				a.logger.Warn("failed to export artifacts", "run_id", res.State.RunID, "error", err)
			}
		}
		if !res.Suspended() {
			if a.artifacts != nil {
				fmt.Fprintf(out, "Screenplay written to %s\n", a.artifacts.Dir(res.State.RunID))
			}
			fmt.Fprintln(out, "Run complete.")
			return nil
		}
		if batch {
			fmt.Fprintf(out, "Draft ready. Continue with: storyflow resume --state %s <feedback>\n", statePath)
			return nil
		}

		fmt.Fprint(out, "\nFeedback (mention plot, characters, theme or screenplay to revise, or start with \"<category>:\" to choose; empty to finish): ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read feedback: %w", err)
		}

		category, text := splitCategory(strings.TrimSpace(line))
		res, err = a.engine.ResumeAs(ctx, res.State, text, category)
		if err != nil {
			return sferrors.WrapLLMError(err, a.settings.Backend)
		}
	}
}

// splitCategory reads an optional "category:" prefix off a feedback line.
// Without a known prefix the whole line is returned with feedback.None.
func splitCategory(line string) (feedback.Category, string) {
	prefix, rest, ok := strings.Cut(line, ":")
	if !ok {
		return feedback.None, line
	}
	c, ok := feedback.Parse(prefix)
	if !ok {
		return feedback.None, line
	}
	return c, strings.TrimSpace(rest)
}

func printDraft(w io.Writer, s story.State) {
	fmt.Fprintln(w, s.Summary())
	if s.Plot != nil {
		fmt.Fprintf(w, "\nPlot: %s\n", s.Plot.Premise)
	}
	for _, c := range s.Characters {
		fmt.Fprintf(w, "  - %s (%s)\n", c.Name, c.Role)
	}
	if s.Theme != nil {
		fmt.Fprintf(w, "Theme: %s\n", s.Theme.MainTheme)
	}
	if n := len(s.DirectorNotes); n > 0 {
		fmt.Fprintf(w, "\nDirector: %s\n", s.DirectorNotes[n-1])
	}
	if n := len(s.CriticFeedback); n > 0 {
		fmt.Fprintf(w, "\nCritic: %s\n", s.CriticFeedback[n-1])
	}
	if s.MarketAnalysis != nil {
		fmt.Fprintf(w, "\nMarket: %s\n", s.MarketAnalysis.GenrePositioning)
	}
}

func loadState(path string) (story.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return story.State{}, fmt.Errorf("read state: %w", err)
	}
	var s story.State
	if err := json.Unmarshal(data, &s); err != nil {
		return story.State{}, fmt.Errorf("parse state %s: %w", path, err)
	}
	return s, nil
}

func saveState(path string, s story.State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
