package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/storyflow/config"
	"github.com/randalmurphal/storyflow/logging"
)

// secretKeys are masked by config show.
var secretKeys = map[string]bool{
	"anthropic_api_key": true,
	"jwt_secret":        true,
}

func configCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("config: expected show, set or unset")
	}

	fs := flag.NewFlagSet("config "+args[0], flag.ContinueOnError)
	global := fs.Bool("global", false, "use ~/.config/storyflow/config.yaml instead of .storyflow.yaml")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	path := config.LocalPath(".")
	if *global {
		path = config.GlobalPath()
	}

	switch args[0] {
	case "show":
		return showConfig()
	case "set":
		if fs.NArg() != 2 {
			return errors.New("usage: storyflow config set [--global] <key> <value>")
		}
		if err := config.Set(path, fs.Arg(0), fs.Arg(1)); err != nil {
			return err
		}
		fmt.Printf("Set %s in %s\n", fs.Arg(0), path)
		return nil
	case "unset":
		if fs.NArg() != 1 {
			return errors.New("usage: storyflow config unset [--global] <key>")
		}
		if err := config.Unset(path, fs.Arg(0)); err != nil {
			return err
		}
		fmt.Printf("Unset %s in %s\n", fs.Arg(0), path)
		return nil
	default:
		return fmt.Errorf("config: unknown subcommand %q", args[0])
	}
}

func showConfig() error {
	settings, err := config.Load(config.LoadOptions{Logger: logging.New(false)})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	r := settings.Resolved
	for _, key := range r.Keys() {
		value := r.Get(key)
		if secretKeys[key] && value != "" {
			value = "********"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, value, r.Source(key))
	}
	return tw.Flush()
}
