// Package main is the entry point for popcomplete.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/popcomplete/internal/app"
	"github.com/dshills/popcomplete/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, replay := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if replay != "" {
		opts.LogOutput = os.Stderr
	}
	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if replay != "" {
		err = application.Replay(ctx, replay, os.Stdout)
	} else {
		err = application.Run(ctx)
	}
	if err != nil {
		if errors.Is(err, app.ErrQuit) || errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var dicts, scripts stringList
	var replay string
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.Var(&dicts, "dict", "Dictionary file to complete from (repeatable)")
	flag.Var(&scripts, "script", "Lua completion script (repeatable)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&replay, "replay", "", "Replay a key script such as \"fo<Tab>\" and print each step")
	flag.StringVar(&opts.Text, "text", "", "Initial buffer text when no file is given")
	flag.BoolVar(&opts.Watch, "watch", true, "Reload completion settings when the config file changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "popcomplete - completion popup playground\n\n")
		fmt.Fprintf(os.Stderr, "Usage: popcomplete [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  popcomplete notes.txt                       Edit a file with buffer-word completion\n")
		fmt.Fprintf(os.Stderr, "  popcomplete -dict go.txt main.go            Add a dictionary\n")
		fmt.Fprintf(os.Stderr, "  popcomplete -script snippets.lua            Complete from a Lua script\n")
		fmt.Fprintf(os.Stderr, "  popcomplete -dict go.txt -replay 'fm<Tab>'  Print the popup after each key\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("popcomplete %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	switch flag.NArg() {
	case 0:
	case 1:
		opts.File = flag.Arg(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: at most one file may be given\n")
		os.Exit(1)
	}

	opts.Dictionaries = dicts
	opts.Scripts = scripts
	return opts, replay
}
