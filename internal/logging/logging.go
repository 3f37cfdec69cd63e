// Package logging provides the charmbracelet/log loggers used across popcomplete.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	// Prefix is prepended to every message.
	Prefix string
	// Level is the minimum level written.
	Level log.Level
	// Output is where records go. Defaults to os.Stderr.
	Output io.Writer
	// ReportTimestamp adds a timestamp to each record.
	ReportTimestamp bool
	// ReportCaller adds the calling file and line.
	ReportCaller bool
	// JSON switches to the JSON formatter.
	JSON bool
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		Prefix:          "popcomplete",
		Level:           log.InfoLevel,
		Output:          os.Stderr,
		ReportTimestamp: true,
	}
}

// New creates a text logger with the given prefix at the global log level.
func New(prefix string) *log.Logger {
	opts := DefaultOptions()
	opts.Prefix = prefix
	opts.Level = log.GetLevel()
	return NewWithOptions(opts)
}

// NewWithOptions creates a logger from explicit options.
func NewWithOptions(opts Options) *log.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	formatter := log.TextFormatter
	if opts.JSON {
		formatter = log.JSONFormatter
	}
	return log.NewWithOptions(opts.Output, log.Options{
		Prefix:          opts.Prefix,
		Level:           opts.Level,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Formatter:       formatter,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel + 1})
}

// Component returns a child logger tagged with a component name.
// A nil parent yields a discarding logger so callers never need nil checks.
func Component(parent *log.Logger, name string) *log.Logger {
	if parent == nil {
		return Discard()
	}
	return parent.With("component", name)
}

// ParseLevel parses a level name, falling back to info for unknown input.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ValidLevel reports whether s names a supported level.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}
