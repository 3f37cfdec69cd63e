package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/popcomplete/internal/completion/controller"
	"github.com/dshills/popcomplete/internal/logging"
)

// Config is the complete popcomplete configuration.
type Config struct {
	Completion CompletionConfig `toml:"completion" yaml:"completion"`
	Log        LogConfig        `toml:"log" yaml:"log"`
	Providers  ProvidersConfig  `toml:"providers" yaml:"providers"`
}

// CompletionConfig holds the controller behavior settings.
type CompletionConfig struct {
	DismissIfEmpty                bool     `toml:"dismiss_if_empty" yaml:"dismiss_if_empty"`
	DismissIfLastCharacterDeleted bool     `toml:"dismiss_if_last_character_deleted" yaml:"dismiss_if_last_character_deleted"`
	TriggerOnTypingLetters        bool     `toml:"trigger_on_typing_letters" yaml:"trigger_on_typing_letters"`
	TriggerOnDeletion             bool     `toml:"trigger_on_deletion" yaml:"trigger_on_deletion"`
	TriggerCharacters             string   `toml:"trigger_characters" yaml:"trigger_characters"`
	CommitCharacters              string   `toml:"commit_characters" yaml:"commit_characters"`
	BlockForCompletionItems       bool     `toml:"block_for_completion_items" yaml:"block_for_completion_items"`
	WaitTimeout                   Duration `toml:"wait_timeout" yaml:"wait_timeout"`
	MRUCapacity                   int      `toml:"mru_capacity" yaml:"mru_capacity"`
	SnippetsOnTab                 bool     `toml:"snippets_on_tab" yaml:"snippets_on_tab"`
	FormatOnCommitCharacters      string   `toml:"format_on_commit_characters" yaml:"format_on_commit_characters"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level     string `toml:"level" yaml:"level"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"`
	JSON      bool   `toml:"json" yaml:"json"`
	// File receives log output instead of stderr when set.
	File string `toml:"file" yaml:"file"`
}

// ProvidersConfig selects the completion sources.
type ProvidersConfig struct {
	// Words offers the words already in the buffer.
	Words bool `toml:"words" yaml:"words"`
	// MinWordLength skips shorter buffer words.
	MinWordLength int `toml:"min_word_length" yaml:"min_word_length"`
	// Dictionaries are word list files (.msgpack, .yaml, .txt).
	Dictionaries []string `toml:"dictionaries" yaml:"dictionaries"`
	// Scripts are Lua files defining complete(prefix, trigger).
	Scripts []string `toml:"scripts" yaml:"scripts"`
	// Timeout bounds each provider call.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := controller.DefaultOptions()
	return &Config{
		Completion: CompletionConfig{
			DismissIfEmpty:                opts.DismissIfEmpty,
			DismissIfLastCharacterDeleted: opts.DismissIfLastCharacterDeleted,
			TriggerOnTypingLetters:        opts.TriggerOnTypingLetters,
			TriggerOnDeletion:             opts.TriggerOnDeletion,
			TriggerCharacters:             string(opts.TriggerCharacters),
			CommitCharacters:              string(opts.CommitCharacters),
			BlockForCompletionItems:       opts.BlockForCompletionItems,
			WaitTimeout:                   Duration(opts.WaitTimeout),
			MRUCapacity:                   opts.MRUCapacity,
			SnippetsOnTab:                 opts.SnippetsOnTab,
			FormatOnCommitCharacters:      string(opts.FormatOnCommitCharacters),
		},
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
		Providers: ProvidersConfig{
			Words:         true,
			MinWordLength: 3,
			Timeout:       Duration(500 * time.Millisecond),
		},
	}
}

// Validate checks every setting and joins all failures.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if c.Completion.WaitTimeout <= 0 {
		fail("completion.wait_timeout", "must be positive, got %s", c.Completion.WaitTimeout.Std())
	}
	if c.Completion.MRUCapacity <= 0 {
		fail("completion.mru_capacity", "must be positive, got %d", c.Completion.MRUCapacity)
	}
	if !logging.ValidLevel(c.Log.Level) {
		fail("log.level", "unknown level %q", c.Log.Level)
	}
	if c.Providers.MinWordLength < 1 {
		fail("providers.min_word_length", "must be at least 1, got %d", c.Providers.MinWordLength)
	}
	if c.Providers.Timeout <= 0 {
		fail("providers.timeout", "must be positive, got %s", c.Providers.Timeout.Std())
	}
	return errors.Join(errs...)
}

// Options converts the completion settings to controller options.
func (c CompletionConfig) Options() controller.Options {
	return controller.Options{
		DismissIfEmpty:                c.DismissIfEmpty,
		DismissIfLastCharacterDeleted: c.DismissIfLastCharacterDeleted,
		TriggerOnTypingLetters:        c.TriggerOnTypingLetters,
		TriggerOnDeletion:             c.TriggerOnDeletion,
		TriggerCharacters:             []rune(c.TriggerCharacters),
		CommitCharacters:              []rune(c.CommitCharacters),
		BlockForCompletionItems:       c.BlockForCompletionItems,
		WaitTimeout:                   c.WaitTimeout.Std(),
		MRUCapacity:                   c.MRUCapacity,
		SnippetsOnTab:                 c.SnippetsOnTab,
		FormatOnCommitCharacters:      []rune(c.FormatOnCommitCharacters),
	}
}

// LoggerOptions converts the log settings to logging options.
func (c LogConfig) LoggerOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = logging.ParseLevel(c.Level)
	opts.ReportTimestamp = c.Timestamp
	opts.JSON = c.JSON
	return opts
}
