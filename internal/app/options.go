package app

import "io"

// Options configures an Application. Command-line flags fill it in.
type Options struct {
	// ConfigPath is the TOML or YAML config file. Empty uses defaults.
	ConfigPath string
	// LogLevel overrides the configured level when set.
	LogLevel string
	// LogOutput receives logs when the config names no log file.
	// Nil discards them.
	LogOutput io.Writer
	// Dictionaries are added to the configured dictionary files.
	Dictionaries []string
	// Scripts are added to the configured Lua provider scripts.
	Scripts []string
	// File is loaded into the buffer and written back on save.
	File string
	// Text seeds the buffer when File is empty.
	Text string
	// Watch reloads completion options when the config file changes.
	Watch bool
}
