// Package config loads popcomplete settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← POPCOMPLETE_COMPLETION_MRU_CAPACITY=20
//	├─────────────────────────────┤
//	│  2. Config File             │  ← popcomplete.toml or popcomplete.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// A config file looks like this:
//
//	[completion]
//	trigger_characters = "."
//	mru_capacity = 20
//	wait_timeout = "500ms"
//
//	[log]
//	level = "debug"
//
//	[providers]
//	words = true
//	dictionaries = ["go.dict.yaml"]
//
// Environment variables map onto the same keys: the first segment after the
// prefix names the section and the rest is the key, so
// POPCOMPLETE_COMPLETION_WAIT_TIMEOUT sets completion.wait_timeout.
//
// A Watcher reloads the file when it changes on disk.
package config
