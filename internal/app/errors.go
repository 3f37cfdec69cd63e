package app

import "errors"

// Sentinel errors returned by the application.
var (
	// ErrQuit is returned when the user asks to exit.
	ErrQuit = errors.New("quit requested")
	// ErrNoProviders means configuration enabled no completion source.
	ErrNoProviders = errors.New("no completion providers configured")
	// ErrEmptyScript means a replay was started with no keys.
	ErrEmptyScript = errors.New("replay script is empty")
)
