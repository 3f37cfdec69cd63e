package event

import "errors"

// Sentinel errors for the event package.
var (
	// ErrInvalidTopic is returned for empty or malformed topics.
	ErrInvalidTopic = errors.New("event: invalid topic")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("event: nil handler")

	// ErrHandlerPanic wraps a panic recovered from a handler.
	ErrHandlerPanic = errors.New("event: handler panicked")
)
