package lua

import "errors"

// Errors for the Lua provider.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrNoComplete is returned when a script defines no complete function.
	ErrNoComplete = errors.New("lua: script does not define complete")

	// ErrBadResult is returned when complete returns something other than
	// a list of strings and item tables.
	ErrBadResult = errors.New("lua: invalid complete result")
)
