package session

import "errors"

var (
	// ErrNoView is returned when a session has no text view.
	ErrNoView = errors.New("session: no text view")
)
