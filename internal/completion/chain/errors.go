package chain

import "errors"

// Sentinel errors for the chain package.
var (
	// ErrStopped is returned once the chain has been stopped.
	ErrStopped = errors.New("chain: stopped")

	// ErrWaitTimeout is returned when waiting for the latest model gives up.
	ErrWaitTimeout = errors.New("chain: wait for model timed out")

	// ErrTransformPanic wraps a panic recovered from a transformation.
	ErrTransformPanic = errors.New("chain: transform panicked")
)
