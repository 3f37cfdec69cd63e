package text

import "errors"

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("text: offset out of range")
	ErrRangeInvalid     = errors.New("text: invalid range")
	ErrNothingToUndo    = errors.New("text: nothing to undo")
	ErrNothingToRedo    = errors.New("text: nothing to redo")
	ErrTransactionDone  = errors.New("text: transaction already finished")
)
