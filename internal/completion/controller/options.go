package controller

import "time"

// Options tune controller behavior.
type Options struct {
	// DismissIfEmpty closes the popup when typing matches nothing and the
	// provider allows it.
	DismissIfEmpty bool
	// DismissIfLastCharacterDeleted closes the popup when a deletion
	// leaves no filter text.
	DismissIfLastCharacterDeleted bool
	// TriggerOnTypingLetters starts a session on identifier characters.
	TriggerOnTypingLetters bool
	// TriggerOnDeletion starts a session on backspace and delete.
	TriggerOnDeletion bool
	// TriggerCharacters start a session when typed, such as '.'.
	TriggerCharacters []rune
	// CommitCharacters commit a hard-selected item when typed, unless an
	// item overrides them.
	CommitCharacters []rune
	// BlockForCompletionItems lets commit-unique wait for candidates.
	BlockForCompletionItems bool
	// WaitTimeout bounds every synchronous wait for a model.
	WaitTimeout time.Duration
	// MRUCapacity bounds the recently committed list.
	MRUCapacity int
	// SnippetsOnTab starts a snippet session when Tab is pressed with no popup.
	SnippetsOnTab bool
	// FormatOnCommitCharacters request formatting when they commit an item.
	FormatOnCommitCharacters []rune
}

// Default option values.
const (
	DefaultWaitTimeout = time.Second
	DefaultMRUCapacity = 10
)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		DismissIfEmpty:                true,
		DismissIfLastCharacterDeleted: false,
		TriggerOnTypingLetters:        true,
		TriggerOnDeletion:             false,
		TriggerCharacters:             []rune{'.'},
		CommitCharacters:              []rune{' ', '(', ')', '[', ']', '{', '}', '.', ',', ':', ';', '+', '-', '*', '/', '%', '&', '|', '^', '!', '~', '=', '<', '>', '?', '@', '#', '\'', '"', '\\'},
		BlockForCompletionItems:       true,
		WaitTimeout:                   DefaultWaitTimeout,
		MRUCapacity:                   DefaultMRUCapacity,
		SnippetsOnTab:                 false,
		FormatOnCommitCharacters:      []rune{';', '}'},
	}
}

func (o Options) withDefaults() Options {
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
	if o.MRUCapacity <= 0 {
		o.MRUCapacity = DefaultMRUCapacity
	}
	return o
}

func hasRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
