package text

import (
	"sync"
	"unicode/utf8"
)

// ChangeEvent is delivered to text listeners after an edit.
type ChangeEvent struct {
	Before Snapshot
	After  Snapshot
	Change Change
}

// CaretEvent is delivered to caret listeners after the caret moves.
type CaretEvent struct {
	Old      int
	New      int
	Snapshot Snapshot
	// ByEdit is true when the move was caused by an edit rather than navigation.
	ByEdit bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithMaxUndo bounds the number of undo entries kept.
func WithMaxUndo(n int) Option {
	return func(b *Buffer) {
		b.history.max = n
	}
}

// WithCaret places the caret at pos.
func WithCaret(pos int) Option {
	return func(b *Buffer) {
		b.caret = clamp(pos, 0, len(b.text))
	}
}

// Buffer is a mutable text buffer with a caret, undo history and listeners.
// All methods are safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	text    string
	version int
	changes []versionedChange
	caret   int
	history *history

	nextListener   int
	textListeners  map[int]func(ChangeEvent)
	caretListeners map[int]func(CaretEvent)
}

// NewBuffer creates a buffer holding s with the caret at the end.
func NewBuffer(s string, opts ...Option) *Buffer {
	b := &Buffer{
		text:           s,
		caret:          len(s),
		history:        newHistory(defaultMaxUndo),
		textListeners:  make(map[int]func(ChangeEvent)),
		caretListeners: make(map[int]func(CaretEvent)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot returns an immutable view of the current text.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Buffer) snapshotLocked() Snapshot {
	return Snapshot{text: b.text, version: b.version, changes: b.changes}
}

// Text returns the current text.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Caret returns the caret offset.
func (b *Buffer) Caret() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caret
}

// SetCaret moves the caret, clamping to the text.
func (b *Buffer) SetCaret(pos int) {
	b.mu.Lock()
	old := b.caret
	b.caret = clamp(pos, 0, len(b.text))
	ev := CaretEvent{Old: old, New: b.caret, Snapshot: b.snapshotLocked()}
	listeners := b.caretListenersLocked()
	b.mu.Unlock()

	if ev.Old != ev.New {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

// ApplyEdit replaces span with newText and leaves the caret after the
// inserted text. It returns the new caret offset.
func (b *Buffer) ApplyEdit(span Span, newText string) (int, error) {
	b.mu.Lock()
	if span.Start < 0 || span.End > len(b.text) {
		b.mu.Unlock()
		return 0, ErrOffsetOutOfRange
	}
	if span.End < span.Start {
		b.mu.Unlock()
		return 0, ErrRangeInvalid
	}

	change := Change{Offset: span.Start, OldText: b.text[span.Start:span.End], NewText: newText}
	before := b.snapshotLocked()
	oldCaret := b.caret
	b.applyLocked(change)
	b.history.record(change, oldCaret)
	b.caret = span.Start + len(newText)

	textEv := ChangeEvent{Before: before, After: b.snapshotLocked(), Change: change}
	caretEv := CaretEvent{Old: oldCaret, New: b.caret, Snapshot: textEv.After, ByEdit: true}
	textListeners := b.textListenersLocked()
	caretListeners := b.caretListenersLocked()
	caret := b.caret
	b.mu.Unlock()

	b.notify(textEv, caretEv, textListeners, caretListeners)
	return caret, nil
}

// applyLocked mutates the text and records the change in the version log.
func (b *Buffer) applyLocked(c Change) {
	b.text = b.text[:c.Offset] + c.NewText + b.text[c.Offset+len(c.OldText):]
	b.version++
	b.changes = append(b.changes, versionedChange{version: b.version, change: c})
}

// InsertAtCaret inserts s at the caret.
func (b *Buffer) InsertAtCaret(s string) (int, error) {
	pos := b.Caret()
	return b.ApplyEdit(Span{Start: pos, End: pos}, s)
}

// Backspace deletes the rune before the caret. It reports whether anything
// was deleted.
func (b *Buffer) Backspace() bool {
	snap := b.Snapshot()
	pos := b.Caret()
	_, size := snap.RuneBefore(pos)
	if size == 0 {
		return false
	}
	_, err := b.ApplyEdit(Span{Start: pos - size, End: pos}, "")
	return err == nil
}

// DeleteForward deletes the rune after the caret. It reports whether
// anything was deleted.
func (b *Buffer) DeleteForward() bool {
	snap := b.Snapshot()
	pos := b.Caret()
	_, size := snap.RuneAt(pos)
	if size == 0 {
		return false
	}
	_, err := b.ApplyEdit(Span{Start: pos, End: pos + size}, "")
	return err == nil
}

// MoveCaret moves the caret by delta runes.
func (b *Buffer) MoveCaret(delta int) {
	snap := b.Snapshot()
	pos := b.Caret()
	for ; delta < 0 && pos > 0; delta++ {
		_, size := snap.RuneBefore(pos)
		pos -= size
	}
	for ; delta > 0 && pos < snap.Len(); delta-- {
		_, size := utf8.DecodeRuneInString(snap.text[pos:])
		pos += size
	}
	b.SetCaret(pos)
}

// OnTextChanged registers fn for text changes and returns a function that
// removes it.
func (b *Buffer) OnTextChanged(fn func(ChangeEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextListener
	b.nextListener++
	b.textListeners[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.textListeners, id)
		b.mu.Unlock()
	}
}

// OnCaretMoved registers fn for caret moves and returns a function that
// removes it.
func (b *Buffer) OnCaretMoved(fn func(CaretEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextListener
	b.nextListener++
	b.caretListeners[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.caretListeners, id)
		b.mu.Unlock()
	}
}

func (b *Buffer) textListenersLocked() []func(ChangeEvent) {
	out := make([]func(ChangeEvent), 0, len(b.textListeners))
	for _, fn := range b.textListeners {
		out = append(out, fn)
	}
	return out
}

func (b *Buffer) caretListenersLocked() []func(CaretEvent) {
	out := make([]func(CaretEvent), 0, len(b.caretListeners))
	for _, fn := range b.caretListeners {
		out = append(out, fn)
	}
	return out
}

func (b *Buffer) notify(textEv ChangeEvent, caretEv CaretEvent, tl []func(ChangeEvent), cl []func(CaretEvent)) {
	for _, fn := range tl {
		fn(textEv)
	}
	if caretEv.Old == caretEv.New {
		return
	}
	for _, fn := range cl {
		fn(caretEv)
	}
}
