package text

const defaultMaxUndo = 1000

// undoEntry is one undoable unit: a single edit or a committed transaction.
type undoEntry struct {
	name        string
	changes     []Change
	caretBefore int
}

// history tracks undo and redo stacks plus open transactions.
// It is guarded by the owning Buffer's mutex.
type history struct {
	undo []*undoEntry
	redo []*undoEntry
	open []*undoEntry
	max  int
}

func newHistory(max int) *history {
	return &history{max: max}
}

// record adds a change to the innermost open transaction, or as its own
// undo entry when none is open.
func (h *history) record(c Change, caretBefore int) {
	h.redo = nil
	if n := len(h.open); n > 0 {
		h.open[n-1].changes = append(h.open[n-1].changes, c)
		return
	}
	h.push(&undoEntry{changes: []Change{c}, caretBefore: caretBefore})
}

func (h *history) push(e *undoEntry) {
	if len(e.changes) == 0 {
		return
	}
	h.undo = append(h.undo, e)
	if h.max > 0 && len(h.undo) > h.max {
		h.undo = h.undo[len(h.undo)-h.max:]
	}
}

// remove takes e off the open stack, returning false if it is not open.
func (h *history) remove(e *undoEntry) bool {
	for i := len(h.open) - 1; i >= 0; i-- {
		if h.open[i] == e {
			h.open = append(h.open[:i], h.open[i+1:]...)
			return true
		}
	}
	return false
}

// Transaction groups edits into one undo unit.
type Transaction struct {
	b     *Buffer
	entry *undoEntry
}

// BeginTransaction opens a transaction. Edits made until Commit or Cancel
// are undone together. Transactions nest; an inner commit folds into the
// enclosing transaction.
func (b *Buffer) BeginTransaction(name string) *Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := &undoEntry{name: name, caretBefore: b.caret}
	b.history.open = append(b.history.open, e)
	return &Transaction{b: b, entry: e}
}

// Name returns the transaction name.
func (t *Transaction) Name() string {
	return t.entry.name
}

// Commit closes the transaction and keeps its edits.
func (t *Transaction) Commit() error {
	b := t.b
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.history
	if !h.remove(t.entry) {
		return ErrTransactionDone
	}
	if n := len(h.open); n > 0 {
		h.open[n-1].changes = append(h.open[n-1].changes, t.entry.changes...)
		return nil
	}
	h.push(t.entry)
	return nil
}

// Cancel closes the transaction and reverts the edits made inside it.
func (t *Transaction) Cancel() error {
	b := t.b
	b.mu.Lock()
	if !b.history.remove(t.entry) {
		b.mu.Unlock()
		return ErrTransactionDone
	}
	b.mu.Unlock()
	b.replay(reversed(t.entry.changes), t.entry.caretBefore)
	return nil
}

// Undo reverts the most recent undo entry.
func (b *Buffer) Undo() error {
	b.mu.Lock()
	h := b.history
	if len(h.undo) == 0 {
		b.mu.Unlock()
		return ErrNothingToUndo
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	b.mu.Unlock()

	b.replay(reversed(e.changes), e.caretBefore)
	return nil
}

// Redo reapplies the most recently undone entry.
func (b *Buffer) Redo() error {
	b.mu.Lock()
	h := b.history
	if len(h.redo) == 0 {
		b.mu.Unlock()
		return ErrNothingToRedo
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	b.mu.Unlock()

	caret := e.caretBefore
	if n := len(e.changes); n > 0 {
		last := e.changes[n-1]
		caret = last.Offset + len(last.NewText)
	}
	b.replay(e.changes, caret)
	return nil
}

// UndoCount returns the number of undo entries.
func (b *Buffer) UndoCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.history.undo)
}

// replay applies changes without recording them in history, then places
// the caret. Listeners see each change.
func (b *Buffer) replay(changes []Change, caret int) {
	for _, c := range changes {
		b.mu.Lock()
		before := b.snapshotLocked()
		oldCaret := b.caret
		b.applyLocked(c)
		b.caret = clamp(c.Offset+len(c.NewText), 0, len(b.text))
		textEv := ChangeEvent{Before: before, After: b.snapshotLocked(), Change: c}
		caretEv := CaretEvent{Old: oldCaret, New: b.caret, Snapshot: textEv.After, ByEdit: true}
		tl, cl := b.textListenersLocked(), b.caretListenersLocked()
		b.mu.Unlock()
		b.notify(textEv, caretEv, tl, cl)
	}
	b.SetCaret(caret)
}

// reversed returns the inverse changes in reverse order.
func reversed(changes []Change) []Change {
	out := make([]Change, len(changes))
	for i, c := range changes {
		out[len(changes)-1-i] = c.inverse()
	}
	return out
}
