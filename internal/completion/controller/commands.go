package controller

import (
	"context"
	"unicode"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/completion/session"
)

func isIdentifierRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isTriggerCharacter reports whether typing r starts a session.
func (c *Controller) isTriggerCharacter(r rune) bool {
	if hasRune(c.opts.TriggerCharacters, r) {
		return true
	}
	return c.opts.TriggerOnTypingLetters && (r == '_' || unicode.IsLetter(r))
}

// isPotentialFilterCharacter reports whether r keeps filtering rather than
// committing or dismissing. m may be nil when no model is available yet.
func (c *Controller) isPotentialFilterCharacter(r rune, m *completion.Model) bool {
	if m != nil {
		if sel := m.SelectedItem(); sel != nil {
			if sel.IsFilterCharacter(r) {
				return true
			}
			if sel.IsCommitCharacter(r, c.opts.CommitCharacters) {
				return false
			}
		}
	}
	return isIdentifierRune(r)
}

// startAndFilter starts a session and queues the first filter pass.
func (c *Controller) startAndFilter(trigger completion.Trigger, reason completion.FilterReason, opts session.FilterOptions) {
	if c.start(trigger) == nil {
		return
	}
	c.filter(reason, opts)
}

func (c *Controller) insertionOptions() session.FilterOptions {
	return session.FilterOptions{DismissIfEmptyAllowed: c.opts.DismissIfEmpty}
}

// TypeChar handles a typed character. next inserts it into the buffer.
func (c *Controller) TypeChar(r rune, next func()) {
	c.withoutListeners(next)

	if c.session == nil {
		if c.isTriggerCharacter(r) {
			c.startAndFilter(completion.InsertionTrigger(r), completion.FilterInsertion, c.insertionOptions())
		}
		return
	}

	current, _ := c.session.CurrentModel()
	if c.isPotentialFilterCharacter(r, current) {
		opts := c.insertionOptions()
		opts.RecheckCaretPosition = true
		c.filter(completion.FilterInsertion, opts)
		return
	}

	// Commit or dismiss depends on the latest model.
	m := c.waitForModel()
	if m != nil {
		sel := m.SelectedItem()
		if m.IsHardSelection() && sel != nil && !m.IsSelectedBuilder() && sel.IsCommitCharacter(r, c.opts.CommitCharacters) {
			c.commit(m, sel, r)
		} else {
			c.dismiss("typed " + string(r))
		}
	}

	if c.session == nil && c.isTriggerCharacter(r) {
		c.startAndFilter(completion.InsertionTrigger(r), completion.FilterInsertion, c.insertionOptions())
	}
}

// Backspace handles the backspace key. next deletes the character.
func (c *Controller) Backspace(next func()) {
	snap := c.view.Snapshot()
	r, _ := snap.RuneBefore(c.view.Caret())
	c.deletion(r, next)
}

// Delete handles the forward delete key. next deletes the character.
func (c *Controller) Delete(next func()) {
	snap := c.view.Snapshot()
	r, _ := snap.RuneAt(c.view.Caret())
	c.deletion(r, next)
}

func (c *Controller) deletion(deleted rune, next func()) {
	c.withoutListeners(next)

	if c.session == nil {
		if c.opts.TriggerOnDeletion && isIdentifierRune(deleted) {
			c.startAndFilter(completion.DeletionTrigger(deleted), completion.FilterDeletion, session.FilterOptions{})
		}
		return
	}
	c.filter(completion.FilterDeletion, session.FilterOptions{
		RecheckCaretPosition:          true,
		DismissIfLastCharacterDeleted: c.opts.DismissIfLastCharacterDeleted,
	})
}

// Tab commits the selected item unless it is the builder. The session
// always ends. With no session, Tab may start snippet completion.
func (c *Controller) Tab(next func()) {
	if c.session == nil {
		if c.opts.SnippetsOnTab {
			c.startAndFilter(completion.Trigger{Kind: completion.TriggerSnippets}, completion.FilterOther, session.FilterOptions{})
			return
		}
		run(next)
		return
	}

	m := c.waitForModel()
	if m == nil {
		run(next)
		return
	}
	sel := m.SelectedItem()
	if sel == nil || m.IsSelectedBuilder() {
		c.dismiss("tab on builder")
		run(next)
		return
	}
	c.commit(m, sel, 0)
}

// Enter commits a hard selection. A soft selection sends Enter through.
// After a commit, the item's enter rule decides whether Enter is also
// inserted.
func (c *Controller) Enter(next func()) {
	if c.session == nil {
		run(next)
		return
	}

	m := c.waitForModel()
	if m == nil {
		run(next)
		return
	}
	sel := m.SelectedItem()
	if !m.IsHardSelection() || sel == nil || m.IsSelectedBuilder() {
		c.dismiss("enter on soft selection")
		run(next)
		return
	}

	sendThrough := c.sendEnterThrough(m, sel)
	c.commit(m, sel, '\n')
	if sendThrough {
		run(next)
	}
}

// sendEnterThrough applies the item's enter rule before the commit edits
// the buffer.
func (c *Controller) sendEnterThrough(m *completion.Model, item *completion.Item) bool {
	switch item.Rules.Enter {
	case completion.EnterAlways:
		return true
	case completion.EnterAfterFullyTypedWord:
		snap := c.view.Snapshot()
		span := m.TrackingSpan(item).Span(snap)
		return snap.Slice(span) == item.DisplayText
	default:
		return false
	}
}

// Escape dismisses the popup, or lets the editor handle the key.
func (c *Controller) Escape(next func()) {
	if c.session == nil {
		run(next)
		return
	}
	c.dismiss("escape")
}

// Navigate moves the popup selection when a model is showing. Otherwise
// the session ends and the editor handles the key.
func (c *Controller) Navigate(key completion.NavKey, next func()) {
	if c.session != nil {
		if m, _ := c.session.CurrentModel(); m != nil && c.presenter.Navigate(key) {
			return
		}
		c.dismiss("navigation")
	}
	run(next)
}

// Cut dismisses the session and runs the editor's cut.
func (c *Controller) Cut(next func()) { c.dismissThen("cut", next) }

// Paste dismisses the session and runs the editor's paste.
func (c *Controller) Paste(next func()) { c.dismissThen("paste", next) }

// Save dismisses the session and runs the editor's save.
func (c *Controller) Save(next func()) { c.dismissThen("save", next) }

// SelectAll dismisses the session and runs the editor's select-all.
func (c *Controller) SelectAll(next func()) { c.dismissThen("select all", next) }

// InsertSnippet dismisses the session and opens the editor's snippet picker.
func (c *Controller) InsertSnippet(next func()) { c.dismissThen("snippet picker", next) }

func (c *Controller) dismissThen(reason string, next func()) {
	c.dismiss(reason)
	run(next)
}

// Invoke explicitly requests completion at the caret.
func (c *Controller) Invoke() {
	if c.session == nil {
		c.startAndFilter(completion.InvokeTrigger(), completion.FilterOther, session.FilterOptions{})
		return
	}
	c.filter(completion.FilterOther, session.FilterOptions{RecheckCaretPosition: true})
}

// CommitUniqueItem commits the best match if it is the only one. When
// candidates are not ready and blocking is disabled, the commit happens
// later unless the session has moved on by then.
func (c *Controller) CommitUniqueItem() {
	s := c.session
	if s == nil {
		s = c.start(completion.Trigger{Kind: completion.TriggerInvokeAndCommitIfUnique})
		if s == nil {
			return
		}
	}
	s.IdentifyBestMatchAndFilterToAllItems(completion.FilterOther, session.FilterOptions{})

	if s.CurrentUnfilteredModel() == nil && !c.opts.BlockForCompletionItems {
		id := s.FilterRequestID()
		s.Enqueue(func(_ context.Context, m *completion.Model) (*completion.Model, error) {
			c.post(func() {
				if c.session != s || s.FilterRequestID() != id {
					return
				}
				c.commitIfUnique(m)
			})
			return m, nil
		}, false)
		return
	}

	c.commitIfUnique(c.waitForModel())
}

func (c *Controller) commitIfUnique(m *completion.Model) {
	if m == nil {
		c.dismiss("no model")
		return
	}
	sel := m.SelectedItem()
	if !m.IsUnique() || sel == nil || m.IsSelectedBuilder() {
		c.present(m)
		return
	}
	c.commit(m, sel, 0)
}

// SelectItem is raised by the presenter when the user highlights item.
func (c *Controller) SelectItem(item *completion.Item) {
	if c.session == nil || item == nil {
		return
	}
	c.session.SetSelectedItem(func(*completion.Model) *completion.Item { return item })
}

// CommitItem is raised by the presenter when the user picks item.
func (c *Controller) CommitItem(item *completion.Item) {
	if c.session == nil || item == nil {
		return
	}
	m := c.waitForModel()
	if m == nil {
		return
	}
	c.commit(m, item, 0)
}

// SetFilterState is raised by the presenter when filter categories change.
func (c *Controller) SetFilterState(fs completion.FilterState) {
	c.filterState = fs.Clone()
	c.filter(completion.FilterOther, session.FilterOptions{
		FilterState:    fs,
		SetFilterState: true,
	})
}

func run(next func()) {
	if next != nil {
		next()
	}
}
