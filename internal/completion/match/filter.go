package match

import (
	"unicode/utf8"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

// Request carries everything one filter pass needs besides the model.
type Request struct {
	// Snapshot and Caret are the buffer state captured when the pass was requested.
	Snapshot text.Snapshot
	Caret    int
	Reason   completion.FilterReason

	// RecheckCaretPosition closes the popup when the caret is outside every item span.
	RecheckCaretPosition bool
	// DismissIfEmptyAllowed lets an insertion that matches nothing close the popup.
	DismissIfEmptyAllowed bool
	// DismissIfLastCharacterDeleted closes the popup when a deletion empties every filter text.
	DismissIfLastCharacterDeleted bool

	// Recent are recently committed display texts, most recent last.
	Recent []string

	// Superseded reports whether a newer pass has been requested. The pass
	// checks it before each item and returns its input unchanged once true.
	Superseded func() bool
}

func (r *Request) superseded() bool {
	return r.Superseded != nil && r.Superseded()
}

// Filter runs one filter pass over m and returns the model to show, or nil
// when the popup should be dismissed.
func Filter(m *completion.Model, req Request) *completion.Model {
	if m == nil {
		return nil
	}
	if req.superseded() {
		return m
	}

	snap := req.Snapshot
	if req.RecheckCaretPosition && !m.ApplicableSpan(snap).ContainsCaret(req.Caret) {
		return nil
	}

	mt := NewMatcher()
	trigger := m.Trigger()
	fs := m.FilterState()

	var (
		filtered []*completion.Item
		best     *completion.Item
		nonEmpty int
	)
	allEmpty, identifier, evaluated := true, false, 0

	for _, item := range m.TotalItems() {
		if req.superseded() {
			return m
		}
		if !fs.Allows(item) {
			continue
		}
		evaluated++

		span := m.TrackingSpan(item).Span(snap)
		filterText := snap.Slice(typedSpan(span, req.Caret))
		if filterText != "" {
			allEmpty = false
		}
		isIdent := IsIdentifierStart(filterText)
		if isIdent {
			identifier = true
		}

		if matches(mt, item, filterText, trigger, req.Reason, req.Recent) {
			filtered = append(filtered, item)
			if filterText != "" {
				nonEmpty++
			}
			if best == nil || isBetterMatch(mt, item, best, filterText, trigger, req.Reason, req.Recent) {
				best = item
			}
			continue
		}

		// Keep the list from shrinking before the user has typed enough
		// to tell items apart.
		if utf8.RuneCountInString(filterText) <= 1 && isIdent {
			filtered = append(filtered, item)
		}
	}

	if evaluated == 0 {
		// Every item was filtered out by category; judge the default span.
		identifier = IsIdentifierStart(snap.Slice(typedSpan(m.TrackingSpan(nil).Span(snap), req.Caret)))
	}
	if req.Reason == completion.FilterDeletion && req.DismissIfLastCharacterDeleted && allEmpty {
		return nil
	}
	if best == nil && !identifier {
		return nil
	}

	m = m.WithFilterReason(req.Reason)
	if len(filtered) == 0 {
		if req.DismissIfEmptyAllowed && m.DismissIfEmpty() && req.Reason == completion.FilterInsertion {
			return nil
		}
		if fs.Active() {
			return m.WithFilteredItems([]*completion.Item{}).
				WithHardSelection(false).
				WithIsUnique(false)
		}
		return m.WithHardSelection(false).WithIsUnique(false)
	}

	selected := best
	if selected == nil {
		selected = filtered[0]
	}
	hard := isHardSelection(mt, m, best, snap, req.Caret, req.Reason, req.Recent)

	return m.WithFilteredItems(filtered).
		WithSelectedItem(selected).
		WithHardSelection(hard).
		WithIsUnique(nonEmpty == 1)
}
