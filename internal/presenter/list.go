// Package presenter holds the popup state shared by the presenters.
//
// A List mirrors the controller's latest completion.View and tracks the
// highlighted row and scroll window. The sub-packages draw it:
//
//   - term: a tcell popup overlaying an editor screen
//   - text: a lipgloss rendering for logs and replay output
package presenter

import (
	"slices"

	"github.com/dshills/popcomplete/internal/completion"
)

// DefaultMaxRows is the number of rows shown before scrolling.
const DefaultMaxRows = 8

// List is the presenter-side popup state. It is not safe for concurrent
// use; presenters guard it.
type List struct {
	maxRows  int
	view     completion.View
	rows     []*completion.Item
	selected int
	top      int
	visible  bool
}

// NewList creates a hidden list showing at most maxRows rows.
func NewList(maxRows int) *List {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &List{maxRows: maxRows, selected: -1}
}

// Set replaces the view. The builder is the first row in suggestion mode.
func (l *List) Set(v completion.View) {
	l.view = v
	l.rows = make([]*completion.Item, 0, len(v.Items)+1)
	if v.UseSuggestionMode && v.Builder != nil {
		l.rows = append(l.rows, v.Builder)
	}
	l.rows = append(l.rows, v.Items...)
	l.visible = true

	l.selected = -1
	if v.Selected != nil {
		l.selected = slices.Index(l.rows, v.Selected)
	}
	l.scrollTo(max(l.selected, 0))
}

// Clear hides the list.
func (l *List) Clear() {
	l.view = completion.View{}
	l.rows = nil
	l.selected = -1
	l.top = 0
	l.visible = false
}

// Visible reports whether the list is showing.
func (l *List) Visible() bool {
	return l.visible
}

// View returns the view last set.
func (l *List) View() completion.View {
	return l.view
}

// Rows returns every row, builder first when present.
func (l *List) Rows() []*completion.Item {
	return l.rows
}

// Window returns the half-open range of rows on screen.
func (l *List) Window() (start, end int) {
	return l.top, min(l.top+l.maxRows, len(l.rows))
}

// Selected returns the highlighted row index and item, or -1 and nil.
func (l *List) Selected() (int, *completion.Item) {
	if l.selected < 0 || l.selected >= len(l.rows) {
		return -1, nil
	}
	return l.selected, l.rows[l.selected]
}

// IsBuilder reports whether item is the view's builder.
func (l *List) IsBuilder(item *completion.Item) bool {
	return item != nil && item == l.view.Builder
}

// Move applies a navigation key and returns the newly highlighted item.
// It reports false when the list is hidden or empty.
func (l *List) Move(key completion.NavKey) (*completion.Item, bool) {
	if !l.visible || len(l.rows) == 0 {
		return nil, false
	}
	last := len(l.rows) - 1
	i := l.selected
	switch key {
	case completion.NavUp:
		if i <= 0 {
			i = last
		} else {
			i--
		}
	case completion.NavDown:
		if i >= last {
			i = 0
		} else {
			i++
		}
	case completion.NavPageUp:
		i = max(i-l.maxRows, 0)
	case completion.NavPageDown:
		i = min(max(i, 0)+l.maxRows, last)
	case completion.NavHome:
		i = 0
	case completion.NavEnd:
		i = last
	default:
		return nil, false
	}
	l.selected = i
	l.scrollTo(i)
	return l.rows[i], true
}

// Pick highlights row i, typically from a mouse click.
func (l *List) Pick(i int) (*completion.Item, bool) {
	if !l.visible || i < 0 || i >= len(l.rows) {
		return nil, false
	}
	l.selected = i
	l.scrollTo(i)
	return l.rows[i], true
}

// Scroll moves the window by delta rows without changing the selection.
func (l *List) Scroll(delta int) {
	l.top = max(0, min(l.top+delta, len(l.rows)-l.maxRows))
}

func (l *List) scrollTo(i int) {
	switch {
	case i < l.top:
		l.top = i
	case i >= l.top+l.maxRows:
		l.top = i - l.maxRows + 1
	}
	l.top = max(0, min(l.top, len(l.rows)-l.maxRows))
}

// Categories returns the filter categories of the visible items and the
// view's filter state, sorted.
func (l *List) Categories() []string {
	seen := make(map[string]bool)
	for _, it := range l.view.Items {
		for _, f := range it.Filters {
			seen[f] = true
		}
	}
	for f := range l.view.FilterState {
		seen[f] = true
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Toggle returns the view's filter state with category flipped. Every
// known category gets an entry; missing ones start off.
func (l *List) Toggle(category string) completion.FilterState {
	fs := l.view.FilterState.Clone()
	if fs == nil {
		fs = make(completion.FilterState)
	}
	for _, c := range l.Categories() {
		if _, ok := fs[c]; !ok {
			fs[c] = false
		}
	}
	fs[category] = !fs[category]
	return fs
}
