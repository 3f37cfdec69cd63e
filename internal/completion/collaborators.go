package completion

import (
	"context"

	"github.com/dshills/popcomplete/internal/text"
)

// CandidateList is what a provider returns for one request.
type CandidateList struct {
	Items []*Item
	// Builder is the free-text placeholder shown in suggestion mode.
	Builder *Item
	// DefaultSpan is used by items that carry no span of their own.
	DefaultSpan text.Span
	// UseSuggestionMode lets the builder compete with real items.
	UseSuggestionMode bool
	// DismissIfEmpty allows the popup to close when typing matches nothing.
	DismissIfEmpty bool
}

// TextChange is an edit relative to a specific snapshot.
type TextChange struct {
	Span    text.Span
	NewText string
	// CaretOffset positions the caret relative to Span.Start after the
	// edit. Negative leaves the caret after NewText.
	CaretOffset int
}

// Provider produces candidates and the edits that commit them.
// Implementations may be slow and must honor ctx cancellation.
type Provider interface {
	// GetCandidates returns the candidates at caret in snap. A nil list or
	// one without items means there is nothing to show.
	GetCandidates(ctx context.Context, snap text.Snapshot, caret int, trigger Trigger) (*CandidateList, error)

	// GetChange returns the edit that commits item. span is the item's
	// span in snap, which is the snapshot the candidates were computed on.
	GetChange(ctx context.Context, snap text.Snapshot, item *Item, span text.Span, commitChar rune) (TextChange, error)
}

// DefaultChange is the edit most providers return: the item's insert text
// replacing its span.
func DefaultChange(item *Item, span text.Span) TextChange {
	return TextChange{Span: span, NewText: item.InsertTextOrDisplay(), CaretOffset: -1}
}

// TextView is the editable view the controller is bound to.
// *text.Buffer satisfies it.
type TextView interface {
	Snapshot() text.Snapshot
	Caret() int
	ApplyEdit(span text.Span, newText string) (int, error)
	SetCaret(pos int)
	BeginTransaction(name string) *text.Transaction
	OnCaretMoved(fn func(text.CaretEvent)) func()
	OnTextChanged(fn func(text.ChangeEvent)) func()
}

// NavKey is a popup navigation key.
type NavKey uint8

const (
	NavUp NavKey = iota
	NavDown
	NavPageUp
	NavPageDown
	NavHome
	NavEnd
)

var navNames = [...]string{"Up", "Down", "PageUp", "PageDown", "Home", "End"}

// String returns the key name.
func (k NavKey) String() string {
	if int(k) >= len(navNames) {
		return "Unknown"
	}
	return navNames[k]
}

// View is everything a presenter needs to draw the popup.
type View struct {
	Span              text.Span
	Items             []*Item
	Selected          *Item
	Builder           *Item
	UseSuggestionMode bool
	SoftSelection     bool
	FilterState       FilterState
	FilterText        string
}

// Presenter renders the popup. Calls are fire-and-forget.
type Presenter interface {
	Present(v View)
	// Navigate moves the highlighted item. It reports whether the key was used.
	Navigate(key NavKey) bool
	Dismiss()
}

// PresenterEvents are raised by a presenter back into the controller.
type PresenterEvents interface {
	SelectItem(item *Item)
	CommitItem(item *Item)
	SetFilterState(fs FilterState)
}

// Formatter returns edits that format the text around a committed span.
type Formatter interface {
	FormatEdits(ctx context.Context, snap text.Snapshot, span text.Span, commitChar rune) ([]TextChange, error)
}
