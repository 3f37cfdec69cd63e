package completion

import (
	"fmt"

	"github.com/dshills/popcomplete/internal/text"
)

// ModelParams are the inputs for a freshly computed model.
type ModelParams struct {
	Items             []*Item
	Builder           *Item
	Snapshot          text.Snapshot
	DefaultSpan       text.Span
	Trigger           Trigger
	UseSuggestionMode bool
	DismissIfEmpty    bool
	FilterState       FilterState
}

// Model is an immutable snapshot of a completion session.
//
// Models are shared between the chain worker and the interactive
// goroutine and must never be modified after construction. The With*
// methods return the receiver unchanged when the requested value is
// already in place.
type Model struct {
	totalItems     []*Item
	filteredItems  []*Item
	selectedItem   *Item
	builder        *Item
	hardSelection  bool
	unique         bool
	suggestionMode bool
	dismissIfEmpty bool
	filterState    FilterState
	trigger        Trigger
	reason         FilterReason

	snapshot      text.Snapshot
	defaultSpan   text.TrackingSpan
	spans         map[*Item]text.TrackingSpan
	commitSpanEnd text.TrackingPoint
}

// NewModel builds the initial model for a candidate list. Every item is
// visible and the first one is soft selected.
func NewModel(p ModelParams) (*Model, error) {
	if len(p.Items) == 0 {
		return nil, ErrNoItems
	}

	m := &Model{
		totalItems:     p.Items,
		filteredItems:  p.Items,
		builder:        p.Builder,
		suggestionMode: p.UseSuggestionMode,
		dismissIfEmpty: p.DismissIfEmpty,
		filterState:    p.FilterState,
		trigger:        p.Trigger,
		reason:         FilterOther,
		snapshot:       p.Snapshot,
		defaultSpan:    text.NewTrackingSpan(p.Snapshot, p.DefaultSpan, text.EdgeInclusive),
		spans:          make(map[*Item]text.TrackingSpan, len(p.Items)),
		commitSpanEnd:  text.NewTrackingPoint(p.Snapshot, p.DefaultSpan.End, text.TrackPositive),
	}
	for _, item := range p.Items {
		if item == nil {
			return nil, fmt.Errorf("completion: nil item in candidate list")
		}
		if item.Span != nil {
			m.spans[item] = text.NewTrackingSpan(p.Snapshot, *item.Span, text.EdgeInclusive)
		}
	}

	m.selectedItem = p.Items[0]
	if p.UseSuggestionMode && p.Builder != nil {
		m.selectedItem = p.Builder
	}
	return m.checked(), nil
}

// TotalItems returns every candidate in provider order.
func (m *Model) TotalItems() []*Item { return m.totalItems }

// FilteredItems returns the visible subset of TotalItems.
func (m *Model) FilteredItems() []*Item { return m.filteredItems }

// SelectedItem returns the selected item, which may be the builder.
func (m *Model) SelectedItem() *Item { return m.selectedItem }

// Builder returns the suggestion-mode placeholder, if any.
func (m *Model) Builder() *Item { return m.builder }

// IsHardSelection reports whether the selection is an explicit choice.
func (m *Model) IsHardSelection() bool { return m.hardSelection }

// IsUnique reports whether exactly one item matched non-empty filter text.
func (m *Model) IsUnique() bool { return m.unique }

// UseSuggestionMode reports whether the builder competes for selection.
func (m *Model) UseSuggestionMode() bool { return m.suggestionMode }

// DismissIfEmpty reports whether the provider allows dismissal on an empty match.
func (m *Model) DismissIfEmpty() bool { return m.dismissIfEmpty }

// FilterState returns the categorical filter state.
func (m *Model) FilterState() FilterState { return m.filterState }

// Trigger returns how the session started.
func (m *Model) Trigger() Trigger { return m.trigger }

// FilterReason returns the reason for the most recent filter pass.
func (m *Model) FilterReason() FilterReason { return m.reason }

// TriggerSnapshot returns the snapshot the candidates were computed against.
func (m *Model) TriggerSnapshot() text.Snapshot { return m.snapshot }

// CommitSpanEnd returns the point that follows text typed past the invocation point.
func (m *Model) CommitSpanEnd() text.TrackingPoint { return m.commitSpanEnd }

// IsSelectedBuilder reports whether the builder is the current selection.
func (m *Model) IsSelectedBuilder() bool {
	return m.builder != nil && m.selectedItem == m.builder
}

// TrackingSpan returns the span item replaces, tracked edge-inclusive from
// the trigger snapshot. Items without their own span use the default span.
func (m *Model) TrackingSpan(item *Item) text.TrackingSpan {
	if ts, ok := m.spans[item]; ok {
		return ts
	}
	return m.defaultSpan
}

// ApplicableSpan returns the union of every item's span mapped onto snap.
func (m *Model) ApplicableSpan(snap text.Snapshot) text.Span {
	span := m.defaultSpan.Span(snap)
	for _, ts := range m.spans {
		span = span.Union(ts.Span(snap))
	}
	return span
}

// WithFilteredItems returns a model showing items. A selection that is not
// in items moves to the first of them, or to the builder when items is empty.
func (m *Model) WithFilteredItems(items []*Item) *Model {
	if sameItems(m.filteredItems, items) {
		return m
	}
	c := m.clone()
	c.filteredItems = items
	if c.selectedItem != c.builder && !containsItem(items, c.selectedItem) {
		c.selectedItem = c.builder
		if len(items) > 0 {
			c.selectedItem = items[0]
		}
	}
	return c.checked()
}

// WithSelectedItem returns a model with item selected.
func (m *Model) WithSelectedItem(item *Item) *Model {
	if m.selectedItem == item {
		return m
	}
	c := m.clone()
	c.selectedItem = item
	return c.checked()
}

// WithHardSelection returns a model with the given selection strength.
func (m *Model) WithHardSelection(hard bool) *Model {
	if m.hardSelection == hard {
		return m
	}
	c := m.clone()
	c.hardSelection = hard
	return c.checked()
}

// WithIsUnique returns a model with the given uniqueness flag.
func (m *Model) WithIsUnique(unique bool) *Model {
	if m.unique == unique {
		return m
	}
	c := m.clone()
	c.unique = unique
	return c.checked()
}

// WithFilterState returns a model with fs as the categorical filter state.
func (m *Model) WithFilterState(fs FilterState) *Model {
	if m.filterState.Equal(fs) {
		return m
	}
	c := m.clone()
	c.filterState = fs.Clone()
	return c.checked()
}

// WithFilterReason returns a model stamped with reason.
func (m *Model) WithFilterReason(reason FilterReason) *Model {
	if m.reason == reason {
		return m
	}
	c := m.clone()
	c.reason = reason
	return c.checked()
}

// WithUseSuggestionMode returns a model with suggestion mode toggled. Turning
// it off while the builder is selected moves the selection to the first
// filtered item.
func (m *Model) WithUseSuggestionMode(on bool) *Model {
	if m.suggestionMode == on {
		return m
	}
	c := m.clone()
	c.suggestionMode = on
	if !on && c.selectedItem != nil && c.selectedItem == c.builder {
		c.selectedItem = nil
		if len(c.filteredItems) > 0 {
			c.selectedItem = c.filteredItems[0]
		}
	}
	return c.checked()
}

// Validate checks the model invariants.
func (m *Model) Validate() error {
	if len(m.totalItems) == 0 {
		return ErrNoItems
	}
	if m.selectedItem == nil {
		if len(m.filteredItems) > 0 {
			return ErrNoSelection
		}
		return nil
	}
	if m.selectedItem == m.builder {
		return nil
	}
	if !containsItem(m.filteredItems, m.selectedItem) {
		return fmt.Errorf("%w: %q", ErrSelectionNotFiltered, m.selectedItem.DisplayText)
	}
	return nil
}

func (m *Model) clone() *Model {
	c := *m
	return &c
}

// checked panics on invariant violations in completiondebug builds.
func (m *Model) checked() *Model {
	if debugInvariants {
		if err := m.Validate(); err != nil {
			panic(err)
		}
	}
	return m
}

func sameItems(a, b []*Item) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsItem(items []*Item, item *Item) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
