package completion

import (
	"errors"
	"testing"

	"github.com/dshills/popcomplete/internal/text"
)

func newTestModel(t *testing.T, names ...string) *Model {
	t.Helper()
	items := make([]*Item, len(names))
	for i, n := range names {
		items[i] = &Item{DisplayText: n}
	}
	m, err := NewModel(ModelParams{
		Items:       items,
		Snapshot:    text.NewSnapshot("x.Con"),
		DefaultSpan: text.NewSpan(2, 5),
		Trigger:     InvokeTrigger(),
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestNewModelRequiresItems(t *testing.T) {
	_, err := NewModel(ModelParams{})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, "Console", "Contains")
	if len(m.FilteredItems()) != 2 {
		t.Fatalf("filtered = %d, want 2", len(m.FilteredItems()))
	}
	if m.SelectedItem() != m.TotalItems()[0] {
		t.Errorf("selected = %v, want first item", m.SelectedItem())
	}
	if m.IsHardSelection() || m.IsUnique() {
		t.Error("new model should be soft and not unique")
	}
	if m.FilterReason() != FilterOther {
		t.Errorf("reason = %v", m.FilterReason())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewModelSuggestionModeSelectsBuilder(t *testing.T) {
	builder := &Item{DisplayText: "<new>"}
	m, err := NewModel(ModelParams{
		Items:             []*Item{{DisplayText: "a"}},
		Builder:           builder,
		UseSuggestionMode: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsSelectedBuilder() {
		t.Fatal("builder should be selected")
	}
	off := m.WithUseSuggestionMode(false)
	if off.SelectedItem() != m.TotalItems()[0] {
		t.Errorf("selection after leaving suggestion mode = %v", off.SelectedItem())
	}
}

func TestModelWithNoOp(t *testing.T) {
	m := newTestModel(t, "a", "b")
	tests := []struct {
		name string
		fn   func(*Model) *Model
	}{
		{"filtered", func(m *Model) *Model { return m.WithFilteredItems(m.FilteredItems()) }},
		{"selected", func(m *Model) *Model { return m.WithSelectedItem(m.SelectedItem()) }},
		{"hard", func(m *Model) *Model { return m.WithHardSelection(false) }},
		{"unique", func(m *Model) *Model { return m.WithIsUnique(false) }},
		{"reason", func(m *Model) *Model { return m.WithFilterReason(FilterOther) }},
		{"suggestion", func(m *Model) *Model { return m.WithUseSuggestionMode(false) }},
		{"filter state", func(m *Model) *Model { return m.WithFilterState(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(m); got != m {
				t.Error("expected the same model back")
			}
		})
	}
}

func TestModelWithCopies(t *testing.T) {
	m := newTestModel(t, "a", "b")
	h := m.WithHardSelection(true)
	if h == m {
		t.Fatal("expected a new model")
	}
	if m.IsHardSelection() {
		t.Error("original model was mutated")
	}
	if !h.IsHardSelection() {
		t.Error("copy lost the change")
	}
}

func TestWithFilteredItemsMovesSelection(t *testing.T) {
	m := newTestModel(t, "a", "b", "c")
	all := m.TotalItems()
	m = m.WithSelectedItem(all[0])

	narrowed := m.WithFilteredItems([]*Item{all[1], all[2]})
	if narrowed.SelectedItem() != all[1] {
		t.Errorf("selected = %q, want b", narrowed.SelectedItem().DisplayText)
	}
	kept := m.WithSelectedItem(all[2]).WithFilteredItems([]*Item{all[1], all[2]})
	if kept.SelectedItem() != all[2] {
		t.Errorf("selected = %q, want c", kept.SelectedItem().DisplayText)
	}
	empty := m.WithFilteredItems([]*Item{})
	if empty.SelectedItem() != nil {
		t.Errorf("selected = %v, want nil", empty.SelectedItem())
	}
	if err := empty.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestModelValidate(t *testing.T) {
	m := newTestModel(t, "a", "b")
	stray := &Item{DisplayText: "stray"}
	bad := m.clone()
	bad.selectedItem = stray
	if err := bad.Validate(); !errors.Is(err, ErrSelectionNotFiltered) {
		t.Errorf("err = %v, want ErrSelectionNotFiltered", err)
	}
	bad = m.clone()
	bad.selectedItem = nil
	if err := bad.Validate(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("err = %v, want ErrNoSelection", err)
	}
}

func TestModelTrackingSpan(t *testing.T) {
	own := text.NewSpan(0, 1)
	items := []*Item{{DisplayText: "Console"}, {DisplayText: "x", Span: &own}}
	snap := text.NewSnapshot("x.Con")
	m, err := NewModel(ModelParams{Items: items, Snapshot: snap, DefaultSpan: text.NewSpan(2, 5)})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.TrackingSpan(items[0]).Span(snap); got != text.NewSpan(2, 5) {
		t.Errorf("default span = %v", got)
	}
	if got := m.TrackingSpan(items[1]).Span(snap); got != own {
		t.Errorf("own span = %v", got)
	}
	if got := m.ApplicableSpan(snap); got != text.NewSpan(0, 5) {
		t.Errorf("applicable span = %v", got)
	}
}

func TestModelTrackingSpanFollowsTyping(t *testing.T) {
	buf := text.NewBuffer("x.Con")
	m, err := NewModel(ModelParams{
		Items:       []*Item{{DisplayText: "Console"}},
		Snapshot:    buf.Snapshot(),
		DefaultSpan: text.NewSpan(2, 5),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := buf.InsertAtCaret("s"); err != nil {
		t.Fatal(err)
	}
	snap := buf.Snapshot()
	span := m.TrackingSpan(m.TotalItems()[0]).Span(snap)
	if got := snap.Slice(span); got != "Cons" {
		t.Errorf("tracked text = %q, want Cons", got)
	}
	if got := m.CommitSpanEnd().Position(snap); got != 6 {
		t.Errorf("commit span end = %d, want 6", got)
	}
}

func TestItemDefaults(t *testing.T) {
	it := &Item{DisplayText: "Console"}
	if it.FilterTextOrDisplay() != "Console" || it.SortTextOrDisplay() != "Console" || it.InsertTextOrDisplay() != "Console" {
		t.Error("fallbacks should use DisplayText")
	}
	it.InsertText = "Console()"
	if it.InsertTextOrDisplay() != "Console()" {
		t.Error("InsertText ignored")
	}
	if it.IsPreselected() {
		t.Error("default priority should not preselect")
	}
	if !it.IsCommitCharacter('.', []rune{'.', '('}) {
		t.Error("default commit characters ignored")
	}
	it.Rules.CommitCharacters = []rune{';'}
	if it.IsCommitCharacter('.', []rune{'.'}) || !it.IsCommitCharacter(';', nil) {
		t.Error("item commit characters should override defaults")
	}
}
