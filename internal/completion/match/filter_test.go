package match

import (
	"fmt"
	"testing"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

// session is a buffer plus the model computed when completion started.
type session struct {
	buf   *text.Buffer
	model *completion.Model
}

// startAt creates a buffer holding prefix and a model whose default span is
// empty at the end of prefix.
func startAt(t *testing.T, prefix string, trigger completion.Trigger, items ...*completion.Item) *session {
	t.Helper()
	buf := text.NewBuffer(prefix)
	m, err := completion.NewModel(completion.ModelParams{
		Items:       items,
		Snapshot:    buf.Snapshot(),
		DefaultSpan: text.NewSpan(len(prefix), len(prefix)),
		Trigger:     trigger,
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return &session{buf: buf, model: m}
}

func (s *session) typeText(t *testing.T, str string) {
	t.Helper()
	if _, err := s.buf.InsertAtCaret(str); err != nil {
		t.Fatalf("insert %q: %v", str, err)
	}
}

func (s *session) filter(reason completion.FilterReason, recent ...string) *completion.Model {
	return Filter(s.model, Request{
		Snapshot: s.buf.Snapshot(),
		Caret:    s.buf.Caret(),
		Reason:   reason,
		Recent:   recent,
	})
}

func items(names ...string) []*completion.Item {
	out := make([]*completion.Item, len(names))
	for i, n := range names {
		out[i] = &completion.Item{DisplayText: n}
	}
	return out
}

func displayTexts(items []*completion.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DisplayText
	}
	return out
}

func TestFilterScenarioA(t *testing.T) {
	s := startAt(t, "x.", completion.InsertionTrigger('C'), items("Console", "Contains")...)
	s.typeText(t, "Con")

	got := s.filter(completion.FilterInsertion)
	if got == nil {
		t.Fatal("expected a model")
	}
	if n := len(got.FilteredItems()); n != 2 {
		t.Fatalf("filtered = %v, want both", displayTexts(got.FilteredItems()))
	}
	if got.IsUnique() {
		t.Error("two matches must not be unique")
	}
	if got.SelectedItem().DisplayText != "Console" {
		t.Errorf("selected = %q, want Console on equal priority", got.SelectedItem().DisplayText)
	}
	if !got.IsHardSelection() {
		t.Error("typed prefix should hard select")
	}

	preferred := items("Console", "Contains")
	preferred[1].Rules.MatchPriority = 5
	s = startAt(t, "x.", completion.InsertionTrigger('C'), preferred...)
	s.typeText(t, "Con")
	got = s.filter(completion.FilterInsertion)
	if got.SelectedItem() != preferred[1] {
		t.Errorf("selected = %q, want Contains by priority", got.SelectedItem().DisplayText)
	}
}

func TestFilterScenarioB(t *testing.T) {
	s := startAt(t, "x.", completion.InsertionTrigger('C'), items("Console", "Contains")...)
	s.typeText(t, "Cont")

	got := s.filter(completion.FilterInsertion)
	if got == nil {
		t.Fatal("expected a model")
	}
	if names := displayTexts(got.FilteredItems()); len(names) != 1 || names[0] != "Contains" {
		t.Fatalf("filtered = %v, want [Contains]", names)
	}
	if !got.IsUnique() {
		t.Error("single match should be unique")
	}
	if !got.IsHardSelection() {
		t.Error("single typed match should be hard selected")
	}
}

func TestFilterScenarioC(t *testing.T) {
	for _, trigger := range []completion.Trigger{completion.InsertionTrigger('C'), completion.DeletionTrigger('t')} {
		t.Run(trigger.Kind.String(), func(t *testing.T) {
			s := startAt(t, "x.", trigger, items("Console", "Contains")...)
			s.typeText(t, "Cont")
			s.model = s.filter(completion.FilterInsertion)
			if !s.model.IsUnique() {
				t.Fatal("precondition: Cont should be unique")
			}

			if !s.buf.Backspace() {
				t.Fatal("backspace failed")
			}
			got := s.filter(completion.FilterDeletion)
			if got == nil {
				t.Fatal("expected a model")
			}
			if n := len(got.FilteredItems()); n != 2 {
				t.Fatalf("filtered = %v, want both", displayTexts(got.FilteredItems()))
			}
			if got.IsUnique() {
				t.Error("Con should not be unique")
			}
		})
	}
}

func TestFilterScenarioD(t *testing.T) {
	s := startAt(t, "x.", completion.InsertionTrigger('C'), items("Console", "Contains")...)
	s.typeText(t, "Con")
	s.buf.SetCaret(1)

	got := Filter(s.model, Request{
		Snapshot:             s.buf.Snapshot(),
		Caret:                s.buf.Caret(),
		Reason:               completion.FilterCaretPositionChanged,
		RecheckCaretPosition: true,
	})
	if got != nil {
		t.Fatalf("caret left of span should dismiss, got %v", displayTexts(got.FilteredItems()))
	}

	s.buf.SetCaret(4)
	got = Filter(s.model, Request{
		Snapshot:             s.buf.Snapshot(),
		Caret:                s.buf.Caret(),
		Reason:               completion.FilterCaretPositionChanged,
		RecheckCaretPosition: true,
	})
	if got == nil {
		t.Fatal("caret inside span should keep the session")
	}
}

func TestFilterScenarioE(t *testing.T) {
	s := startAt(t, "x", completion.InvokeTrigger(), items("Console", "Contains")...)
	s.model = s.filter(completion.FilterOther)
	if s.model == nil || len(s.model.FilteredItems()) != 2 {
		t.Fatal("precondition: empty filter should show both items")
	}
	s.typeText(t, "#")
	if got := s.filter(completion.FilterInsertion); got != nil {
		t.Fatalf("punctuation with no match should dismiss, got %v", displayTexts(got.FilteredItems()))
	}
}

func TestFilterEmptyTextIsIdempotent(t *testing.T) {
	all := items("alpha", "beta", "gamma")
	all[1].Rules.MatchPriority = completion.PriorityPreselect
	s := startAt(t, "", completion.InvokeTrigger(), all...)

	first := s.filter(completion.FilterOther, "gamma")
	s.model = first
	second := s.filter(completion.FilterOther, "gamma")

	a, b := displayTexts(first.FilteredItems()), displayTexts(second.FilteredItems())
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Fatalf("filtered drifted: %v then %v", a, b)
	}
	if len(a) != 3 {
		t.Errorf("filtered = %v, want all items", a)
	}
	if first.SelectedItem() != second.SelectedItem() {
		t.Error("selection drifted")
	}
	if first.IsUnique() {
		t.Error("empty filter text must never be unique")
	}
}

func TestFilterEmptyTextSelection(t *testing.T) {
	all := items("alpha", "beta", "gamma")
	s := startAt(t, "", completion.InvokeTrigger(), all...)
	got := s.filter(completion.FilterOther)
	if got.SelectedItem() != all[0] || got.IsHardSelection() {
		t.Error("nothing typed should soft select the first item")
	}

	got = s.filter(completion.FilterOther, "gamma", "beta")
	if got.SelectedItem() != all[1] {
		t.Errorf("selected = %q, want most recent beta", got.SelectedItem().DisplayText)
	}
	if got.IsHardSelection() {
		t.Error("recent item without hard selection request should stay soft")
	}

	all[2].Rules.MatchPriority = completion.PriorityPreselect
	got = s.filter(completion.FilterOther)
	if got.SelectedItem() != all[2] || !got.IsHardSelection() {
		t.Error("preselected item should be hard selected with no filter text")
	}
}

func TestFilterDeletionMonotonic(t *testing.T) {
	names := []string{"Console", "Contains", "Context", "Cone"}
	all := items(names...)
	prefixes := []string{"C", "Co", "Con", "Cont", "Cons"}
	trigger := completion.DeletionTrigger('x')

	for _, p := range prefixes {
		deleted := make(map[*completion.Item]bool)
		for _, it := range all {
			if Matches(it, p, trigger, completion.FilterDeletion, nil) {
				deleted[it] = true
			}
		}
		for _, x := range "aeiostx" {
			typed := p + string(x)
			for _, it := range all {
				if Matches(it, typed, trigger, completion.FilterInsertion, nil) && !deleted[it] {
					t.Errorf("%q matches %q but deleting back to %q dropped it", it.DisplayText, typed, p)
				}
			}
		}
	}
}

func TestFilterDeletionRequiresPrefix(t *testing.T) {
	it := &completion.Item{DisplayText: "Console"}
	trigger := completion.DeletionTrigger('x')
	if Matches(it, "sol", trigger, completion.FilterDeletion, nil) {
		t.Error("deletion should not accept substrings")
	}
	if !Matches(it, "sol", completion.InsertionTrigger('s'), completion.FilterDeletion, nil) {
		t.Error("deletion reason with insertion trigger uses general matching")
	}
	if !Matches(it, "cons", trigger, completion.FilterDeletion, nil) {
		t.Error("deletion prefix should ignore case")
	}
}

func TestFilterUniquenessCorrectness(t *testing.T) {
	all := items("Console", "Contains", "Context", "Apple")
	for _, typed := range []string{"", "C", "Co", "Cons", "Conte", "App", "Ctx"} {
		t.Run("typed="+typed, func(t *testing.T) {
			s := startAt(t, "", completion.InvokeTrigger(), all...)
			s.typeText(t, typed)
			got := s.filter(completion.FilterInsertion)
			if got == nil {
				t.Skip("dismissed")
			}
			n := 0
			for _, it := range got.FilteredItems() {
				if typed != "" && Matches(it, typed, got.Trigger(), completion.FilterInsertion, nil) {
					n++
				}
			}
			if got.IsUnique() != (n == 1) {
				t.Errorf("IsUnique = %v with %d non-empty matches", got.IsUnique(), n)
			}
		})
	}
}

func TestFilterNonMatchingSingleCharacterKept(t *testing.T) {
	s := startAt(t, "", completion.InvokeTrigger(), items("Console", "apple")...)
	s.typeText(t, "a")
	got := s.filter(completion.FilterInsertion)
	if n := len(got.FilteredItems()); n != 2 {
		t.Fatalf("filtered = %v, want both while one character is typed", displayTexts(got.FilteredItems()))
	}
	if got.SelectedItem().DisplayText != "apple" {
		t.Errorf("selected = %q, want the matching item", got.SelectedItem().DisplayText)
	}

	s.typeText(t, "p")
	got = s.filter(completion.FilterInsertion)
	if names := displayTexts(got.FilteredItems()); len(names) != 1 || names[0] != "apple" {
		t.Errorf("filtered = %v, want [apple]", names)
	}
}

func TestFilterNoMatchKeepsPreviousSoft(t *testing.T) {
	s := startAt(t, "", completion.InvokeTrigger(), items("Console", "Contains")...)
	s.typeText(t, "Con")
	s.model = s.filter(completion.FilterInsertion)
	s.typeText(t, "zz")

	got := s.filter(completion.FilterInsertion)
	if got == nil {
		t.Fatal("identifier text with no match should keep the session")
	}
	if len(got.FilteredItems()) != 2 {
		t.Errorf("filtered = %v, want previous items", displayTexts(got.FilteredItems()))
	}
	if got.IsHardSelection() || got.IsUnique() {
		t.Error("no match must be soft and not unique")
	}
}

func TestFilterDismissIfEmpty(t *testing.T) {
	buf := text.NewBuffer("")
	m, err := completion.NewModel(completion.ModelParams{
		Items:          items("Console"),
		Snapshot:       buf.Snapshot(),
		Trigger:        completion.InvokeTrigger(),
		DismissIfEmpty: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	buf.InsertAtCaret("zz")
	req := Request{Snapshot: buf.Snapshot(), Caret: buf.Caret(), Reason: completion.FilterInsertion}

	if Filter(m, req) == nil {
		t.Error("dismissal needs DismissIfEmptyAllowed")
	}
	req.DismissIfEmptyAllowed = true
	if Filter(m, req) != nil {
		t.Error("empty insertion with dismissal allowed should dismiss")
	}
	req.Reason = completion.FilterCaretPositionChanged
	if Filter(m, req) == nil {
		t.Error("only insertions dismiss on empty")
	}
}

func TestFilterDismissIfLastCharacterDeleted(t *testing.T) {
	s := startAt(t, "", completion.DeletionTrigger('C'), items("Console")...)
	s.typeText(t, "C")
	s.buf.Backspace()

	req := Request{Snapshot: s.buf.Snapshot(), Caret: s.buf.Caret(), Reason: completion.FilterDeletion}
	if Filter(s.model, req) == nil {
		t.Fatal("should stay open without the option")
	}
	req.DismissIfLastCharacterDeleted = true
	if Filter(s.model, req) != nil {
		t.Error("deleting the last character should dismiss")
	}
}

func TestFilterStateStates(t *testing.T) {
	newItems := func() []*completion.Item {
		return []*completion.Item{
			{DisplayText: "Console", Filters: []string{"methods"}},
			{DisplayText: "Contains", Filters: []string{"fields"}},
		}
	}

	tests := []struct {
		name      string
		fs        completion.FilterState
		typed     string
		wantNames []string
	}{
		{"nil keeps previous", nil, "Zz", []string{"Console", "Contains"}},
		{"empty keeps previous", completion.FilterState{}, "Zz", []string{"Console", "Contains"}},
		{"all off keeps previous", completion.FilterState{"methods": false, "fields": false}, "Zz", []string{"Console", "Contains"}},
		{"all on surfaces empty", completion.FilterState{"methods": true, "fields": true}, "Zz", []string{}},
		{"mixed surfaces empty", completion.FilterState{"methods": false, "fields": true}, "Conso", []string{}},
		{"mixed excludes", completion.FilterState{"methods": false, "fields": true}, "Con", []string{"Contains"}},
		{"nil matches", nil, "Conso", []string{"Console"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startAt(t, "", completion.InvokeTrigger(), newItems()...)
			s.model = s.model.WithFilterState(tt.fs)
			s.typeText(t, tt.typed)

			got := s.filter(completion.FilterInsertion)
			if got == nil {
				t.Fatal("expected a model")
			}
			names := displayTexts(got.FilteredItems())
			if fmt.Sprint(names) != fmt.Sprint(tt.wantNames) {
				t.Errorf("filtered = %v, want %v", names, tt.wantNames)
			}
			if len(names) == 0 && got.IsHardSelection() {
				t.Error("empty list must be soft")
			}
		})
	}
}

func TestFilterSupersededReturnsInput(t *testing.T) {
	s := startAt(t, "", completion.InvokeTrigger(), items("Console", "Contains", "Context")...)
	s.typeText(t, "Cont")

	calls := 0
	got := Filter(s.model, Request{
		Snapshot: s.buf.Snapshot(),
		Caret:    s.buf.Caret(),
		Reason:   completion.FilterInsertion,
		Superseded: func() bool {
			calls++
			return calls > 2
		},
	})
	if got != s.model {
		t.Error("superseded pass must return its input unchanged")
	}

	if Filter(nil, Request{}) != nil {
		t.Error("nil model should stay nil")
	}
}
