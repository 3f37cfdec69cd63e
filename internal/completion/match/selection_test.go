package match

import (
	"testing"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

func TestIsBetterMatch(t *testing.T) {
	console := &completion.Item{DisplayText: "Console"}
	contains := &completion.Item{DisplayText: "Contains"}
	lower := &completion.Item{DisplayText: "console"}
	preferred := &completion.Item{DisplayText: "Contains", Rules: completion.Rules{MatchPriority: 10}}
	cons := &completion.Item{DisplayText: "Cons"}
	loud := &completion.Item{DisplayText: "Console", Rules: completion.Rules{MatchPriority: 10}}
	loudHard := &completion.Item{DisplayText: "Console", Rules: completion.Rules{MatchPriority: 10, SelectionBehavior: completion.SelectionHard}}

	insert := completion.InsertionTrigger('C')
	del := completion.DeletionTrigger('x')

	tests := []struct {
		name    string
		a, b    *completion.Item
		filter  string
		trigger completion.Trigger
		reason  completion.FilterReason
		recent  []string
		want    bool
	}{
		{"nil b", console, nil, "Con", insert, completion.FilterInsertion, nil, true},
		{"case sensitive wins", console, lower, "Con", insert, completion.FilterInsertion, nil, true},
		{"case insensitive loses", lower, console, "Con", insert, completion.FilterInsertion, nil, false},
		{"priority", preferred, console, "Con", insert, completion.FilterInsertion, nil, true},
		{"recent wins", contains, console, "Con", insert, completion.FilterInsertion, []string{"Console", "Contains"}, true},
		{"older loses", console, contains, "Con", insert, completion.FilterInsertion, []string{"Console", "Contains"}, false},
		{"absent loses to recent", console, contains, "Con", insert, completion.FilterInsertion, []string{"Contains"}, false},
		{"match kind beats priority", console, preferred, "Cons", insert, completion.FilterInsertion, nil, true},
		{"deletion longer prefix", console, contains, "Cons", del, completion.FilterDeletion, nil, true},
		{"deletion hard priority", preferred, console, "Con", del, completion.FilterDeletion, nil, true},
		{"deletion priority without hard request", cons, loud, "Cons", del, completion.FilterDeletion, nil, true},
		{"deletion priority with hard request", loudHard, cons, "Cons", del, completion.FilterDeletion, nil, true},
		{"equal keeps b", console, console, "Con", insert, completion.FilterInsertion, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBetterMatch(tt.a, tt.b, tt.filter, tt.trigger, tt.reason, tt.recent); got != tt.want {
				t.Errorf("IsBetterMatch = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldSoftSelect(t *testing.T) {
	tests := []struct {
		name   string
		item   completion.Item
		filter string
		want   bool
	}{
		{"typed identifier", completion.Item{DisplayText: "Console"}, "Con", false},
		{"punctuation", completion.Item{DisplayText: "Console"}, ".", true},
		{"punctuation equal to item", completion.Item{DisplayText: "++"}, "++", false},
		{"nothing typed", completion.Item{DisplayText: "Console"}, "", true},
		{"nothing typed preselected", completion.Item{DisplayText: "Console", Rules: completion.Rules{MatchPriority: completion.PriorityPreselect}}, "", false},
		{"nothing typed hard request", completion.Item{DisplayText: "Console", Rules: completion.Rules{SelectionBehavior: completion.SelectionHard}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSoftSelect(&tt.item, tt.filter); got != tt.want {
				t.Errorf("ShouldSoftSelect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsHardSelectionCaretLeftOfTypedText(t *testing.T) {
	console := &completion.Item{DisplayText: "Console"}
	snap := text.NewSnapshot("x.Conxx")
	m, err := completion.NewModel(completion.ModelParams{
		Items:       []*completion.Item{console},
		Snapshot:    snap,
		DefaultSpan: text.NewSpan(2, 7),
	})
	if err != nil {
		t.Fatal(err)
	}
	if IsHardSelection(m, console, snap, 5, completion.FilterCaretPositionChanged, nil) {
		t.Error("span text that no longer matches should soft select")
	}
	if !IsHardSelection(m, console, text.NewSnapshot("x.Conso"), 5, completion.FilterCaretPositionChanged, nil) {
		t.Error("span text that still matches should hard select")
	}
}

func TestIsHardSelectionSuggestionMode(t *testing.T) {
	console := &completion.Item{DisplayText: "Console"}
	snap := text.NewSnapshot("Con")
	build := func(builder string) *completion.Model {
		m, err := completion.NewModel(completion.ModelParams{
			Items:             []*completion.Item{console},
			Builder:           &completion.Item{DisplayText: builder},
			Snapshot:          snap,
			DefaultSpan:       text.NewSpan(0, 3),
			UseSuggestionMode: true,
		})
		if err != nil {
			t.Fatal(err)
		}
		return m
	}
	if IsHardSelection(build("Con"), console, snap, 3, completion.FilterInsertion, nil) {
		t.Error("builder text differs, selection should be soft")
	}
	if !IsHardSelection(build("Console"), console, snap, 3, completion.FilterInsertion, nil) {
		t.Error("builder text equals best match, selection should be hard")
	}
}

func TestIsIdentifierStart(t *testing.T) {
	for s, want := range map[string]bool{"": true, "a": true, "_x": true, "9": true, "#": false, ".": false, " ": false} {
		if got := IsIdentifierStart(s); got != want {
			t.Errorf("IsIdentifierStart(%q) = %v, want %v", s, got, want)
		}
	}
}
