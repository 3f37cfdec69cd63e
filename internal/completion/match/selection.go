package match

import (
	"unicode"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

// isDeletion reports whether deletion matching rules apply.
func isDeletion(trigger completion.Trigger, reason completion.FilterReason) bool {
	return reason == completion.FilterDeletion && trigger.Kind == completion.TriggerDeletion
}

// Matches reports whether item matches filterText.
//
// Empty filter text matches only preselected items and items the user
// committed recently. Deletion passes started by a deletion accept only a
// case-insensitive prefix of the item's filter text.
func Matches(item *completion.Item, filterText string, trigger completion.Trigger, reason completion.FilterReason, recent []string) bool {
	return matches(NewMatcher(), item, filterText, trigger, reason, recent)
}

func matches(m *Matcher, item *completion.Item, filterText string, trigger completion.Trigger, reason completion.FilterReason, recent []string) bool {
	if filterText == "" {
		return item.IsPreselected() || recentRank(recent, item.DisplayText) < len(recent)
	}
	if isDeletion(trigger, reason) {
		return m.HasPrefixFold(item.FilterTextOrDisplay(), filterText)
	}
	_, ok := m.Match(item.FilterTextOrDisplay(), filterText)
	return ok
}

// IsBetterMatch reports whether a is a strictly better match for
// filterText than b. Ties keep b.
func IsBetterMatch(a, b *completion.Item, filterText string, trigger completion.Trigger, reason completion.FilterReason, recent []string) bool {
	return isBetterMatch(NewMatcher(), a, b, filterText, trigger, reason, recent)
}

func isBetterMatch(m *Matcher, a, b *completion.Item, filterText string, trigger completion.Trigger, reason completion.FilterReason, recent []string) bool {
	if b == nil {
		return a != nil
	}
	if a == nil {
		return false
	}

	if isDeletion(trigger, reason) {
		pa := m.CommonPrefixLen(a.FilterTextOrDisplay(), filterText)
		pb := m.CommonPrefixLen(b.FilterTextOrDisplay(), filterText)
		if pa != pb {
			return pa > pb
		}
		// Priority only decides for an item that asks to be hard selected.
		if a.Rules.MatchPriority != b.Rules.MatchPriority {
			winner := a
			if b.Rules.MatchPriority > a.Rules.MatchPriority {
				winner = b
			}
			if winner.Rules.SelectionBehavior == completion.SelectionHard {
				return winner == a
			}
		}
	}

	ma, okA := m.Match(a.FilterTextOrDisplay(), filterText)
	mb, okB := m.Match(b.FilterTextOrDisplay(), filterText)
	if okA != okB {
		return okA
	}
	if c := ma.Compare(mb); c != 0 {
		return c < 0
	}
	if a.Rules.MatchPriority != b.Rules.MatchPriority {
		return a.Rules.MatchPriority > b.Rules.MatchPriority
	}
	if ra, rb := recentRank(recent, a.DisplayText), recentRank(recent, b.DisplayText); ra != rb {
		return ra < rb
	}
	return ma.Score > mb.Score
}

// recentRank returns 0 for the most recently committed name, 1 for the one
// before it and so on. Names not in recent rank len(recent).
func recentRank(recent []string, name string) int {
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i] == name {
			return len(recent) - 1 - i
		}
	}
	return len(recent)
}

// ShouldSoftSelect reports whether item must be soft selected for
// filterText regardless of how well it matched: punctuation the user typed
// that is not the item itself, or nothing typed at all for an item that
// did not ask to be selected.
func ShouldSoftSelect(item *completion.Item, filterText string) bool {
	if filterText != "" && isAllPunctuation(filterText) && filterText != item.DisplayText {
		return true
	}
	if filterText == "" && item.Rules.SelectionBehavior != completion.SelectionHard && !item.IsPreselected() {
		return true
	}
	return false
}

// IsHardSelection decides whether best should be hard selected in m, given
// the buffer state in snap and caret.
func IsHardSelection(m *completion.Model, best *completion.Item, snap text.Snapshot, caret int, reason completion.FilterReason, recent []string) bool {
	return isHardSelection(NewMatcher(), m, best, snap, caret, reason, recent)
}

func isHardSelection(mt *Matcher, m *completion.Model, best *completion.Item, snap text.Snapshot, caret int, reason completion.FilterReason, recent []string) bool {
	if best == nil {
		return false
	}
	if m.UseSuggestionMode() {
		builder := m.Builder()
		return builder != nil && best.DisplayText == builder.DisplayText
	}

	span := m.TrackingSpan(best).Span(snap)
	filterText := snap.Slice(typedSpan(span, caret))
	if ShouldSoftSelect(best, filterText) {
		return false
	}

	// The caret moved left of text that was typed; the whole span must
	// still match for the selection to stay hard.
	fullText := snap.Slice(span)
	if fullText != filterText && !matches(mt, best, fullText, m.Trigger(), completion.FilterOther, recent) {
		return false
	}
	return true
}

// typedSpan is the part of span before the caret.
func typedSpan(span text.Span, caret int) text.Span {
	end := span.End
	if caret < end {
		end = caret
	}
	if end < span.Start {
		end = span.Start
	}
	return text.Span{Start: span.Start, End: end}
}

func isAllPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// IsIdentifierStart reports whether s could be the start of an identifier:
// empty, or beginning with a letter, digit or underscore.
func IsIdentifierStart(s string) bool {
	for _, r := range s {
		return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return true
}
