package match

import "unicode"

// Scoring weights for matches of the same kind.
const (
	baseScore            = 100
	consecutiveBonus     = 20
	wordBoundaryBonus    = 15
	prefixBonus          = 25
	gapPenalty           = 2
	leadingPenalty       = 1
	lengthBonusThreshold = 20
)

// score rates matched rune indices within candidate. Higher is better.
func score(candidate []rune, matches []int) int {
	if len(matches) == 0 {
		return 0
	}

	s := baseScore
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			s += consecutiveBonus
		}
	}
	for _, idx := range matches {
		if isWordBoundary(candidate, idx) {
			s += wordBoundaryBonus
		}
	}
	if matches[0] == 0 {
		s += prefixBonus
	}
	if len(matches) > 1 {
		if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
			s -= gap * gapPenalty
		}
	}
	s -= matches[0] * leadingPenalty
	if n := len(candidate); n < lengthBonusThreshold {
		s += lengthBonusThreshold - n
	}
	if s < 1 {
		s = 1
	}
	return s
}

// isWordBoundary reports whether the rune at idx starts a word: the first
// rune, a rune after a separator, or an upper-case rune after a lower-case one.
func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) || unicode.IsSymbol(prev) {
		return true
	}
	if unicode.IsLower(prev) && unicode.IsUpper(cur) {
		return true
	}
	return unicode.IsLetter(prev) && unicode.IsDigit(cur)
}

// humpStarts returns the indices of word starts that begin with a letter or digit.
func humpStarts(runes []rune) []int {
	var out []int
	for i, r := range runes {
		if (unicode.IsLetter(r) || unicode.IsDigit(r)) && isWordBoundary(runes, i) {
			out = append(out, i)
		}
	}
	return out
}
