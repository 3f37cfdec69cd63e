package match

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// PatternKind classifies how a pattern matched a candidate. Lower is better.
type PatternKind uint8

const (
	KindExact PatternKind = iota
	KindPrefix
	KindCamelCase
	KindSubstring
	KindFuzzy
)

var patternKindNames = [...]string{"Exact", "Prefix", "CamelCase", "Substring", "Fuzzy"}

// String returns the kind name.
func (k PatternKind) String() string {
	if int(k) >= len(patternKindNames) {
		return "Unknown"
	}
	return patternKindNames[k]
}

// maxCamelCandidate bounds the size of the hump search table.
const maxCamelCandidate = 256

// PatternMatch describes a successful match.
type PatternMatch struct {
	Kind          PatternKind
	CaseSensitive bool
	// Score orders matches of the same kind. Higher is better.
	Score int
	// Matches are the matched rune indices in the candidate.
	Matches []int
}

// Compare orders two matches by kind and then case sensitivity. It
// returns a negative number when p is better, positive when o is better.
// Score is not considered.
func (p PatternMatch) Compare(o PatternMatch) int {
	if p.Kind != o.Kind {
		return int(p.Kind) - int(o.Kind)
	}
	if p.CaseSensitive != o.CaseSensitive {
		if p.CaseSensitive {
			return -1
		}
		return 1
	}
	return 0
}

// Matcher matches patterns against candidates. A Matcher holds a case
// folder and must not be shared between goroutines.
type Matcher struct {
	fold cases.Caser
}

// NewMatcher returns a Matcher with Unicode case folding.
func NewMatcher() *Matcher {
	return &Matcher{fold: cases.Fold()}
}

// MatchPattern matches pattern against candidate with a fresh Matcher.
func MatchPattern(candidate, pattern string) (PatternMatch, bool) {
	return NewMatcher().Match(candidate, pattern)
}

// Match reports whether pattern matches candidate and how. An empty
// pattern matches everything as a case-sensitive prefix.
func (m *Matcher) Match(candidate, pattern string) (PatternMatch, bool) {
	if pattern == "" {
		return PatternMatch{Kind: KindPrefix, CaseSensitive: true}, true
	}
	c := []rune(candidate)
	p := []rune(pattern)
	if len(p) > len(c) {
		return PatternMatch{}, false
	}

	if candidate == pattern {
		return m.result(KindExact, c, p, seq(0, len(p))), true
	}
	fc, fp := m.fold.String(candidate), m.fold.String(pattern)
	if fc == fp {
		return m.result(KindExact, c, p, seq(0, len(p))), true
	}
	if strings.HasPrefix(candidate, pattern) || strings.HasPrefix(fc, fp) {
		return m.result(KindPrefix, c, p, seq(0, len(p))), true
	}
	if len(c) <= maxCamelCandidate {
		if idx := m.camelHumps(c, p); idx != nil {
			return m.result(KindCamelCase, c, p, idx), true
		}
	}
	if i := m.indexFold(c, p); i >= 0 {
		return m.result(KindSubstring, c, p, seq(i, len(p))), true
	}
	if idx := m.subsequence(c, p); idx != nil {
		return m.result(KindFuzzy, c, p, idx), true
	}
	return PatternMatch{}, false
}

// HasPrefixFold reports whether prefix is a case-insensitive prefix of s.
func (m *Matcher) HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(m.fold.String(s), m.fold.String(prefix))
}

// CommonPrefixLen returns how many leading runes of a and b are equal
// ignoring case.
func (m *Matcher) CommonPrefixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && m.equalFold(ra[n], rb[n]) {
		n++
	}
	return n
}

func (m *Matcher) result(kind PatternKind, c, p []rune, idx []int) PatternMatch {
	sensitive := true
	for j, i := range idx {
		if c[i] != p[j] {
			sensitive = false
			break
		}
	}
	return PatternMatch{Kind: kind, CaseSensitive: sensitive, Score: score(c, idx), Matches: idx}
}

// camelHumps matches the pattern as runs of characters that each begin at
// a word start of the candidate, backtracking over run lengths.
func (m *Matcher) camelHumps(c, p []rune) []int {
	starts := humpStarts(c)
	if len(starts) < 2 {
		return nil
	}

	// failed[pi*stride+hi] marks states already known not to match.
	stride := len(starts) + 1
	failed := make([]bool, (len(p)+1)*stride)

	var walk func(pi, hi int, acc []int) []int
	walk = func(pi, hi int, acc []int) []int {
		if pi == len(p) {
			return acc
		}
		if failed[pi*stride+hi] {
			return nil
		}
		for h := hi; h < len(starts); h++ {
			ci := starts[h]
			n := 0
			for ci+n < len(c) && pi+n < len(p) && m.equalFold(c[ci+n], p[pi+n]) {
				n++
			}
			for k := n; k >= 1; k-- {
				next := h + 1
				for next < len(starts) && starts[next] < ci+k {
					next++
				}
				run := append(acc[:len(acc):len(acc)], seq(ci, k)...)
				if out := walk(pi+k, next, run); out != nil {
					return out
				}
			}
		}
		failed[pi*stride+hi] = true
		return nil
	}
	return walk(0, 0, nil)
}

func (m *Matcher) indexFold(c, p []rune) int {
	for i := 0; i+len(p) <= len(c); i++ {
		ok := true
		for j := range p {
			if !m.equalFold(c[i+j], p[j]) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

func (m *Matcher) subsequence(c, p []rune) []int {
	idx := make([]int, 0, len(p))
	pi := 0
	for ci := 0; ci < len(c) && pi < len(p); ci++ {
		if m.equalFold(c[ci], p[pi]) {
			idx = append(idx, ci)
			pi++
		}
	}
	if pi < len(p) {
		return nil
	}
	return idx
}

func (m *Matcher) equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	return m.foldRune(a) == m.foldRune(b)
}

func (m *Matcher) foldRune(r rune) rune {
	if r < utf8.RuneSelf {
		if 'A' <= r && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}
	s := m.fold.String(string(r))
	f, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return r
	}
	return f
}

func seq(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
