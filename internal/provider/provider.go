// Package provider holds helpers shared by the completion providers.
//
// Each sub-package implements completion.Provider:
//
//   - words: identifiers already in the buffer
//   - dictionary: static word lists loaded from msgpack, yaml or text
//   - lua: candidates computed by a Lua script
//   - multi: fans a request out to several providers and merges the results
package provider

import (
	"unicode"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/dshills/popcomplete/internal/text"
)

// IsWordRune reports whether r belongs to an identifier.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordSpan returns the identifier around caret in snap. The span is empty
// at caret when no identifier touches it.
func WordSpan(snap text.Snapshot, caret int) text.Span {
	s := snap.Text()
	caret = max(0, min(caret, len(s)))

	start := caret
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !IsWordRune(r) {
			break
		}
		start -= size
	}
	end := caret
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !IsWordRune(r) {
			break
		}
		end += size
	}
	return text.NewSpan(start, end)
}

// Prefix returns the part of the identifier at caret that precedes it.
func Prefix(snap text.Snapshot, caret int) string {
	span := WordSpan(snap, caret)
	return snap.Slice(text.NewSpan(span.Start, max(span.Start, min(caret, span.End))))
}

// Words calls fn for every identifier in s with its byte offset. It stops
// early when fn returns false.
func Words(s string, fn func(word string, offset int) bool) {
	start := -1
	for i, r := range s {
		switch {
		case IsWordRune(r):
			if start < 0 {
				start = i
			}
		case start >= 0:
			if !fn(s[start:i], start) {
				return
			}
			start = -1
		}
	}
	if start >= 0 {
		fn(s[start:], start)
	}
}

// VisitPrefix visits every trie item whose key starts with key. An empty
// key visits the whole trie.
func VisitPrefix(trie *patricia.Trie, key string, fn patricia.VisitorFunc) error {
	if key == "" {
		return trie.Visit(fn)
	}
	return trie.VisitSubtree(patricia.Prefix(key), fn)
}
