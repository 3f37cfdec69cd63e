package app

import (
	"context"
	"strings"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

// trailingSpaceFormatter trims blanks left at the end of the line a
// completion was committed on.
type trailingSpaceFormatter struct{}

func (trailingSpaceFormatter) FormatEdits(_ context.Context, snap text.Snapshot, span text.Span, _ rune) ([]completion.TextChange, error) {
	s := snap.Text()
	end := min(span.End, len(s))
	if i := strings.IndexByte(s[end:], '\n'); i >= 0 {
		end += i
	} else {
		end = len(s)
	}
	start := end
	for start > span.Start && (s[start-1] == ' ' || s[start-1] == '\t') {
		start--
	}
	if start == end {
		return nil, nil
	}
	return []completion.TextChange{{Span: text.NewSpan(start, end), CaretOffset: -1}}, nil
}
