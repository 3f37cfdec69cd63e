package text

import "fmt"

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// NewSpan creates a span, swapping the bounds if they are reversed.
func NewSpan(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers nothing.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// ContainsCaret reports whether a caret at pos touches the span.
// Both edges count, so a caret just after the last byte is inside.
func (s Span) ContainsCaret(pos int) bool {
	return pos >= s.Start && pos <= s.End
}

// Union returns the smallest span covering both.
func (s Span) Union(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End)
}

// Change describes one replacement made to a buffer.
type Change struct {
	// Offset is where the replaced text started.
	Offset int
	// OldText is the text that was removed.
	OldText string
	// NewText is the text that was inserted.
	NewText string
}

// OldSpan returns the replaced range in the pre-change text.
func (c Change) OldSpan() Span {
	return Span{Start: c.Offset, End: c.Offset + len(c.OldText)}
}

// NewSpan returns the inserted range in the post-change text.
func (c Change) NewSpan() Span {
	return Span{Start: c.Offset, End: c.Offset + len(c.NewText)}
}

// Delta returns the change in text length.
func (c Change) Delta() int {
	return len(c.NewText) - len(c.OldText)
}

// inverse returns the change that undoes c.
func (c Change) inverse() Change {
	return Change{Offset: c.Offset, OldText: c.NewText, NewText: c.OldText}
}
