// Package text provides the editable text model the completion controller
// works against: a mutable Buffer, immutable Snapshots of it, tracking
// points and spans that follow edits across versions, and grouped undo
// transactions.
//
// Offsets are byte offsets into UTF-8 text. A Snapshot carries the change
// log up to its version, so a TrackingSpan created on an older snapshot can
// be mapped onto any newer one without consulting the Buffer:
//
//	trigger := buf.Snapshot()
//	span := text.NewTrackingSpan(trigger, text.Span{Start: 4, End: 4}, text.EdgeInclusive)
//	buf.InsertAtCaret("Con")
//	span.Span(buf.Snapshot()) // {4 7}
//
// Buffer is safe for concurrent use. Listeners run synchronously on the
// goroutine that made the edit, after the buffer lock is released.
package text
