package text

// PointTracking selects which way a point moves when text is inserted at it.
type PointTracking uint8

const (
	// TrackNegative keeps the point before text inserted at it.
	TrackNegative PointTracking = iota
	// TrackPositive moves the point after text inserted at it.
	TrackPositive
)

// SpanTracking selects how span edges react to insertions on them.
type SpanTracking uint8

const (
	// EdgeExclusive keeps insertions at either edge outside the span.
	EdgeExclusive SpanTracking = iota
	// EdgeInclusive grows the span to cover insertions at either edge.
	EdgeInclusive
)

// translate maps pos through a single change.
func translate(pos int, c Change, mode PointTracking) int {
	oldEnd := c.Offset + len(c.OldText)
	switch {
	case pos < c.Offset:
		return pos
	case pos > oldEnd:
		return pos + c.Delta()
	case pos == oldEnd && len(c.OldText) > 0:
		return c.Offset + len(c.NewText)
	case mode == TrackPositive:
		return c.Offset + len(c.NewText)
	default:
		return c.Offset
	}
}

// TrackingPoint is a position that follows edits made after it was created.
type TrackingPoint struct {
	pos     int
	version int
	mode    PointTracking
}

// NewTrackingPoint creates a point at pos in snap.
func NewTrackingPoint(snap Snapshot, pos int, mode PointTracking) TrackingPoint {
	return TrackingPoint{pos: clamp(pos, 0, snap.Len()), version: snap.Version(), mode: mode}
}

// Position returns the point's offset in snap. Snapshots older than the
// point's origin return the original offset clamped to snap.
func (p TrackingPoint) Position(snap Snapshot) int {
	pos := p.pos
	for _, c := range snap.ChangesSince(p.version) {
		pos = translate(pos, c, p.mode)
	}
	return clamp(pos, 0, snap.Len())
}

// TrackingSpan is a span that follows edits made after it was created.
type TrackingSpan struct {
	span    Span
	version int
	mode    SpanTracking
}

// NewTrackingSpan creates a tracking span over span in snap.
func NewTrackingSpan(snap Snapshot, span Span, mode SpanTracking) TrackingSpan {
	start := clamp(span.Start, 0, snap.Len())
	end := clamp(span.End, start, snap.Len())
	return TrackingSpan{span: Span{Start: start, End: end}, version: snap.Version(), mode: mode}
}

// Origin returns the span as it was in the snapshot it was created on.
func (t TrackingSpan) Origin() Span {
	return t.span
}

// Span returns the tracked span mapped onto snap.
func (t TrackingSpan) Span(snap Snapshot) Span {
	startMode, endMode := TrackPositive, TrackNegative
	if t.mode == EdgeInclusive {
		startMode, endMode = TrackNegative, TrackPositive
	}
	start, end := t.span.Start, t.span.End
	for _, c := range snap.ChangesSince(t.version) {
		start = translate(start, c, startMode)
		end = translate(end, c, endMode)
		if end < start {
			end = start
		}
	}
	start = clamp(start, 0, snap.Len())
	end = clamp(end, start, snap.Len())
	return Span{Start: start, End: end}
}
