package text

import "unicode/utf8"

// versionedChange is a change together with the version it produced.
type versionedChange struct {
	version int
	change  Change
}

// Snapshot is an immutable view of a buffer at one version.
// Snapshots are values and may be shared freely across goroutines.
type Snapshot struct {
	text    string
	version int
	// changes holds every change up to version, oldest first.
	// The backing array is append-only, so later appends never
	// disturb the prefix a snapshot can see.
	changes []versionedChange
}

// NewSnapshot returns a standalone snapshot at version 0.
func NewSnapshot(s string) Snapshot {
	return Snapshot{text: s}
}

// Version returns the buffer version this snapshot was taken at.
func (s Snapshot) Version() int {
	return s.version
}

// Len returns the length in bytes.
func (s Snapshot) Len() int {
	return len(s.text)
}

// Text returns the full text.
func (s Snapshot) Text() string {
	return s.text
}

// Slice returns the text covered by span, clamped to the snapshot.
func (s Snapshot) Slice(span Span) string {
	start := clamp(span.Start, 0, len(s.text))
	end := clamp(span.End, start, len(s.text))
	return s.text[start:end]
}

// RuneBefore returns the rune ending at pos and its size, or (utf8.RuneError, 0)
// at the start of the text.
func (s Snapshot) RuneBefore(pos int) (rune, int) {
	pos = clamp(pos, 0, len(s.text))
	if pos == 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeLastRuneInString(s.text[:pos])
}

// RuneAt returns the rune starting at pos and its size, or (utf8.RuneError, 0)
// at the end of the text.
func (s Snapshot) RuneAt(pos int) (rune, int) {
	if pos < 0 || pos >= len(s.text) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(s.text[pos:])
}

// ChangesSince returns the changes applied after version v, oldest first.
// It returns nil when v is not older than the snapshot.
func (s Snapshot) ChangesSince(v int) []Change {
	if v >= s.version {
		return nil
	}
	var out []Change
	for _, vc := range s.changes {
		if vc.version > v && vc.version <= s.version {
			out = append(out, vc.change)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
