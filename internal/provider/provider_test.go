package provider

import (
	"testing"

	"github.com/dshills/popcomplete/internal/text"
)

func TestWordSpan(t *testing.T) {
	tests := []struct {
		text  string
		caret int
		want  text.Span
	}{
		{"", 0, text.NewSpan(0, 0)},
		{"foo", 3, text.NewSpan(0, 3)},
		{"foo", 1, text.NewSpan(0, 3)},
		{"a.foo", 2, text.NewSpan(2, 5)},
		{"foo bar", 3, text.NewSpan(0, 3)},
		{"foo bar", 4, text.NewSpan(4, 7)},
		{"x + ", 4, text.NewSpan(4, 4)},
		{"héllo", 6, text.NewSpan(0, 6)},
		{"foo", 99, text.NewSpan(0, 3)},
	}
	for _, tt := range tests {
		if got := WordSpan(text.NewSnapshot(tt.text), tt.caret); got != tt.want {
			t.Errorf("WordSpan(%q, %d) = %v, want %v", tt.text, tt.caret, got, tt.want)
		}
	}
}

func TestPrefix(t *testing.T) {
	snap := text.NewSnapshot("fmt.Println")
	if got := Prefix(snap, 8); got != "Prin" {
		t.Errorf("Prefix() = %q, want Prin", got)
	}
	if got := Prefix(snap, 4); got != "" {
		t.Errorf("Prefix() after dot = %q, want empty", got)
	}
}

func TestWords(t *testing.T) {
	var got []string
	var offsets []int
	Words("if x_1 := foo(bar); ok", func(w string, off int) bool {
		got = append(got, w)
		offsets = append(offsets, off)
		return true
	})
	want := []string{"if", "x_1", "foo", "bar", "ok"}
	if len(got) != len(want) {
		t.Fatalf("Words() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, got[i], want[i])
		}
	}
	if offsets[2] != 10 {
		t.Errorf("offset of foo = %d, want 10", offsets[2])
	}

	n := 0
	Words("a b c", func(string, int) bool { n++; return n < 2 })
	if n != 2 {
		t.Errorf("early stop visited %d words, want 2", n)
	}
}
