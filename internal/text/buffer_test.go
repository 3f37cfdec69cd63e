package text

import (
	"errors"
	"testing"
)

func TestApplyEdit(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		span      Span
		newText   string
		want      string
		wantCaret int
		wantErr   error
	}{
		{"insert middle", "hello world", Span{5, 5}, ",", "hello, world", 6, nil},
		{"replace", "Con", Span{0, 3}, "Console", "Console", 7, nil},
		{"delete", "abc", Span{1, 2}, "", "ac", 1, nil},
		{"out of range", "abc", Span{2, 9}, "x", "abc", 0, ErrOffsetOutOfRange},
		{"reversed", "abc", Span{2, 1}, "x", "abc", 0, ErrRangeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.initial)
			caret, err := b.ApplyEdit(tt.span, tt.newText)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got := b.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if err == nil && caret != tt.wantCaret {
				t.Errorf("caret = %d, want %d", caret, tt.wantCaret)
			}
		})
	}
}

func TestBackspaceAndDelete(t *testing.T) {
	b := NewBuffer("héllo", WithCaret(3))

	if !b.Backspace() {
		t.Fatal("Backspace returned false")
	}
	if got := b.Text(); got != "hllo" {
		t.Errorf("after backspace text = %q", got)
	}
	if got := b.Caret(); got != 1 {
		t.Errorf("after backspace caret = %d, want 1", got)
	}

	if !b.DeleteForward() {
		t.Fatal("DeleteForward returned false")
	}
	if got := b.Text(); got != "hlo" {
		t.Errorf("after delete text = %q", got)
	}

	b.SetCaret(0)
	if b.Backspace() {
		t.Error("Backspace at start should report false")
	}
}

func TestListeners(t *testing.T) {
	b := NewBuffer("ab")
	var changes, carets int

	offText := b.OnTextChanged(func(ev ChangeEvent) {
		changes++
		if ev.After.Version() != ev.Before.Version()+1 {
			t.Errorf("versions %d -> %d", ev.Before.Version(), ev.After.Version())
		}
	})
	offCaret := b.OnCaretMoved(func(ev CaretEvent) { carets++ })

	b.InsertAtCaret("c")
	b.SetCaret(0)
	b.SetCaret(0) // no movement, no event

	if changes != 1 || carets != 2 {
		t.Errorf("changes=%d carets=%d, want 1 and 2", changes, carets)
	}

	offText()
	offCaret()
	b.InsertAtCaret("d")
	if changes != 1 || carets != 2 {
		t.Errorf("listeners fired after removal: changes=%d carets=%d", changes, carets)
	}
}

func TestTransactionUndoTogether(t *testing.T) {
	b := NewBuffer("x.Con")

	tx := b.BeginTransaction("commit")
	b.ApplyEdit(Span{2, 5}, "Console")
	b.InsertAtCaret("()")
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if got := b.Text(); got != "x.Console()" {
		t.Fatalf("text = %q", got)
	}
	if got := b.UndoCount(); got != 1 {
		t.Errorf("UndoCount = %d, want 1", got)
	}

	if err := b.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := b.Text(); got != "x.Con" {
		t.Errorf("after undo text = %q", got)
	}

	if err := b.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if got := b.Text(); got != "x.Console()" {
		t.Errorf("after redo text = %q", got)
	}
}

func TestSeparateTransactionsUndoSeparately(t *testing.T) {
	b := NewBuffer("f")

	tx := b.BeginTransaction("commit")
	b.ApplyEdit(Span{0, 1}, "foo ")
	tx.Commit()

	fmtTx := b.BeginTransaction("format")
	b.ApplyEdit(Span{3, 4}, "")
	fmtTx.Commit()

	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := b.Text(); got != "foo " {
		t.Errorf("after first undo text = %q, want %q", got, "foo ")
	}
	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := b.Text(); got != "f" {
		t.Errorf("after second undo text = %q, want %q", got, "f")
	}
	if err := b.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("third undo err = %v", err)
	}
}

func TestNestedTransactionFoldsIntoParent(t *testing.T) {
	b := NewBuffer("")
	outer := b.BeginTransaction("outer")
	b.InsertAtCaret("a")
	inner := b.BeginTransaction("inner")
	b.InsertAtCaret("b")
	inner.Commit()
	outer.Commit()

	if got := b.UndoCount(); got != 1 {
		t.Errorf("UndoCount = %d, want 1", got)
	}
	if err := inner.Commit(); !errors.Is(err, ErrTransactionDone) {
		t.Errorf("double commit err = %v", err)
	}
}

func TestTransactionCancelReverts(t *testing.T) {
	b := NewBuffer("abc")
	tx := b.BeginTransaction("scratch")
	b.ApplyEdit(Span{0, 3}, "xyz123")
	if err := tx.Cancel(); err != nil {
		t.Fatal(err)
	}
	if got := b.Text(); got != "abc" {
		t.Errorf("text = %q, want abc", got)
	}
	if got := b.UndoCount(); got != 0 {
		t.Errorf("UndoCount = %d, want 0", got)
	}
}
