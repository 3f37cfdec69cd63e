// Package keys routes terminal key events to the completion controller
// and the buffer it edits.
package keys

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/text"
)

// Commands are the controller commands a key can issue.
// *controller.Controller implements it.
type Commands interface {
	TypeChar(r rune, next func())
	Backspace(next func())
	Delete(next func())
	Tab(next func())
	Enter(next func())
	Escape(next func())
	Navigate(key completion.NavKey, next func())
	Cut(next func())
	Paste(next func())
	Save(next func())
	SelectAll(next func())
	InsertSnippet(next func())
	Invoke()
	CommitUniqueItem()
}

// CategoryToggler flips popup filter categories by position.
type CategoryToggler interface {
	ToggleCategory(n int) bool
}

// Result is the outcome of handling a key.
type Result uint8

const (
	// Handled means the key was consumed.
	Handled Result = iota
	// Ignored means the key has no binding.
	Ignored
	// Quit asks the caller to exit.
	Quit
)

// Router maps key events to commands. Editing keys pass the matching
// buffer edit as the command's fallthrough.
type Router struct {
	cmds      Commands
	buf       *text.Buffer
	toggler   CategoryToggler
	clipboard string

	// OnSave runs after the save command. Optional.
	OnSave func()
}

// NewRouter creates a router editing buf. toggler may be nil.
func NewRouter(cmds Commands, buf *text.Buffer, toggler CategoryToggler) *Router {
	return &Router{cmds: cmds, buf: buf, toggler: toggler}
}

// Handle dispatches one key event.
func (r *Router) Handle(ev *tcell.EventKey) Result {
	if ev.Modifiers()&tcell.ModAlt != 0 && ev.Key() == tcell.KeyRune {
		if d := ev.Rune(); d >= '1' && d <= '9' && r.toggler != nil {
			r.toggler.ToggleCategory(int(d - '1'))
			return Handled
		}
		return Ignored
	}

	switch ev.Key() {
	case tcell.KeyRune:
		ch := ev.Rune()
		r.cmds.TypeChar(ch, r.insert(string(ch)))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		r.cmds.Backspace(func() { r.buf.Backspace() })
	case tcell.KeyDelete:
		r.cmds.Delete(func() { r.buf.DeleteForward() })
	case tcell.KeyTab:
		r.cmds.Tab(r.insert("\t"))
	case tcell.KeyEnter:
		r.cmds.Enter(r.insert("\n"))
	case tcell.KeyEscape:
		r.cmds.Escape(nil)
	case tcell.KeyUp:
		r.cmds.Navigate(completion.NavUp, func() { r.moveLine(-1) })
	case tcell.KeyDown:
		r.cmds.Navigate(completion.NavDown, func() { r.moveLine(1) })
	case tcell.KeyPgUp:
		r.cmds.Navigate(completion.NavPageUp, nil)
	case tcell.KeyPgDn:
		r.cmds.Navigate(completion.NavPageDown, nil)
	case tcell.KeyHome:
		r.cmds.Navigate(completion.NavHome, func() { r.buf.SetCaret(lineStart(r.buf.Text(), r.buf.Caret())) })
	case tcell.KeyEnd:
		r.cmds.Navigate(completion.NavEnd, func() { r.buf.SetCaret(lineEnd(r.buf.Text(), r.buf.Caret())) })
	case tcell.KeyLeft:
		r.buf.MoveCaret(-1)
	case tcell.KeyRight:
		r.buf.MoveCaret(1)
	case tcell.KeyCtrlSpace:
		r.cmds.Invoke()
	case tcell.KeyCtrlN:
		r.cmds.CommitUniqueItem()
	case tcell.KeyCtrlT:
		r.cmds.InsertSnippet(nil)
	case tcell.KeyCtrlX:
		r.cmds.Cut(r.cutLine)
	case tcell.KeyCtrlV:
		r.cmds.Paste(r.insert(r.clipboard))
	case tcell.KeyCtrlA:
		r.cmds.SelectAll(nil)
	case tcell.KeyCtrlS:
		r.cmds.Save(r.OnSave)
	case tcell.KeyCtrlZ:
		r.cmds.Escape(nil)
		_ = r.buf.Undo()
	case tcell.KeyCtrlY:
		r.cmds.Escape(nil)
		_ = r.buf.Redo()
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return Quit
	default:
		return Ignored
	}
	return Handled
}

func (r *Router) insert(s string) func() {
	return func() {
		if s != "" {
			_, _ = r.buf.InsertAtCaret(s)
		}
	}
}

// cutLine moves the caret's line into the clipboard.
func (r *Router) cutLine() {
	s := r.buf.Text()
	caret := r.buf.Caret()
	start, end := lineStart(s, caret), lineEnd(s, caret)
	if end < len(s) {
		end++
	}
	r.clipboard = s[start:end]
	_, _ = r.buf.ApplyEdit(text.NewSpan(start, end), "")
}

// moveLine moves the caret up or down a line, keeping its column where
// the target line is long enough.
func (r *Router) moveLine(dir int) {
	s := r.buf.Text()
	caret := r.buf.Caret()
	start := lineStart(s, caret)
	col := caret - start

	var target int
	if dir < 0 {
		if start == 0 {
			return
		}
		target = lineStart(s, start-1)
	} else {
		end := lineEnd(s, caret)
		if end == len(s) {
			return
		}
		target = end + 1
	}
	r.buf.SetCaret(min(target+col, lineEnd(s, target)))
}

func lineStart(s string, pos int) int {
	return strings.LastIndexByte(s[:pos], '\n') + 1
}

func lineEnd(s string, pos int) int {
	if i := strings.IndexByte(s[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(s)
}
