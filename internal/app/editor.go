package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/popcomplete/internal/text"
)

const tabWidth = 4

var (
	textStyle   = tcell.StyleDefault
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// editorView draws the buffer and a status line, scrolled to keep the
// caret visible.
type editorView struct {
	screen tcell.Screen
	buf    *text.Buffer
	name   string
	top    int
}

func newEditorView(screen tcell.Screen, buf *text.Buffer, name string) *editorView {
	if name == "" {
		name = "[scratch]"
	}
	return &editorView{screen: screen, buf: buf, name: name}
}

// textHeight is the number of rows available to the buffer.
func (v *editorView) textHeight() int {
	_, h := v.screen.Size()
	return max(h-1, 1)
}

// anchor maps a buffer offset to screen cells for the popup.
func (v *editorView) anchor(offset int) (x, y int, ok bool) {
	line, col := position(v.buf.Text(), offset)
	y = line - v.top
	if y < 0 || y >= v.textHeight() {
		return 0, 0, false
	}
	return col, y, true
}

func (v *editorView) scrollToCaret() {
	line, _ := position(v.buf.Text(), v.buf.Caret())
	h := v.textHeight()
	switch {
	case line < v.top:
		v.top = line
	case line >= v.top+h:
		v.top = line - h + 1
	}
}

// draw paints the buffer, the caret and the status line.
func (v *editorView) draw(status string) {
	v.screen.Clear()
	v.scrollToCaret()

	s := v.buf.Text()
	lines := strings.Split(s, "\n")
	h := v.textHeight()
	for y := 0; y < h && v.top+y < len(lines); y++ {
		drawLine(v.screen, y, lines[v.top+y])
	}

	line, col := position(s, v.buf.Caret())
	v.screen.ShowCursor(col, line-v.top)

	w, sh := v.screen.Size()
	left := fmt.Sprintf(" %s  Ln %d, Col %d", v.name, line+1, col+1)
	row := left + strings.Repeat(" ", max(w-runewidth.StringWidth(left)-runewidth.StringWidth(status)-1, 1)) + status + " "
	x := 0
	for _, r := range runewidth.Truncate(row, w, "") {
		v.screen.SetContent(x, sh-1, r, nil, statusStyle)
		x += runewidth.RuneWidth(r)
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, sh-1, ' ', nil, statusStyle)
	}
}

func drawLine(screen tcell.Screen, y int, line string) {
	w, _ := screen.Size()
	x := 0
	for _, r := range line {
		if x >= w {
			return
		}
		if r == '\t' {
			x += tabWidth - x%tabWidth
			continue
		}
		screen.SetContent(x, y, r, nil, textStyle)
		x += runewidth.RuneWidth(r)
	}
}

// position returns the line and display column of offset in s.
func position(s string, offset int) (line, col int) {
	offset = max(0, min(offset, len(s)))
	prefix := s[:offset]
	line = strings.Count(prefix, "\n")
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		prefix = prefix[i+1:]
	}
	for _, r := range prefix {
		if r == '\t' {
			col += tabWidth - col%tabWidth
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return line, col
}

// save writes the buffer back to its file.
func (app *Application) save() error {
	if app.opts.File == "" {
		app.setStatus("no file to save")
		return nil
	}
	if err := os.WriteFile(app.opts.File, []byte(app.buf.Text()), 0o644); err != nil {
		app.logger.Error("save failed", "file", app.opts.File, "err", err)
		app.setStatus("save failed")
		return err
	}
	app.logger.Info("saved", "file", app.opts.File)
	app.setStatus("saved " + app.opts.File)
	return nil
}
