// Package term draws the completion popup on a tcell screen.
package term

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/presenter"
)

// DefaultMaxWidth caps the popup width in cells.
const DefaultMaxWidth = 48

// Anchor maps a buffer offset to the screen cell it is drawn at.
type Anchor func(offset int) (x, y int, ok bool)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type chip struct {
	category string
	x0, x1   int
}

// Presenter is a completion.Presenter drawing onto a tcell screen. Present,
// Navigate and Dismiss only update state; Draw paints it, so the caller can
// draw the popup over its own content.
type Presenter struct {
	mu       sync.Mutex
	screen   tcell.Screen
	anchor   Anchor
	events   completion.PresenterEvents
	list     *presenter.List
	styles   Styles
	maxWidth int
	logger   *log.Logger

	// Last drawn geometry for mouse hit testing.
	rows   rect
	footer int
	chips  []chip
	drawn  bool
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithStyles sets the popup styles.
func WithStyles(s Styles) Option {
	return func(p *Presenter) {
		p.styles = s
	}
}

// WithMaxRows sets how many rows show before scrolling.
func WithMaxRows(n int) Option {
	return func(p *Presenter) {
		p.list = presenter.NewList(n)
	}
}

// WithMaxWidth caps the popup width.
func WithMaxWidth(n int) Option {
	return func(p *Presenter) {
		if n > 0 {
			p.maxWidth = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Presenter) {
		p.logger = logging.Component(l, "popup")
	}
}

// New creates a presenter for screen. anchor places the popup.
func New(screen tcell.Screen, anchor Anchor, opts ...Option) *Presenter {
	p := &Presenter{
		screen:   screen,
		anchor:   anchor,
		list:     presenter.NewList(presenter.DefaultMaxRows),
		styles:   DefaultStyles(),
		maxWidth: DefaultMaxWidth,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetEvents connects the presenter to the controller it reports to.
func (p *Presenter) SetEvents(ev completion.PresenterEvents) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = ev
}

// Present shows v.
func (p *Presenter) Present(v completion.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.list.Set(v)
	p.logger.Debug("present", "items", len(v.Items), "filter", v.FilterText)
}

// Dismiss hides the popup.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.list.Clear()
	p.drawn = false
}

// Visible reports whether the popup is showing.
func (p *Presenter) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Visible()
}

// Navigate moves the highlight and tells the controller about the new
// selection.
func (p *Presenter) Navigate(key completion.NavKey) bool {
	p.mu.Lock()
	item, ok := p.list.Move(key)
	ev := p.events
	p.mu.Unlock()

	if ok && ev != nil {
		ev.SelectItem(item)
	}
	return ok
}

// ToggleCategory flips the n-th filter category, counting from zero. It
// reports false when there is no such category.
func (p *Presenter) ToggleCategory(n int) bool {
	p.mu.Lock()
	cats := p.list.Categories()
	if !p.list.Visible() || n < 0 || n >= len(cats) {
		p.mu.Unlock()
		return false
	}
	fs := p.list.Toggle(cats[n])
	ev := p.events
	p.mu.Unlock()

	if ev != nil {
		ev.SetFilterState(fs)
	}
	return true
}

// HandleMouse reacts to clicks and wheel events over the popup. Clicking
// a row commits it; clicking a category chip toggles it. It reports
// whether the event was consumed.
func (p *Presenter) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	btn := ev.Buttons()

	p.mu.Lock()
	if !p.drawn || !p.list.Visible() {
		p.mu.Unlock()
		return false
	}
	events := p.events

	switch {
	case p.rows.contains(x, y):
		switch {
		case btn&tcell.WheelUp != 0:
			p.list.Scroll(-1)
			p.mu.Unlock()
			return true
		case btn&tcell.WheelDown != 0:
			p.list.Scroll(1)
			p.mu.Unlock()
			return true
		case btn&tcell.Button1 != 0:
			start, _ := p.list.Window()
			item, ok := p.list.Pick(start + y - p.rows.y)
			p.mu.Unlock()
			if ok && events != nil {
				events.CommitItem(item)
			}
			return ok
		}
	case y == p.footer && btn&tcell.Button1 != 0:
		for _, c := range p.chips {
			if x >= c.x0 && x < c.x1 {
				fs := p.list.Toggle(c.category)
				p.mu.Unlock()
				if events != nil {
					events.SetFilterState(fs)
				}
				return true
			}
		}
	}
	p.mu.Unlock()
	return false
}

// Draw paints the popup. The caller shows the screen afterwards.
func (p *Presenter) Draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.drawn = false
	if !p.list.Visible() || p.anchor == nil {
		return
	}
	view := p.list.View()
	ax, ay, ok := p.anchor(view.Span.Start)
	if !ok {
		return
	}

	start, end := p.list.Window()
	rows := p.list.Rows()[start:end]
	cats := p.list.Categories()
	showFooter := len(cats) > 1
	height := len(rows)
	if showFooter {
		height++
	}
	if height == 0 {
		return
	}

	width := 0
	for _, it := range rows {
		width = max(width, rowWidth(it))
	}
	if showFooter {
		width = max(width, footerWidth(cats))
	}
	sw, sh := p.screen.Size()
	width = min(width, p.maxWidth, sw)

	x, y := place(ax, ay, width, height, sw, sh)
	p.rows = rect{x: x, y: y, w: width, h: len(rows)}
	sel, _ := p.list.Selected()
	for i, it := range rows {
		p.drawRow(x, y+i, width, it, start+i == sel, view.SoftSelection)
	}
	p.chips = p.chips[:0]
	p.footer = -1
	if showFooter {
		p.footer = y + len(rows)
		p.drawFooter(x, p.footer, width, cats, view.FilterState)
	}
	p.drawn = true
}

// place puts the popup below the anchor row when it fits, otherwise above
// it, and keeps it on screen.
func place(ax, ay, width, height, sw, sh int) (int, int) {
	below := max(sh-(ay+1), 0)
	above := max(ay, 0)
	y := ay + 1
	if height > below && above > below {
		y = ay - height
	}
	y = max(0, min(y, sh-height))
	x := max(0, min(ax, sw-width))
	return x, y
}

func rowWidth(it *completion.Item) int {
	w := 1 + runewidth.StringWidth(presenter.KindIcon(it.Kind)) + 1 + runewidth.StringWidth(it.DisplayText) + 1
	if it.Detail != "" {
		w += 1 + runewidth.StringWidth(it.Detail) + 1
	}
	return w
}

func footerWidth(cats []string) int {
	w := 1
	for _, c := range cats {
		w += runewidth.StringWidth(c) + 3
	}
	return w
}

func (p *Presenter) drawRow(x, y, width int, it *completion.Item, selected, soft bool) {
	base := p.styles.Item
	if p.list.IsBuilder(it) {
		base = p.styles.Builder
	}
	kind := p.styles.Kind
	detail := p.styles.Detail
	if selected {
		base = p.styles.Selected
		if soft {
			base = p.styles.SoftSelected
		}
		kind, detail = base, base
	}

	for i := 0; i < width; i++ {
		p.screen.SetContent(x+i, y, ' ', nil, base)
	}
	limit := x + width
	cx := p.puts(x+1, y, limit, presenter.KindIcon(it.Kind), kind)
	cx = p.puts(cx+1, y, limit, it.DisplayText, base)
	if it.Detail != "" {
		p.puts(cx+2, y, limit, it.Detail, detail)
	}
}

func (p *Presenter) drawFooter(x, y, width int, cats []string, fs completion.FilterState) {
	for i := 0; i < width; i++ {
		p.screen.SetContent(x+i, y, ' ', nil, p.styles.Item)
	}
	limit := x + width
	cx := x + 1
	for _, c := range cats {
		style := p.styles.Chip
		if fs[c] {
			style = p.styles.ChipOn
		}
		x0 := cx
		cx = p.puts(cx, y, limit, "["+c+"]", style)
		p.chips = append(p.chips, chip{category: c, x0: x0, x1: cx})
		cx++
	}
}

// puts draws s from x, clipped at limit, and returns the next column.
func (p *Presenter) puts(x, y, limit int, s string, style tcell.Style) int {
	if x >= limit {
		return x
	}
	for _, r := range runewidth.Truncate(s, limit-x, "…") {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		p.screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}
