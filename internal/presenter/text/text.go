// Package text renders the completion popup as styled text.
package text

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/presenter"
)

// Row markers.
const (
	markHard = "▸"
	markSoft = "▹"
	markNone = " "
)

// Styles are the lipgloss styles of a rendering.
type Styles struct {
	Frame    lipgloss.Style
	Header   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Soft     lipgloss.Style
	Builder  lipgloss.Style
	Kind     lipgloss.Style
	Detail   lipgloss.Style
	ChipOn   lipgloss.Style
	ChipOff  lipgloss.Style
}

// DefaultStyles returns styles drawn with r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Frame: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5c6370")),
		Header:   r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		Item:     r.NewStyle(),
		Selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3b82f6")),
		Soft:     r.NewStyle().Underline(true),
		Builder:  r.NewStyle().Italic(true),
		Kind:     r.NewStyle().Foreground(lipgloss.Color("#c084fc")),
		Detail:   r.NewStyle().Faint(true),
		ChipOn:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#a3e635")),
		ChipOff:  r.NewStyle().Faint(true),
	}
}

// Presenter is a completion.Presenter that keeps the latest popup for
// Render. Navigation works as in the interactive popup, so a replay can
// drive selection through it.
type Presenter struct {
	mu     sync.Mutex
	list   *presenter.List
	styles Styles
	events completion.PresenterEvents
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithStyles sets the styles.
func WithStyles(s Styles) Option {
	return func(p *Presenter) {
		p.styles = s
	}
}

// WithMaxRows sets how many rows render before the list scrolls.
func WithMaxRows(n int) Option {
	return func(p *Presenter) {
		p.list = presenter.NewList(n)
	}
}

// New creates a hidden presenter.
func New(opts ...Option) *Presenter {
	p := &Presenter{
		list:   presenter.NewList(presenter.DefaultMaxRows),
		styles: DefaultStyles(lipgloss.DefaultRenderer()),
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

// Present records v.
func (p *Presenter) Present(v completion.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.list.Set(v)
}

// Dismiss hides the popup.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.list.Clear()
}

// Navigate moves the highlight and reports the selection.
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

// Visible reports whether the popup is showing.
func (p *Presenter) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Visible()
}

// Render returns the popup, or "" when hidden.
func (p *Presenter) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.list.Visible() {
		return ""
	}
	view := p.list.View()
	st := p.styles

	lines := []string{st.Header.Render(header(view, len(p.list.Rows())))}
	start, end := p.list.Window()
	sel, _ := p.list.Selected()
	for i, it := range p.list.Rows()[start:end] {
		lines = append(lines, p.renderRow(it, start+i == sel, view.SoftSelection))
	}
	if end-start < len(p.list.Rows()) {
		lines = append(lines, st.Header.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(p.list.Rows()))))
	}
	if cats := p.list.Categories(); len(cats) > 1 {
		chips := make([]string, len(cats))
		for i, c := range cats {
			if view.FilterState[c] {
				chips[i] = st.ChipOn.Render("[x] " + c)
			} else {
				chips[i] = st.ChipOff.Render("[ ] " + c)
			}
		}
		lines = append(lines, strings.Join(chips, "  "))
	}
	return st.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func header(v completion.View, rows int) string {
	return fmt.Sprintf("%q %d items", v.FilterText, rows)
}

func (p *Presenter) renderRow(it *completion.Item, selected, soft bool) string {
	st := p.styles
	mark := markNone
	label := st.Item
	if p.list.IsBuilder(it) {
		label = st.Builder
	}
	if selected {
		mark = markHard
		label = st.Selected
		if soft {
			mark = markSoft
			label = st.Soft
		}
	}

	parts := []string{
		mark,
		st.Kind.Render(fmt.Sprintf("%-3s", presenter.KindIcon(it.Kind))),
		label.Render(it.DisplayText),
	}
	if it.Detail != "" {
		parts = append(parts, st.Detail.Render(it.Detail))
	}
	return strings.Join(parts, " ")
}
