package term

import "github.com/gdamore/tcell/v2"

// Styles are the popup's cell styles.
type Styles struct {
	Item         tcell.Style
	Selected     tcell.Style
	SoftSelected tcell.Style
	Builder      tcell.Style
	Kind         tcell.Style
	Detail       tcell.Style
	Chip         tcell.Style
	ChipOn       tcell.Style
}

// DefaultStyles returns a dark popup theme.
func DefaultStyles() Styles {
	base := tcell.StyleDefault.
		Background(tcell.NewRGBColor(0x2b, 0x2d, 0x3a)).
		Foreground(tcell.NewRGBColor(0xd8, 0xde, 0xe9))
	return Styles{
		Item:         base,
		Selected:     base.Background(tcell.NewRGBColor(0x3b, 0x82, 0xf6)).Foreground(tcell.ColorWhite).Bold(true),
		SoftSelected: base.Underline(true),
		Builder:      base.Italic(true),
		Kind:         base.Foreground(tcell.NewRGBColor(0xc0, 0x84, 0xfc)),
		Detail:       base.Foreground(tcell.NewRGBColor(0x7f, 0x84, 0x9c)),
		Chip:         base.Foreground(tcell.NewRGBColor(0x7f, 0x84, 0x9c)),
		ChipOn:       base.Foreground(tcell.NewRGBColor(0xa3, 0xe6, 0x35)).Bold(true),
	}
}
