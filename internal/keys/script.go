package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ErrBadScript is returned for an unparsable key script.
var ErrBadScript = errors.New("keys: invalid script")

var named = map[string]tcell.Key{
	"tab":     tcell.KeyTab,
	"enter":   tcell.KeyEnter,
	"cr":      tcell.KeyEnter,
	"esc":     tcell.KeyEscape,
	"bs":      tcell.KeyBackspace2,
	"del":     tcell.KeyDelete,
	"up":      tcell.KeyUp,
	"down":    tcell.KeyDown,
	"pgup":    tcell.KeyPgUp,
	"pgdn":    tcell.KeyPgDn,
	"home":    tcell.KeyHome,
	"end":     tcell.KeyEnd,
	"left":    tcell.KeyLeft,
	"right":   tcell.KeyRight,
	"c-space": tcell.KeyCtrlSpace,
	"c-n":     tcell.KeyCtrlN,
	"c-t":     tcell.KeyCtrlT,
	"c-x":     tcell.KeyCtrlX,
	"c-v":     tcell.KeyCtrlV,
	"c-a":     tcell.KeyCtrlA,
	"c-s":     tcell.KeyCtrlS,
	"c-z":     tcell.KeyCtrlZ,
	"c-y":     tcell.KeyCtrlY,
}

// ParseScript turns a key script into events. Plain characters type
// themselves; special keys are written in angle brackets, such as <Tab>,
// <C-Space>, <M-1> or <lt> for a literal '<'. Names are case-insensitive.
func ParseScript(script string) ([]*tcell.EventKey, error) {
	var out []*tcell.EventKey
	rest := script
	for rest != "" {
		if rest[0] != '<' {
			r := []rune(rest)[0]
			out = append(out, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			rest = rest[len(string(r)):]
			continue
		}
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated %q", ErrBadScript, rest)
		}
		name := strings.ToLower(rest[1:end])
		rest = rest[end+1:]

		switch {
		case name == "lt":
			out = append(out, tcell.NewEventKey(tcell.KeyRune, '<', tcell.ModNone))
		case strings.HasPrefix(name, "m-") && len([]rune(name)) == 3:
			out = append(out, tcell.NewEventKey(tcell.KeyRune, []rune(name)[2], tcell.ModAlt))
		default:
			k, ok := named[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown key <%s>", ErrBadScript, name)
			}
			out = append(out, tcell.NewEventKey(k, 0, tcell.ModNone))
		}
	}
	return out, nil
}
