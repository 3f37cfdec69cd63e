package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dshills/popcomplete/internal/keys"
	textpresenter "github.com/dshills/popcomplete/internal/presenter/text"
)

// stepTimeout bounds how long one replayed key may wait for providers.
const stepTimeout = 5 * time.Second

// Replay feeds the keys in script through the controller, one at a time.
// After each key it writes the buffer, with the caret shown as "|", and
// the popup to w. It ends with the recently committed items.
func (app *Application) Replay(ctx context.Context, script string, w io.Writer) error {
	events, err := keys.ParseScript(script)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return ErrEmptyScript
	}

	popup := textpresenter.New()
	ctrl, err := app.newController(popup)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	popup.SetEvents(ctrl)

	router := keys.NewRouter(ctrl, app.buf, nil)
	router.OnSave = func() { _ = app.save() }

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := router.Handle(ev)
		if res == keys.Quit {
			break
		}
		stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		err := ctrl.Sync(stepCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("key %d (%s): %w", i+1, ev.Name(), err)
		}

		fmt.Fprintf(w, "%3d %-12s %q\n", i+1, ev.Name(), withCaret(app.buf.Text(), app.buf.Caret()))
		if res == keys.Ignored {
			fmt.Fprintln(w, "    (unbound)")
		}
		if out := popup.Render(); out != "" {
			for _, line := range strings.Split(out, "\n") {
				fmt.Fprintln(w, "    "+line)
			}
		}
	}
	if recent := ctrl.Recent(); len(recent) > 0 {
		fmt.Fprintf(w, "recent: %s\n", strings.Join(recent, ", "))
	}
	return nil
}

func withCaret(s string, caret int) string {
	caret = max(0, min(caret, len(s)))
	return s[:caret] + "|" + s[caret:]
}
