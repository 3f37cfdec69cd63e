package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/popcomplete/internal/config"
	"github.com/dshills/popcomplete/internal/keys"
	"github.com/dshills/popcomplete/internal/presenter/term"
)

// Run opens the terminal and edits the buffer until the user quits or
// ctx is done.
func (app *Application) Run(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	return app.loop(ctx, screen)
}

// loop runs the event loop on an initialized screen.
func (app *Application) loop(ctx context.Context, screen tcell.Screen) error {
	view := newEditorView(screen, app.buf, app.opts.File)
	popup := term.New(screen, view.anchor, term.WithLogger(app.logger))
	ctrl, err := app.newController(popup)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	popup.SetEvents(ctrl)

	router := keys.NewRouter(ctrl, app.buf, popup)
	router.OnSave = func() { _ = app.save() }

	reloads := make(chan *config.Config, 1)
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath, func(cfg *config.Config, err error) {
			if err != nil {
				app.setStatus("config reload failed")
				return
			}
			select {
			case reloads <- cfg:
			default:
			}
		}, config.WithWatcherLogger(app.logger), config.WithEnvOverrides(config.EnvPrefix))
		if err != nil {
			app.logger.Warn("config watch disabled", "err", err)
		} else {
			defer w.Close()
		}
	}

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	app.logger.Info("editor started")
	for {
		view.draw(app.Status())
		popup.Draw()
		screen.Show()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if router.Handle(ev) == keys.Quit {
					app.logger.Info("editor closed")
					return nil
				}
			case *tcell.EventMouse:
				popup.HandleMouse(ev)
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ctrl.Wake():
			ctrl.Pump()
		case cfg := <-reloads:
			app.cfg.Completion = cfg.Completion
			ctrl.SetOptions(cfg.Completion.Options())
			app.setStatus("config reloaded")
		}
	}
}
