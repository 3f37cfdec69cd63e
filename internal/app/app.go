// Package app assembles popcomplete: configuration, logging, completion
// providers and the controller, driven either by a terminal screen or by
// a replayed key script.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/completion/controller"
	"github.com/dshills/popcomplete/internal/config"
	"github.com/dshills/popcomplete/internal/event"
	"github.com/dshills/popcomplete/internal/text"
)

// Application owns everything one editing session needs.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *log.Logger
	bus    *event.Bus
	buf    *text.Buffer

	provider completion.Provider
	closers  []io.Closer

	mu     sync.Mutex
	status string
}

// New loads configuration and builds the providers. Call Close when done.
func New(opts Options) (*Application, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	app := &Application{opts: opts, cfg: cfg}
	if err := app.initLogger(); err != nil {
		return nil, err
	}

	content := opts.Text
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		switch {
		case err == nil:
			content = string(data)
		case errors.Is(err, os.ErrNotExist):
			content = ""
		default:
			app.Close()
			return nil, fmt.Errorf("reading %s: %w", opts.File, err)
		}
	}
	app.buf = text.NewBuffer(content, text.WithCaret(len(content)))

	app.bus = event.NewBus(event.WithLogger(app.logger))
	if _, err := app.bus.Subscribe("completion.**", app.trackStatus); err != nil {
		app.Close()
		return nil, err
	}

	if err := app.initProviders(); err != nil {
		app.Close()
		return nil, err
	}
	app.logger.Debug("application ready", "file", opts.File, "config", opts.ConfigPath)
	return app, nil
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Buffer returns the edited buffer.
func (app *Application) Buffer() *text.Buffer {
	return app.buf
}

// Logger returns the application logger.
func (app *Application) Logger() *log.Logger {
	return app.logger
}

// Status returns the latest completion status line.
func (app *Application) Status() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.status
}

func (app *Application) setStatus(s string) {
	app.mu.Lock()
	app.status = s
	app.mu.Unlock()
}

// Close releases providers and the log file. It is safe to call twice.
func (app *Application) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

// newController builds a controller over the buffer for presenter.
func (app *Application) newController(p completion.Presenter) (*controller.Controller, error) {
	return controller.New(controller.Config{
		View:      app.buf,
		Provider:  app.provider,
		Presenter: p,
		Formatter: trailingSpaceFormatter{},
		Bus:       app.bus,
		Logger:    app.logger,
		Options:   app.cfg.Completion.Options(),
	})
}

// trackStatus turns completion events into the status line.
func (app *Application) trackStatus(_ context.Context, env event.Envelope) error {
	switch env.Topic {
	case event.TopicSessionStarted:
		if p, ok := event.PayloadAs[event.SessionStarted](env); ok {
			app.setStatus("completing (" + p.Trigger + ")")
		}
	case event.TopicModelUpdated:
		if p, ok := event.PayloadAs[event.ModelUpdated](env); ok {
			s := fmt.Sprintf("%d/%d items", p.Visible, p.Total)
			if p.Selected != "" {
				s += " · " + p.Selected
			}
			if p.Unique {
				s += " (unique)"
			}
			app.setStatus(s)
		}
	case event.TopicItemCommitted:
		if p, ok := event.PayloadAs[event.ItemCommitted](env); ok {
			app.setStatus("committed " + p.DisplayText)
		}
	case event.TopicSessionDismissed:
		if p, ok := event.PayloadAs[event.SessionDismissed](env); ok && p.Reason != "committed" {
			app.setStatus("")
		}
	}
	return nil
}
