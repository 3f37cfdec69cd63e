package app

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/popcomplete/internal/completion"
	"github.com/dshills/popcomplete/internal/config"
	"github.com/dshills/popcomplete/internal/logging"
	"github.com/dshills/popcomplete/internal/provider/dictionary"
	"github.com/dshills/popcomplete/internal/provider/lua"
	"github.com/dshills/popcomplete/internal/provider/multi"
	"github.com/dshills/popcomplete/internal/provider/words"
)

// loadConfig reads the config file, applies environment overrides and the
// command-line log level, then validates the result.
func loadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(config.EnvPrefix); err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	cfg.Providers.Dictionaries = append(cfg.Providers.Dictionaries, opts.Dictionaries...)
	cfg.Providers.Scripts = append(cfg.Providers.Scripts, opts.Scripts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (app *Application) initLogger() error {
	lo := app.cfg.Log.LoggerOptions()
	switch {
	case app.cfg.Log.File != "":
		f, err := os.OpenFile(app.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		app.closers = append(app.closers, f)
		lo.Output = f
	case app.opts.LogOutput != nil:
		lo.Output = app.opts.LogOutput
	default:
		lo.Output = io.Discard
	}
	app.logger = logging.NewWithOptions(lo)
	return nil
}

// initProviders builds every configured source. Several sources are merged
// behind one provider.
func (app *Application) initProviders() error {
	pc := app.cfg.Providers
	var sources []completion.Provider

	if pc.Words {
		sources = append(sources, words.New(
			words.WithMinLength(pc.MinWordLength),
			words.WithLogger(app.logger),
		))
	}
	if len(pc.Dictionaries) > 0 {
		d, err := dictionary.Open(pc.Dictionaries, dictionary.WithLogger(app.logger))
		if err != nil {
			return fmt.Errorf("loading dictionaries: %w", err)
		}
		app.logger.Info("dictionaries loaded", "files", len(pc.Dictionaries), "words", d.Len())
		sources = append(sources, d)
	}
	for _, path := range pc.Scripts {
		p, err := lua.Open(path, lua.WithTimeout(pc.Timeout.Std()), lua.WithLogger(app.logger))
		if err != nil {
			return fmt.Errorf("loading script %s: %w", path, err)
		}
		app.closers = append(app.closers, p)
		sources = append(sources, p)
	}

	switch len(sources) {
	case 0:
		return ErrNoProviders
	case 1:
		app.provider = sources[0]
	default:
		app.provider = multi.New(sources, multi.WithTimeout(pc.Timeout.Std()), multi.WithLogger(app.logger))
	}
	return nil
}
