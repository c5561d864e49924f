// Package cli implements the autocomplete commands. Each command takes a
// params struct so cmd/autocomplete stays a thin flag-parsing layer.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/autocomplete/internal/cache"
	"github.com/NikitaCOEUR/autocomplete/internal/config"
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/engine"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
	"github.com/NikitaCOEUR/autocomplete/internal/stores"
)

// CommonParams holds what every command needs
type CommonParams struct {
	LogLevel   string
	ConfigPath string
	// CacheDir holds packed dictionaries; caching is off when empty
	CacheDir string
	// Out receives command output; os.Stdout when nil
	Out io.Writer
}

func (p CommonParams) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p CommonParams) logger() *logger.Logger {
	return logger.New(p.LogLevel, os.Stderr)
}

// components holds the initialized pieces a command works with
type components struct {
	log    *logger.Logger
	loader *config.Loader
	config *config.Config
	// cache is nil when caching is off
	cache *cache.Cache
}

// initializeComponents resolves the configuration
func initializeComponents(p CommonParams) (*components, error) {
	log := p.logger()
	loader := config.New(log)

	cfg, err := loader.Resolve(p.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.Debug().
		Str("source", cfg.Source).
		Int("stores", len(cfg.Stores)).
		Msg("Configuration loaded")

	comps := &components{log: log, loader: loader, config: cfg}
	if p.CacheDir != "" {
		c, err := cache.New(p.CacheDir, log)
		if err != nil {
			// A broken cache only costs speed
			log.Warn().Str("dir", p.CacheDir).Err(err).Msg("Dictionary cache unavailable")
		} else {
			comps.cache = c
		}
	}

	return comps, nil
}

// storeOptions routes dictionary loading through the cache when there is one
func (c *components) storeOptions() []stores.Option {
	if c.cache == nil {
		return nil
	}
	return []stores.Option{stores.WithDictionaryLoader(c.cache.LoadDictionary)}
}

// newEngine creates an engine with every configured store registered
func (c *components) newEngine() (*engine.Engine, error) {
	e := engine.New(
		engine.WithMaxVisibleOptions(c.config.Engine.MaxVisibleOptions),
		engine.WithLogger(c.log),
	)
	if err := stores.Register(e, c.config, c.log, c.storeOptions()...); err != nil {
		return nil, err
	}
	return e, nil
}

// ErrorCode returns the code of a typed error anywhere in err's chain
func ErrorCode(err error) (string, bool) {
	var typed derrors.AutocompleteError
	if errors.As(err, &typed) {
		return typed.Code(), true
	}
	return "", false
}
