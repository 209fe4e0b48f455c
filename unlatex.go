// Package unlatex parses and formats LaTeX documents with an embedded
// JavaScript document engine and hands back typed syntax trees.
package unlatex

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/spf13/afero"

	"unlatex/internal/ast"
	"unlatex/internal/config"
	"unlatex/internal/engine"
	"unlatex/internal/errs"
)

type (
	Error         = errs.Error
	Kind          = errs.Kind
	Options       = engine.Options
	FormatOptions = engine.FormatOptions
	Worker        = engine.Engine
	Pool          = engine.Pool
	Persistent    = engine.Persistent

	Node     = ast.Node
	Root     = ast.Root
	Info     = ast.Info
	Position = ast.Position
)

const (
	Allocation       = errs.Allocation
	Conversion       = errs.Conversion
	EngineException  = errs.EngineException
	ArgumentCount    = errs.ArgumentCount
	UnrelatedContext = errs.UnrelatedContext
	Io               = errs.Io
	Unknown          = errs.Unknown
)

// DefaultFormatOptions returns print width 80, spaces, tab width 2 and
// document-only formatting.
func DefaultFormatOptions() FormatOptions {
	return engine.DefaultFormatOptions()
}

// NewWorker returns an engine for the calling goroutine. It boots on first use.
func NewWorker(opts Options) *Worker {
	return engine.New(opts)
}

// NewPool returns a pool of at most size engines.
func NewPool(size int, opts Options) *Pool {
	return engine.NewPool(size, opts)
}

// LoadOptions builds engine options from the config file at configPath and
// the environment, reading the bundle from fs.
func LoadOptions(fs afero.Fs, configPath string) (Options, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return Options{}, nil, errs.Wrap(errs.Io, "load config", err)
	}
	opts, err := OptionsFromConfig(fs, cfg)
	return opts, cfg, err
}

// OptionsFromConfig reads the configured bundle from fs.
func OptionsFromConfig(fs afero.Fs, cfg *config.Config) (Options, error) {
	bundle, err := engine.LoadBundle(fs, cfg.Engine.Bundle)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Bundle:           bundle,
		MaxCallStackSize: cfg.Engine.MaxCallStackSize,
		DisabledGlobals:  cfg.Engine.DisabledGlobals,
	}, nil
}

var defaults struct {
	mu   sync.Mutex
	opts *Options
	pool *Pool
	err  error
}

// SetDefaultOptions replaces the options behind the package-level functions.
// Engines already created keep running with the old options.
func SetDefaultOptions(opts Options) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	defaults.opts = &opts
	defaults.pool = nil
	defaults.err = nil
}

func defaultPool() (*Pool, error) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	if defaults.pool != nil || defaults.err != nil {
		return defaults.pool, defaults.err
	}
	if defaults.opts == nil {
		opts, _, err := LoadOptions(afero.NewOsFs(), config.DefaultPath)
		if err != nil {
			slog.Default().Error("default engine options unavailable", "err", err)
			defaults.err = err
			return nil, err
		}
		defaults.opts = &opts
	}
	defaults.pool = engine.NewPool(runtime.GOMAXPROCS(0), *defaults.opts)
	return defaults.pool, nil
}

func withDefault(fn func(*engine.Engine) error) error {
	pool, err := defaultPool()
	if err != nil {
		return err
	}
	return pool.Do(fn)
}

// Parse returns the typed document tree for src.
func Parse(src string) (*Root, error) {
	var root *Root
	err := withDefault(func(e *engine.Engine) (err error) {
		root, err = e.Parse(src)
		return err
	})
	return root, err
}

// ParseToIntermediate returns the engine's JSON serialisation of the parse
// result, unchanged.
func ParseToIntermediate(src string) (string, error) {
	var out string
	err := withDefault(func(e *engine.Engine) (err error) {
		out, err = e.ParseToIntermediate(src)
		return err
	})
	return out, err
}

// Format pretty-prints src with DefaultFormatOptions.
func Format(src string) (string, error) {
	return FormatWithOptions(src, DefaultFormatOptions())
}

// FormatWithOptions pretty-prints src.
func FormatWithOptions(src string, opts FormatOptions) (string, error) {
	var out string
	err := withDefault(func(e *engine.Engine) (err error) {
		out, err = e.Format(src, opts)
		return err
	})
	return out, err
}
