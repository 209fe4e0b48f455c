package engine

import (
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"unlatex/internal/ast"
	"unlatex/internal/errs"
)

//go:embed js/prelude.js
var preludeJS string

//go:embed js/postlude.js
var postludeJS string

//go:embed js/entry.js
var entryJS string

// DefaultMaxCallStackSize bounds the JavaScript call depth of an engine.
const DefaultMaxCallStackSize = 8192

// DefaultBundleName is the script name reported in engine stack traces.
const DefaultBundleName = "unlatex.umd.js"

// DefaultDisabledGlobals are removed from every runtime before the bundle
// runs. What is left is the base language plus Date, RegExp, JSON, Map/Set
// and Promise.
var DefaultDisabledGlobals = []string{
	"Proxy",
	"WeakRef",
	"FinalizationRegistry",
	"ArrayBuffer",
	"SharedArrayBuffer",
	"DataView",
	"Atomics",
	"Int8Array",
	"Uint8Array",
	"Uint8ClampedArray",
	"Int16Array",
	"Uint16Array",
	"Int32Array",
	"Uint32Array",
	"Float32Array",
	"Float64Array",
	"BigInt64Array",
	"BigUint64Array",
}

// Options configures how an engine boots.
type Options struct {
	// Bundle is the document engine script (UMD build exposing `unlatex`).
	Bundle []byte

	// BundleName is used as the script name in stack traces.
	BundleName string

	// MaxCallStackSize is the call-depth ceiling; zero means the default.
	MaxCallStackSize int

	// DisabledGlobals replaces DefaultDisabledGlobals when non-nil.
	DisabledGlobals []string

	Logger *slog.Logger
}

// Entry is a global callable of the engine and the number of positional
// arguments it accepts.
type Entry struct {
	Name    string
	MinArgs int
	MaxArgs int
}

var (
	EntryParse  = Entry{Name: "latexParse", MinArgs: 1, MaxArgs: 1}
	EntryJParse = Entry{Name: "latexJParse", MinArgs: 1, MaxArgs: 1}
	EntryFormat = Entry{Name: "latexFormat", MinArgs: 5, MaxArgs: 5}
)

// FormatOptions are the layout knobs passed to the formatter.
type FormatOptions struct {
	PrintWidth   int
	UseTabs      bool
	TabWidth     int
	DocumentOnly bool
}

// DefaultFormatOptions returns print width 80, spaces, tab width 2 and
// document-only formatting.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{PrintWidth: 80, UseTabs: false, TabWidth: 2, DocumentOnly: true}
}

// Engine owns one JavaScript runtime with the document engine loaded. It is
// created cheaply and boots on first use. An Engine must only be used by one
// goroutine at a time; hand engines between goroutines with a Pool.
type Engine struct {
	id   string
	opts Options
	log  *slog.Logger

	booted  bool
	vm      *goja.Runtime
	bootErr error
}

// New returns an engine that has not booted yet.
func New(opts Options) *Engine {
	if opts.MaxCallStackSize <= 0 {
		opts.MaxCallStackSize = DefaultMaxCallStackSize
	}
	if opts.BundleName == "" {
		opts.BundleName = DefaultBundleName
	}
	if opts.DisabledGlobals == nil {
		opts.DisabledGlobals = DefaultDisabledGlobals
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Engine{
		id:   id,
		opts: opts,
		log:  logger.With("engine", id),
	}
}

// ID identifies the engine instance.
func (e *Engine) ID() string {
	return e.id
}

// runtime boots the engine once. A failed boot is remembered and the same
// error is returned from then on.
func (e *Engine) runtime() (*goja.Runtime, error) {
	if !e.booted {
		e.booted = true
		start := time.Now()
		e.vm, e.bootErr = e.boot()
		if e.bootErr != nil {
			e.vm = nil
			e.log.Error("engine bootstrap failed", "err", e.bootErr)
		} else {
			e.log.Debug("engine booted", "elapsed", time.Since(start))
		}
	}
	return e.vm, e.bootErr
}

func (e *Engine) boot() (vm *goja.Runtime, err error) {
	defer func() {
		if r := recover(); r != nil {
			vm = nil
			err = errs.Wrap(errs.Allocation, "engine construction failed", fmt.Errorf("%v", r))
		}
	}()

	vm = goja.New()
	vm.SetMaxCallStackSize(e.opts.MaxCallStackSize)

	global := vm.GlobalObject()
	for _, name := range e.opts.DisabledGlobals {
		if err := global.Delete(name); err != nil {
			return nil, fromEngine(err)
		}
	}

	scripts := []struct{ name, src string }{
		{"prelude.js", preludeJS},
		{e.opts.BundleName, string(e.opts.Bundle)},
		{"postlude.js", postludeJS},
		{"entry.js", entryJS},
	}
	for _, s := range scripts {
		if _, err := vm.RunScript(s.name, s.src); err != nil {
			return nil, fromEngine(err)
		}
	}
	return vm, nil
}

// Call invokes a global callable of the engine with positional arguments.
func (e *Engine) Call(entry Entry, args ...any) (goja.Value, error) {
	if len(args) < entry.MinArgs || len(args) > entry.MaxArgs {
		return nil, errs.NewArgumentCount(entry.Name, entry.MinArgs, entry.MaxArgs, len(args))
	}
	vm, err := e.runtime()
	if err != nil {
		return nil, err
	}

	fnValue := vm.Get(entry.Name)
	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return nil, errs.NewConversion(entry.Name, typeName(fnValue), "function")
	}

	values := make([]goja.Value, len(args))
	for i, a := range args {
		values[i] = vm.ToValue(a)
	}

	start := time.Now()
	res, err := fn(goja.Undefined(), values...)
	e.log.Debug("engine call", "entry", entry.Name, "elapsed", time.Since(start), "ok", err == nil)
	if err != nil {
		return nil, fromEngine(err)
	}
	return res, nil
}

// ParseValue runs the parser and keeps its raw result inside this engine.
func (e *Engine) ParseValue(src string) (*Persistent, error) {
	v, err := e.Call(EntryParse, src)
	if err != nil {
		return nil, err
	}
	return &Persistent{owner: e, value: v}, nil
}

// Reconstruct builds the typed tree for a value produced by this engine.
func (e *Engine) Reconstruct(p *Persistent) (root *ast.Root, err error) {
	v, err := e.restore(p)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = fromPanic(r)
		}
	}()
	return ast.DecodeRoot(v)
}

// Parse returns the typed document tree for src.
func (e *Engine) Parse(src string) (*ast.Root, error) {
	p, err := e.ParseValue(src)
	if err != nil {
		return nil, err
	}
	return e.Reconstruct(p)
}

// ParseToIntermediate returns the engine's own serialisation of the parse
// result, unchanged.
func (e *Engine) ParseToIntermediate(src string) (string, error) {
	v, err := e.Call(EntryJParse, src)
	if err != nil {
		return "", err
	}
	return exportString(EntryJParse, v)
}

// Format returns src pretty-printed by the engine.
func (e *Engine) Format(src string, opts FormatOptions) (string, error) {
	v, err := e.Call(EntryFormat, src, opts.PrintWidth, opts.UseTabs, opts.TabWidth, opts.DocumentOnly)
	if err != nil {
		return "", err
	}
	return exportString(EntryFormat, v)
}

func exportString(entry Entry, v goja.Value) (string, error) {
	if v != nil {
		if s, ok := v.Export().(string); ok {
			return s, nil
		}
	}
	return "", errs.NewConversion(entry.Name, typeName(v), "string")
}

func typeName(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if t := v.ExportType(); t != nil {
		return t.String()
	}
	return "unknown"
}
