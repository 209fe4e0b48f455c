package engine

import (
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlatex/internal/ast"
	"unlatex/internal/errs"
)

func fakeOptions(t *testing.T) Options {
	t.Helper()
	bundle, err := LoadBundle(afero.NewOsFs(), "testdata/fake_bundle.js")
	require.NoError(t, err)
	return Options{Bundle: bundle, BundleName: "fake_bundle.js"}
}

func TestEngine_Parse(t *testing.T) {
	e := New(fakeOptions(t))

	root, err := e.Parse(`\section{Intro} Hi $x$ @hologram %c`)
	require.NoError(t, err)

	var types []ast.NodeType
	for _, n := range root.Content {
		types = append(types, n.Type())
	}
	assert.Equal(t, []ast.NodeType{
		ast.TypeMacro, ast.TypeWhiteSpace, ast.TypeString, ast.TypeWhiteSpace,
		ast.TypeInlineMath, ast.TypeWhiteSpace, ast.TypeError, ast.TypeWhiteSpace, ast.TypeComment,
	}, types)

	section := root.Content[0].(*ast.Macro)
	assert.Equal(t, "section", section.Content)
	require.Len(t, section.Args, 1)
	assert.Equal(t, "Intro", section.Args[0].Content[0].(*ast.String).Content)
	require.NotNil(t, section.RenderInfo)
	assert.True(t, section.RenderInfo.BreakAround)
	assert.Equal(t, ast.Position{Line: 1, Offset: 0, Column: 1}, section.Position.Start)
	assert.Equal(t, ast.Position{Line: 1, Offset: 15, Column: 16}, section.Position.End)

	comment := root.Content[8].(*ast.Comment)
	assert.Equal(t, "c", comment.Content)
	assert.True(t, comment.Sameline)
}

func TestEngine_ParseToIntermediate(t *testing.T) {
	e := New(fakeOptions(t))

	out, err := e.ParseToIntermediate("a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"root","content":[{"type":"string","content":"a",
		"position":{"start":{"offset":0,"line":1,"column":1},"end":{"offset":1,"line":1,"column":2}}}]}`, out)
}

func TestEngine_FormatPassesOptionsInOrder(t *testing.T) {
	e := New(fakeOptions(t))

	out, err := e.Format("__options__", DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, `[80,false,2,true]`, out)

	out, err = e.Format("__options__", FormatOptions{PrintWidth: 120, UseTabs: true, TabWidth: 4})
	require.NoError(t, err)
	assert.Equal(t, `[120,true,4,false]`, out)
}

func TestEngine_FormatIsIdempotent(t *testing.T) {
	e := New(fakeOptions(t))
	inputs := []string{
		"  a   b \n\n\n c ",
		"\\section{x}   y\n",
		"",
	}
	for _, in := range inputs {
		once, err := e.Format(in, DefaultFormatOptions())
		require.NoError(t, err)
		twice, err := e.Format(once, DefaultFormatOptions())
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestEngine_ArgumentCount(t *testing.T) {
	e := New(fakeOptions(t))

	_, err := e.Call(EntryFormat, "x")
	require.Error(t, err)
	var ee *errs.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errs.ArgumentCount, ee.Kind)
	assert.Equal(t, 5, ee.MinArgs)
	assert.Equal(t, 5, ee.MaxArgs)
	assert.Equal(t, 1, ee.Given)

	_, err = e.Call(EntryFormat, "x", 80, false, 2, true, "extra")
	assert.Equal(t, errs.ArgumentCount, errs.KindOf(err))

	_, err = e.Call(EntryParse)
	assert.Equal(t, errs.ArgumentCount, errs.KindOf(err))

	_, err = e.Call(EntryFormat, "a  b", 80, false, 2, true)
	assert.NoError(t, err)
}

func TestEngine_Exceptions(t *testing.T) {
	e := New(fakeOptions(t))

	_, err := e.Parse("__throw__")
	var ee *errs.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errs.EngineException, ee.Kind)
	assert.Equal(t, "Error: fake parser refused input", ee.Message)
	assert.Equal(t, "fake_bundle.js", ee.File)
	assert.Greater(t, ee.Line, 0)
	assert.NotEmpty(t, ee.Stack)

	_, err = e.Format("__throw__", DefaultFormatOptions())
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "TypeError: fake formatter refused input", ee.Message)

	// The engine stays usable after an exception.
	_, err = e.Parse("ok")
	assert.NoError(t, err)
}

func TestEngine_StackCeiling(t *testing.T) {
	opts := fakeOptions(t)
	opts.MaxCallStackSize = 256
	e := New(opts)

	_, err := e.Parse("__deep__")
	require.Error(t, err)
	var ex *errs.Error
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, errs.EngineException, ex.Kind)
	assert.Contains(t, ex.Message, "call stack")
	assert.NotEmpty(t, ex.Stack)
	assert.Equal(t, "fake_bundle.js", ex.File)
	assert.Positive(t, ex.Line)
}

func TestEngine_RestrictedGlobals(t *testing.T) {
	e := New(fakeOptions(t))

	out, err := e.Format("__globals__", DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, "undefined,undefined,object,function,function,function,function", out)
}

func TestEngine_BootRemovesModuleHooks(t *testing.T) {
	e := New(fakeOptions(t))

	vm, err := e.runtime()
	require.NoError(t, err)
	v, err := vm.RunString(`[typeof unlatex, "module" in globalThis, "exports" in globalThis, "define" in globalThis].join(",")`)
	require.NoError(t, err)
	assert.Equal(t, "object,false,false,false", v.String())
}

func TestEngine_ResultConversion(t *testing.T) {
	e := New(fakeOptions(t))

	_, err := e.Format("__number__", DefaultFormatOptions())
	assert.Equal(t, errs.Conversion, errs.KindOf(err))

	_, err = e.Parse("__not_root__")
	assert.Equal(t, errs.Conversion, errs.KindOf(err))
}

func TestEngine_BootstrapFailureIsCached(t *testing.T) {
	t.Run("Throwing bundle", func(t *testing.T) {
		e := New(Options{Bundle: []byte(`throw new Error("broken bundle")`)})

		_, first := e.Parse("x")
		require.Error(t, first)
		assert.Equal(t, errs.EngineException, errs.KindOf(first))

		_, second := e.Format("x", DefaultFormatOptions())
		assert.Same(t, first, second)

		_, third := e.ParseToIntermediate("x")
		assert.Same(t, first, third)
	})

	t.Run("Missing bundle", func(t *testing.T) {
		e := New(Options{})
		_, err := e.Parse("x")
		var ee *errs.Error
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, errs.EngineException, ee.Kind)
		assert.Contains(t, ee.Message, "unlatex")
		assert.Equal(t, "entry.js", ee.File)
	})

	t.Run("Syntax error", func(t *testing.T) {
		e := New(Options{Bundle: []byte(`function (`)})
		_, err := e.Parse("x")
		assert.Equal(t, errs.EngineException, errs.KindOf(err))
	})
}

func TestEngine_MissingEntryPoint(t *testing.T) {
	e := New(Options{Bundle: []byte(`var unlatex = {latexParse: 1};`)})
	_, err := e.Parse("x")
	var ee *errs.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errs.Conversion, ee.Kind)
	assert.Equal(t, "latexParse", ee.Field)
	assert.Equal(t, "function", ee.To)
}

func TestEngine_UnrelatedContext(t *testing.T) {
	opts := fakeOptions(t)
	a := New(opts)
	b := New(opts)
	require.NotEqual(t, a.ID(), b.ID())

	p, err := a.ParseValue("hello")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), p.Owner())

	_, err = b.Reconstruct(p)
	require.Error(t, err)
	assert.Equal(t, errs.UnrelatedContext, errs.KindOf(err))

	_, err = a.Reconstruct(nil)
	assert.Equal(t, errs.UnrelatedContext, errs.KindOf(err))

	root, err := a.Reconstruct(p)
	require.NoError(t, err)
	assert.Len(t, root.Content, 1)
}

func TestLoadBundle(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/b.js", []byte("var x;"), 0o644))

	data, err := LoadBundle(fs, "/b.js")
	require.NoError(t, err)
	assert.Equal(t, "var x;", string(data))

	_, err = LoadBundle(fs, "/missing.js")
	assert.Equal(t, errs.Io, errs.KindOf(err))

	_, err = LoadBundle(fs, "")
	assert.Equal(t, errs.Io, errs.KindOf(err))
}

func TestPool_WorkerIsolation(t *testing.T) {
	pool := NewPool(3, fakeOptions(t))
	assert.Equal(t, 3, pool.Size())

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	errCh := make(chan error, 24)
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- pool.Do(func(e *Engine) error {
				mu.Lock()
				seen[e.ID()] = true
				mu.Unlock()
				_, err := e.Parse(`\item x`)
				return err
			})
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, len(seen), 3)
	assert.NotEmpty(t, seen)
}

// TestEngine_RealBundle runs against the real unified-latex bundle when
// UNLATEX_BUNDLE points at it.
func TestEngine_RealBundle(t *testing.T) {
	path := os.Getenv("UNLATEX_BUNDLE")
	if path == "" {
		t.Skip("UNLATEX_BUNDLE not set")
	}
	bundle, err := LoadBundle(afero.NewOsFs(), path)
	require.NoError(t, err)
	e := New(Options{Bundle: bundle})

	src := "\\section*{Really Cool Math}Below you'll find some really cool math.\n\n" +
		"Check it out!\\begin{enumerate}\n" +
		"    \\item[(a)] Hi there\n" +
		"\\item$e^2$ is math mode! \\[\\begin{bmatrix}12&3^e\\\\\\pi&0\\end{bmatrix}\\]\n" +
		"\\end{enumerate}"
	want := "\\section*{Really Cool Math}\n" +
		"Below you'll find some really cool math.\n" +
		"\n" +
		"Check it out!\n" +
		"\\begin{enumerate}\n" +
		"  \\item[(a)] Hi there\n" +
		"\n" +
		"  \\item $e^{2}$ is math mode!\n" +
		"    \\[\n" +
		"      \\begin{bmatrix}\n" +
		"        12  & 3^{e} \\\\\n" +
		"        \\pi & 0\n" +
		"      \\end{bmatrix}\n" +
		"    \\]\n" +
		"\\end{enumerate}"

	formatted, err := e.Format(src, DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, want, formatted)

	again, err := e.Format(formatted, DefaultFormatOptions())
	require.NoError(t, err)
	assert.Equal(t, formatted, again)

	root, err := e.Parse(formatted)
	require.NoError(t, err)
	assert.Zero(t, ast.CountUnknown(root))

	_, err = e.ParseToIntermediate(formatted)
	require.NoError(t, err)
}
