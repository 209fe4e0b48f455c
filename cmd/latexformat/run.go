package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"unlatex/internal/ast"
	"unlatex/internal/crawler"
	"unlatex/internal/engine"
)

// backend is the part of the engine the commands need. Implementations must
// be safe for concurrent use.
type backend interface {
	Format(src string, opts engine.FormatOptions) (string, error)
	Parse(src string) (*ast.Root, error)
	ParseToIntermediate(src string) (string, error)
}

// poolBackend borrows an engine from the pool for every call.
type poolBackend struct {
	pool *engine.Pool
}

func (b poolBackend) Format(src string, opts engine.FormatOptions) (out string, err error) {
	err = b.pool.Do(func(e *engine.Engine) error {
		out, err = e.Format(src, opts)
		return err
	})
	return out, err
}

func (b poolBackend) Parse(src string) (root *ast.Root, err error) {
	err = b.pool.Do(func(e *engine.Engine) error {
		root, err = e.Parse(src)
		return err
	})
	return root, err
}

func (b poolBackend) ParseToIntermediate(src string) (out string, err error) {
	err = b.pool.Do(func(e *engine.Engine) error {
		out, err = e.ParseToIntermediate(src)
		return err
	})
	return out, err
}

type runner struct {
	fs      afero.Fs
	stdin   io.Reader
	stdout  io.Writer
	log     *slog.Logger
	backend backend
	jobs    int
}

// format formats stdin when files is empty, otherwise every file. Results go
// back to their files with overwrite, else to output or stdout in input order.
func (r *runner) format(files []string, output string, overwrite bool, opts engine.FormatOptions) error {
	if len(files) == 0 {
		src, err := io.ReadAll(r.stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		out, err := r.backend.Format(string(src), opts)
		if err != nil {
			return err
		}
		return r.emit(output, out)
	}

	files, err := crawler.NewCrawler(r.fs).Expand(files)
	if err != nil {
		return err
	}

	results := make([]string, len(files))
	g := new(errgroup.Group)
	g.SetLimit(max(r.jobs, 1))
	for i, file := range files {
		g.Go(func() error {
			src, err := afero.ReadFile(r.fs, file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			out, err := r.backend.Format(string(src), opts)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if overwrite {
				if err := afero.WriteFile(r.fs, file, []byte(out), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", file, err)
				}
				r.log.Info("formatted", "file", file)
				return nil
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if overwrite {
		return nil
	}
	return r.emit(output, strings.Join(results, ""))
}

// parse prints the typed tree of a file (or stdin) as JSON.
func (r *runner) parse(file, output string) error {
	src, err := r.read(file)
	if err != nil {
		return err
	}
	root, err := r.backend.Parse(src)
	if err != nil {
		return err
	}
	if n := ast.CountUnknown(root); n > 0 {
		r.log.Warn("document contains unrecognised nodes", "count", n)
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return r.emit(output, string(data)+"\n")
}

// jparse prints the engine's own serialisation of the parse.
func (r *runner) jparse(file, output string) error {
	src, err := r.read(file)
	if err != nil {
		return err
	}
	out, err := r.backend.ParseToIntermediate(src)
	if err != nil {
		return err
	}
	return r.emit(output, out+"\n")
}

func (r *runner) read(file string) (string, error) {
	if file == "" {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := afero.ReadFile(r.fs, file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}

func (r *runner) emit(output, text string) error {
	if output == "" {
		_, err := io.WriteString(r.stdout, text)
		return err
	}
	if err := afero.WriteFile(r.fs, output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	r.log.Debug("wrote output", "file", output, "bytes", len(text))
	return nil
}
