package crawler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Crawler expands command line paths into the LaTeX sources to format.
type Crawler struct {
	fs         afero.Fs
	ignored    []string
	extensions []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(fs afero.Fs) *Crawler {
	return &Crawler{
		fs:         fs,
		ignored:    []string{".git", "node_modules", "_minted", "vendor"},
		extensions: []string{".tex", ".sty", ".cls"},
	}
}

// Expand returns the files named by paths, in order. Files are kept as given
// whatever their extension; directories are walked for LaTeX sources in
// lexical order. A file reached twice is listed once.
func (c *Crawler) Expand(paths []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := c.fs.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Skip ignored directories
			if info.IsDir() {
				for _, ign := range c.ignored {
					if info.Name() == ign && path != root {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if c.isSource(info.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Sources keeps the paths that look like LaTeX sources.
func (c *Crawler) Sources(paths []string) []string {
	var out []string
	for _, p := range paths {
		if c.isSource(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Crawler) isSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range c.extensions {
		if ext == want {
			return true
		}
	}
	return false
}
