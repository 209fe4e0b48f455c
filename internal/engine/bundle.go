package engine

import (
	"github.com/spf13/afero"

	"unlatex/internal/errs"
)

// LoadBundle reads the document engine script from fs.
func LoadBundle(fs afero.Fs, path string) ([]byte, error) {
	if path == "" {
		return nil, errs.New(errs.Io, "no engine bundle configured")
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "read engine bundle "+path, err)
	}
	return data, nil
}
