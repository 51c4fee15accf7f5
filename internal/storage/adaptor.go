package storage

import (
	"strings"

	"github.com/GriffinCanCode/dirstore/internal/snapshot"
)

// Canonical codec extensions
const (
	ExtJSON   = ".json"
	ExtNDJSON = ".ndjson"
	ExtCSV    = ".csv"
	ExtYAML   = ".yaml"
	ExtTOML   = ".toml"
)

// WithExtension appends ext unless path already ends with it.
func WithExtension(path, ext string) string {
	if strings.HasSuffix(path, ext) {
		return path
	}
	return path + ext
}

// Adaptor is the common part of every codec: one File with a canonical extension.
type Adaptor struct {
	file *File
}

func newAdaptor(f *File, ext string) *Adaptor {
	return &Adaptor{file: f.withPath(WithExtension(f.Path, ext))}
}

// File returns the underlying handle.
func (a *Adaptor) File() *File {
	return a.file
}

// Path returns the absolute path, extension included.
func (a *Adaptor) Path() string {
	return a.file.Path
}

// Exists reports whether the file exists.
func (a *Adaptor) Exists() bool {
	return a.file.Exists()
}

// Delete removes the file if it exists.
func (a *Adaptor) Delete() error {
	return a.file.Delete()
}

func (a *Adaptor) snapshot(v interface{}) interface{} {
	return snapshot.Depth(v, a.file.opts.maxDepth)
}
