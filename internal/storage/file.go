package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// File is a handle for one path. The file itself is created on first write.
type File struct {
	Path string // absolute
	Dir  string
	Base string
	Name string // base without extension
	Ext  string
	Kind string // MIME type from the extension, empty when unknown

	opts settings
}

// NewFile returns a handle for path, resolved against the working directory.
func NewFile(path string, opts ...Option) *File {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return newFile(path, defaultSettings().apply(opts))
}

func newFile(path string, opts settings) *File {
	path = filepath.Clean(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return &File{
		Path: path,
		Dir:  filepath.Dir(path),
		Base: base,
		Name: strings.TrimSuffix(base, ext),
		Ext:  ext,
		Kind: kindOf(ext),
		opts: opts,
	}
}

func kindOf(ext string) string {
	if ext == "" {
		return ""
	}
	kind, _, _ := strings.Cut(mime.TypeByExtension(ext), ";")
	return strings.TrimSpace(kind)
}

// withPath returns a handle for another path sharing this file's settings.
func (f *File) withPath(path string) *File {
	return newFile(path, f.opts)
}

// Fs returns the backing filesystem.
func (f *File) Fs() afero.Fs {
	return f.opts.fs
}

// Exists reports whether something exists at the path.
func (f *File) Exists() bool {
	ok, err := afero.Exists(f.opts.fs, f.Path)
	return ok && err == nil
}

// Stat returns file info. A missing file yields an error matching fs.ErrNotExist.
func (f *File) Stat() (os.FileInfo, error) {
	return f.opts.fs.Stat(f.Path)
}

// Size returns the size in bytes, 0 when the file is missing.
func (f *File) Size() int64 {
	info, err := f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// Read returns the contents as text. ok is false when the file does not exist.
func (f *File) Read() (string, bool, error) {
	data, ok, err := f.ReadBytes()
	return string(data), ok, err
}

// ReadBytes returns the raw contents. ok is false when the file does not exist.
func (f *File) ReadBytes() ([]byte, bool, error) {
	data, err := afero.ReadFile(f.opts.fs, f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	f.opts.observer.Observe(OpRead, int64(len(data)), err)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return data, true, nil
}

// Write replaces the contents. content must be a string, []byte or io.Reader.
// Missing parent directories are created.
func (f *File) Write(content interface{}) error {
	var data []byte
	switch c := content.(type) {
	case string:
		data = []byte(c)
	case []byte:
		data = c
	case io.Reader:
		_, err := f.WriteFrom(context.Background(), c)
		return err
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedContent, content)
	}

	if err := f.ensureDir(); err != nil {
		return err
	}
	err := afero.WriteFile(f.opts.fs, f.Path, data, filePerm)
	f.opts.observer.Observe(OpWrite, int64(len(data)), err)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

// Append adds lines, each terminated by "\n". The file and its parents are
// created when missing; existing content is never read. With no lines it only
// ensures the file exists.
func (f *File) Append(lines ...string) error {
	if err := f.ensureDir(); err != nil {
		return err
	}

	h, err := f.opts.fs.OpenFile(f.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		f.opts.observer.Observe(OpAppend, 0, err)
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}

	var n int
	if len(lines) > 0 {
		n, err = h.WriteString(strings.Join(lines, "\n") + "\n")
	}
	if cerr := h.Close(); err == nil {
		err = cerr
	}
	f.opts.observer.Observe(OpAppend, int64(n), err)
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", f.Path, err)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (f *File) Delete() error {
	err := f.opts.fs.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	f.opts.observer.Observe(OpDelete, 0, err)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", f.Path, err)
	}
	return nil
}

// Lines returns the contents split on "\n" without a trailing empty entry.
// A missing file yields no lines.
func (f *File) Lines() ([]string, error) {
	content, ok, err := f.Read()
	if err != nil {
		return nil, err
	}
	if !ok || content == "" {
		return []string{}, nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func (f *File) ensureDir() error {
	if err := f.opts.fs.MkdirAll(f.Dir, dirPerm); err != nil {
		f.opts.observer.Observe(OpMkdir, 0, err)
		return fmt.Errorf("failed to create directory %s: %w", f.Dir, err)
	}
	return nil
}

func (f *File) debug(msg string, fields ...zap.Field) {
	f.opts.logger.Debug(msg, append([]zap.Field{zap.String("path", f.Path)}, fields...)...)
}
