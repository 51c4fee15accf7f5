package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/GriffinCanCode/dirstore/internal/paths"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Namespace is a directory handle that produces children of type D.
// It stays a pure description until its path is first needed.
type Namespace[D any] struct {
	input string
	opts  settings
	wrap  func(*Namespace[D]) D

	resolveOnce sync.Once
	path        string
	resolveErr  error

	createOnce sync.Once
	createErr  error
}

// Entry is one item of a namespace listing.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
}

// Dir is the plain namespace type.
type Dir struct {
	*Namespace[Dir]
}

func wrapDir(n *Namespace[Dir]) Dir {
	return Dir{n}
}

// New builds a namespace of any type. wrap turns the base namespace into D and
// is reused for every descendant.
func New[D any](path string, wrap func(*Namespace[D]) D, opts ...Option) D {
	if path == "" {
		path = paths.Root
	}
	n := &Namespace[D]{
		input: path,
		opts:  defaultSettings().apply(opts),
		wrap:  wrap,
	}
	return wrap(n)
}

// NewDir creates a plain namespace rooted at path.
func NewDir(path string, opts ...Option) Dir {
	return New(path, wrapDir, opts...)
}

// NewTemp creates a plain temp namespace. An empty path uses the default temp root.
func NewTemp(path string, opts ...Option) Dir {
	if path == "" {
		path = paths.TempRoot
	}
	return New(path, wrapDir, append([]Option{WithTemp(true)}, opts...)...)
}

// Input returns the path the namespace was described with.
func (n *Namespace[D]) Input() string {
	return n.input
}

// IsTemp reports whether Clear is permitted.
func (n *Namespace[D]) IsTemp() bool {
	return n.opts.temp
}

// Fs returns the backing filesystem.
func (n *Namespace[D]) Fs() afero.Fs {
	return n.opts.fs
}

// Path returns the absolute path, creating the directory on first use.
// A failure to create it is only logged; check Err before relying on the
// directory existing.
func (n *Namespace[D]) Path() string {
	if err := n.materialize(); err != nil {
		n.opts.logger.Debug("namespace unavailable",
			zap.String("path", n.abs()),
			zap.Error(err))
	}
	return n.abs()
}

// Err returns the error from resolving or creating the directory, if any.
func (n *Namespace[D]) Err() error {
	return n.materialize()
}

func (n *Namespace[D]) abs() string {
	n.resolveOnce.Do(func() {
		path, err := filepath.Abs(n.input)
		if err != nil {
			n.resolveErr = fmt.Errorf("failed to resolve %s: %w", n.input, err)
			path = filepath.Clean(n.input)
		}
		n.path = path
	})
	return n.path
}

func (n *Namespace[D]) materialize() error {
	n.createOnce.Do(func() {
		path := n.abs()
		if n.resolveErr != nil {
			n.createErr = n.resolveErr
			return
		}
		err := n.opts.fs.MkdirAll(path, dirPerm)
		n.opts.observer.Observe(OpMkdir, 0, err)
		if err != nil {
			n.createErr = fmt.Errorf("failed to create directory %s: %w", path, err)
			return
		}
		n.opts.logger.Debug("namespace materialized",
			zap.String("path", path),
			zap.Bool("temp", n.opts.temp))
	})
	return n.createErr
}

// Dir returns a child namespace of the same concrete type. The temp flag and
// backend are inherited unless opts override them.
func (n *Namespace[D]) Dir(subPath string, opts ...Option) (D, error) {
	if err := paths.ValidateRelative(subPath); err != nil {
		var zero D
		return zero, fmt.Errorf("invalid sub-path: %w", err)
	}
	return n.child(filepath.Join(n.abs(), subPath), opts...), nil
}

// TempDir is Dir with the temp flag forced on.
func (n *Namespace[D]) TempDir(subPath string) (D, error) {
	return n.Dir(subPath, WithTemp(true))
}

func (n *Namespace[D]) child(path string, opts ...Option) D {
	c := &Namespace[D]{
		input: path,
		opts:  n.opts.apply(opts),
		wrap:  n.wrap,
	}
	return n.wrap(c)
}

// Sanitize returns name as a safe file name.
func (n *Namespace[D]) Sanitize(name string) string {
	return Sanitize(name)
}

// Filepath returns the absolute path of the sanitized base inside the namespace.
func (n *Namespace[D]) Filepath(base string) string {
	return filepath.Join(n.Path(), Sanitize(base))
}

// File returns a handle for the sanitized base inside the namespace.
func (n *Namespace[D]) File(base string) *File {
	return newFile(n.Filepath(base), n.opts)
}

// Contents lists the namespace, sorted by name. It reads the filesystem on every call.
func (n *Namespace[D]) Contents() ([]Entry, error) {
	if err := n.materialize(); err != nil {
		return nil, err
	}
	root := n.abs()

	infos, err := afero.ReadDir(n.opts.fs, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Name:  info.Name(),
			Path:  filepath.Join(root, info.Name()),
			IsDir: info.IsDir(),
		})
	}
	return entries, nil
}

// Dirs returns the child namespaces currently on disk.
func (n *Namespace[D]) Dirs() ([]D, error) {
	entries, err := n.Contents()
	if err != nil {
		return nil, err
	}
	dirs := make([]D, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			dirs = append(dirs, n.child(e.Path))
		}
	}
	return dirs, nil
}

// Files returns handles for the files currently on disk.
func (n *Namespace[D]) Files() ([]*File, error) {
	entries, err := n.Contents()
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir {
			files = append(files, newFile(e.Path, n.opts))
		}
	}
	return files, nil
}

// Clear deletes and recreates the directory. Only temp namespaces may be cleared.
func (n *Namespace[D]) Clear() error {
	if !n.opts.temp {
		return fmt.Errorf("%w: %s", ErrNotTemp, n.abs())
	}
	path := n.abs()
	if n.resolveErr != nil {
		return n.resolveErr
	}

	err := n.opts.fs.RemoveAll(path)
	if err == nil {
		err = n.opts.fs.MkdirAll(path, dirPerm)
	}
	n.opts.observer.Observe(OpClear, 0, err)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", path, err)
	}

	n.opts.logger.Debug("namespace cleared", zap.String("path", path))
	return nil
}
