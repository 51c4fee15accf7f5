package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"
)

// Glob returns the files matching pattern, sorted by path. Patterns use
// doublestar syntax ("**/*.json") relative to the namespace; directories
// never match.
func (n *Namespace[D]) Glob(pattern string) ([]*File, error) {
	if err := n.materialize(); err != nil {
		return nil, err
	}
	root := n.abs()

	fsys := afero.NewIOFS(afero.NewBasePathFs(n.opts.fs, root))
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q in %s: %w", pattern, root, err)
	}
	sort.Strings(matches)

	files := make([]*File, 0, len(matches))
	for _, rel := range matches {
		files = append(files, newFile(filepath.Join(root, filepath.FromSlash(rel)), n.opts))
	}
	return files, nil
}

// Walk calls fn for every regular file below the namespace. On the OS backend
// the traversal is parallel, but fn is never called concurrently and the
// visiting order is unspecified. The first error from fn stops the walk.
func (n *Namespace[D]) Walk(ctx context.Context, fn func(*File) error) error {
	if err := n.materialize(); err != nil {
		return err
	}
	root := n.abs()

	var mu sync.Mutex
	visit := func(path string, mode fs.FileMode) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !mode.IsRegular() {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		return fn(newFile(path, n.opts))
	}

	var err error
	if _, native := n.opts.fs.(*afero.OsFs); native {
		conf := fastwalk.Config{Follow: false}
		err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			return visit(path, d.Type())
		})
	} else {
		err = afero.Walk(n.opts.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			return visit(path, info.Mode())
		})
	}
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return nil
}
