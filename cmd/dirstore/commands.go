package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/GriffinCanCode/dirstore/internal/cache"
	"github.com/GriffinCanCode/dirstore/internal/paths"
	"github.com/GriffinCanCode/dirstore/internal/storage"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	a.logger.Debug("Running command", zap.String("command", name), zap.Strings("args", args))

	switch name {
	case "ls":
		if len(args) > 1 {
			return fmt.Errorf("%w: ls takes at most one directory", errUsage)
		}
		return a.ls(optional(args))
	case "cat":
		if len(args) != 1 {
			return fmt.Errorf("%w: cat takes one file", errUsage)
		}
		return a.cat(args[0])
	case "lines":
		if len(args) != 1 {
			return fmt.Errorf("%w: lines takes one file", errUsage)
		}
		return a.lines(args[0])
	case "csv2json":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("%w: csv2json takes a CSV file and an optional output", errUsage)
		}
		out := ""
		if len(args) == 2 {
			out = args[1]
		}
		return a.csv2json(ctx, args[0], out)
	case "hash":
		if len(args) != 1 {
			return fmt.Errorf("%w: hash takes one file", errUsage)
		}
		return a.hash(ctx, args[0])
	case "clear":
		if len(args) > 1 {
			return fmt.Errorf("%w: clear takes at most one directory", errUsage)
		}
		return a.clear(optional(args))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func optional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// dir resolves a namespace below the store root; "" and "." are the root.
func (a *app) dir(rel string) (storage.Dir, error) {
	if rel == "" || rel == "." {
		return a.root, nil
	}
	return a.root.Dir(rel)
}

// file resolves an existing file below the store root.
func (a *app) file(rel string) (*storage.File, error) {
	if err := paths.ValidateRelative(rel); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	f := storage.NewFile(filepath.Join(a.root.Path(), rel), a.opts...)
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", rel)
	}
	return f, nil
}

func (a *app) ls(rel string) error {
	d, err := a.dir(rel)
	if err != nil {
		return err
	}
	entries, err := d.Contents()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(w, "-\t%s/\t\n", e.Name)
			continue
		}
		size := storage.NewFile(e.Path, a.opts...).Size()
		fmt.Fprintf(w, "%s\t%s\t\n", humanize.Bytes(uint64(size)), e.Name)
	}
	return w.Flush()
}

func (a *app) cat(rel string) error {
	f, err := a.file(rel)
	if err != nil {
		return err
	}
	rc, err := f.ReadStream()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(a.out, rc)
	return err
}

func (a *app) lines(rel string) error {
	f, err := a.file(rel)
	if err != nil {
		return err
	}
	lines, err := f.Lines()
	if err != nil {
		return err
	}
	for i, line := range lines {
		fmt.Fprintf(a.out, "%6d  %s\n", i+1, line)
	}
	return nil
}

func (a *app) csv2json(ctx context.Context, rel, out string) error {
	in, err := a.file(storage.WithExtension(rel, storage.ExtCSV))
	if err != nil {
		return err
	}
	rows, err := in.CSV().Read(ctx)
	if err != nil {
		return err
	}

	if out == "" {
		out = strings.TrimSuffix(rel, storage.ExtCSV) + storage.ExtJSON
	}
	if err := paths.ValidateRelative(out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	target := storage.JSONOf[[]map[string]interface{}](storage.NewFile(filepath.Join(a.root.Path(), out), a.opts...))
	if err := target.Write(rows); err != nil {
		return err
	}

	a.logger.Info("Converted CSV",
		zap.String("from", in.Path),
		zap.String("to", target.Path()),
		zap.Int("rows", len(rows)))
	fmt.Fprintf(a.out, "%s: %s rows\n", target.Path(), humanize.Comma(int64(len(rows))))
	return nil
}

// hash caches digests below the temp root, keyed by path, size and mtime.
func (a *app) hash(ctx context.Context, rel string) error {
	f, err := a.file(rel)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		return err
	}

	dir, err := a.temp.Dir(a.cfg.Cache.Dir)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("hash-%s-%d-%d", rel, info.Size(), info.ModTime().UnixNano())
	c := cache.New(dir, key, a.cfg.Cache.TTL, func(context.Context) (string, error) {
		return f.Hash()
	}, cache.WithLogger(a.logger.Logger))

	sum, err := c.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s\n", sum, rel)
	return nil
}

func (a *app) clear(rel string) error {
	target := a.temp
	if rel != "" && rel != "." {
		d, err := a.temp.Dir(rel)
		if err != nil {
			return err
		}
		target = d
	}

	if paths.IsWithin(target.Path(), a.root.Path()) {
		return fmt.Errorf("refusing to clear %s: it contains the store root", target.Path())
	}
	if err := target.Clear(); err != nil {
		return err
	}

	a.logger.Info("Cleared namespace", zap.String("path", target.Path()))
	fmt.Fprintf(a.out, "cleared %s\n", target.Path())
	return nil
}
