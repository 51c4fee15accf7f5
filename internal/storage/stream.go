package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

const streamChunkSize = 32 * 1024

// ReadStream opens the file for reading. A missing file yields an empty stream.
func (f *File) ReadStream() (io.ReadCloser, error) {
	h, err := f.opts.fs.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return io.NopCloser(strings.NewReader("")), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	return h, nil
}

// WriteStream truncates the file and returns a writer for it. Parents are created.
func (f *File) WriteStream() (io.WriteCloser, error) {
	if err := f.ensureDir(); err != nil {
		return nil, err
	}
	h, err := f.opts.fs.Create(f.Path)
	if err != nil {
		f.opts.observer.Observe(OpStream, 0, err)
		return nil, fmt.Errorf("failed to create %s: %w", f.Path, err)
	}
	return h, nil
}

// WriteFrom copies r into the file. Data lands in a sibling temp file that
// replaces the target once the copy completes; on failure the target is left
// untouched. ctx is checked between chunks.
func (f *File) WriteFrom(ctx context.Context, r io.Reader) (int64, error) {
	if err := f.ensureDir(); err != nil {
		return 0, err
	}

	tmp := filepath.Join(f.Dir, "."+f.Base+"."+uuid.NewString()+".tmp")
	h, err := f.opts.fs.Create(tmp)
	if err != nil {
		f.opts.observer.Observe(OpStream, 0, err)
		return 0, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	written, err := copyContext(ctx, h, r)
	if cerr := h.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = f.opts.fs.Rename(tmp, f.Path)
	}
	f.opts.observer.Observe(OpStream, written, err)
	if err != nil {
		_ = f.opts.fs.Remove(tmp)
		return written, fmt.Errorf("failed to stream into %s: %w", f.Path, err)
	}

	f.debug("stream written", zap.Int64("bytes", written))
	return written, nil
}

func copyContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, streamChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// Hash returns the hex BLAKE3-256 digest of the contents.
func (f *File) Hash() (string, error) {
	h, err := f.opts.fs.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer h.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, h); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", f.Path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Detect sniffs the content type from the file's leading bytes.
func (f *File) Detect() (*mimetype.MIME, error) {
	h, err := f.opts.fs.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer h.Close()

	kind, err := mimetype.DetectReader(h)
	if err != nil {
		return nil, fmt.Errorf("failed to detect type of %s: %w", f.Path, err)
	}
	return kind, nil
}
