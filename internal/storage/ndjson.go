package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
)

var ndjsonAPI = sonic.ConfigStd

// NDJSONFile stores values of type T one JSON document per line.
type NDJSONFile[T any] struct {
	*Adaptor
}

// NDJSONOf wraps f as a typed NDJSON file, adding ".ndjson" when missing.
func NDJSONOf[T any](f *File) *NDJSONFile[T] {
	return &NDJSONFile[T]{Adaptor: newAdaptor(f, ExtNDJSON)}
}

// NDJSON wraps the file as an untyped NDJSON file.
func (f *File) NDJSON() *NDJSONFile[interface{}] {
	return NDJSONOf[interface{}](f)
}

// Append snapshots and encodes each value as one line, without rewriting prior content.
func (n *NDJSONFile[T]) Append(values ...T) error {
	lines := make([]string, 0, len(values))
	for _, v := range values {
		line, err := ndjsonAPI.MarshalToString(n.snapshot(v))
		if err != nil {
			return fmt.Errorf("failed to encode line for %s: %w", n.Path(), err)
		}
		lines = append(lines, line)
	}
	return n.file.Append(lines...)
}

// Lines decodes every stored line. On a malformed line it returns the values
// decoded so far together with a *LineError.
func (n *NDJSONFile[T]) Lines() ([]T, error) {
	raw, err := n.file.Lines()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for i, line := range raw {
		v, err := n.decode(line)
		if err != nil {
			return out, &LineError{Path: n.Path(), Line: i + 1, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// Each streams the stored lines through fn, stopping at the first error.
func (n *NDJSONFile[T]) Each(fn func(T) error) error {
	rc, err := n.file.ReadStream()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := bufio.NewReader(rc)
	for lineNo := 1; ; lineNo++ {
		line, rerr := r.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("failed to read %s: %w", n.Path(), rerr)
		}
		if line = strings.TrimSuffix(line, "\n"); line != "" || rerr == nil {
			v, err := n.decode(line)
			if err != nil {
				return &LineError{Path: n.Path(), Line: lineNo, Err: err}
			}
			if err := fn(v); err != nil {
				return err
			}
		}
		if rerr != nil {
			return nil
		}
	}
}

func (n *NDJSONFile[T]) decode(line string) (T, error) {
	var v T
	err := ndjsonAPI.UnmarshalFromString(line, &v)
	return v, err
}
