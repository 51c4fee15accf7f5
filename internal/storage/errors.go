package storage

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/dirstore/internal/paths"
)

var (
	// ErrEmptyPath is returned when a sub-path is empty.
	ErrEmptyPath = paths.ErrEmptyPath

	// ErrAbsolutePath is returned when Dir receives an absolute sub-path.
	ErrAbsolutePath = paths.ErrAbsolutePath

	// ErrPathEscape is returned when a sub-path climbs out of its namespace.
	ErrPathEscape = paths.ErrPathEscape

	// ErrUnsupportedContent is returned by File.Write for content that is
	// neither text, bytes nor a reader.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrNotTemp is returned by Clear on a namespace without the temp flag.
	ErrNotTemp = errors.New("clear is only permitted on temp namespaces")
)

// LineError reports an NDJSON line that could not be decoded.
type LineError struct {
	Path string
	Line int // 1-based
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
