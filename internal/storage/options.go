package storage

import (
	"github.com/GriffinCanCode/dirstore/internal/snapshot"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Operation names reported to an Observer
const (
	OpMkdir  = "mkdir"
	OpClear  = "clear"
	OpRead   = "read"
	OpWrite  = "write"
	OpAppend = "append"
	OpDelete = "delete"
	OpStream = "stream"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Observer receives one call per completed filesystem operation.
type Observer interface {
	Observe(op string, bytes int64, err error)
}

type nopObserver struct{}

func (nopObserver) Observe(string, int64, error) {}

// settings is shared by namespaces and the files they produce.
type settings struct {
	fs       afero.Fs
	logger   *zap.Logger
	observer Observer
	temp     bool
	maxDepth int
}

func defaultSettings() settings {
	return settings{
		fs:       afero.NewOsFs(),
		logger:   zap.NewNop(),
		observer: nopObserver{},
		maxDepth: snapshot.DefaultMaxDepth,
	}
}

func (s settings) apply(opts []Option) settings {
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a namespace or file.
type Option func(*settings)

// WithFs sets the filesystem backend.
func WithFs(fs afero.Fs) Option {
	return func(s *settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the operation observer (metrics).
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithTemp overrides the temp flag that is otherwise inherited from the parent.
func WithTemp(temp bool) Option {
	return func(s *settings) {
		s.temp = temp
	}
}

// WithMaxDepth sets the snapshot depth used by structured codecs.
func WithMaxDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}
