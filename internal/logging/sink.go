package logging

import (
	"strings"

	"github.com/GriffinCanCode/dirstore/internal/storage"
	"go.uber.org/zap/zapcore"
)

// FileSink appends encoded log entries to a store file, one entry per line.
type FileSink struct {
	file *storage.File
}

// NewFileSink returns a write syncer appending to f. It is not safe for
// concurrent use on its own; wrap it with zapcore.Lock.
func NewFileSink(f *storage.File) zapcore.WriteSyncer {
	return &FileSink{file: f}
}

// Write appends every non-empty line of p.
func (s *FileSink) Write(p []byte) (int, error) {
	var lines []string
	for _, line := range strings.Split(string(p), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return len(p), nil
	}
	if err := s.file.Append(lines...); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Sync is a no-op; every Write is complete once it returns.
func (s *FileSink) Sync() error {
	return nil
}
