package paths

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Roots
const (
	// Root is the default store root, relative to the working directory
	Root = "."

	// TempRoot is the default root for clearable namespaces
	TempRoot = ".temp"
)

// Temp root subdirectories
const (
	Cache = "cache"
	Logs  = "logs"
)

var (
	// ErrEmptyPath is returned for an empty sub-path.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrAbsolutePath is returned when a relative sub-path is required.
	ErrAbsolutePath = errors.New("path cannot be absolute")

	// ErrPathEscape is returned when a sub-path climbs out of its parent.
	ErrPathEscape = errors.New("path escapes its parent")
)

// LogDir returns the log namespace below a temp root
func LogDir(tempRoot string) string {
	return filepath.Join(tempRoot, Logs)
}

// ValidateRelative checks that sub is a local path that stays inside its parent
func ValidateRelative(sub string) error {
	if sub == "" {
		return ErrEmptyPath
	}
	if filepath.IsAbs(sub) {
		return fmt.Errorf("%w: %s", ErrAbsolutePath, sub)
	}
	if !filepath.IsLocal(sub) {
		return fmt.Errorf("%w: %s", ErrPathEscape, sub)
	}
	return nil
}

// IsWithin reports whether target is root or lies below it. Both must be absolute.
func IsWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel) || rel == "."
}
