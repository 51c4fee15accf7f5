// Package testutil provides helpers shared by the dirstore package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObserver is a mock storage observer.
type MockObserver struct {
	mock.Mock
}

// Observe mocks the Observe method.
func (m *MockObserver) Observe(op string, bytes int64, err error) {
	m.Called(op, bytes, err)
}

// NewMockObserver creates a mock observer accepting any operation.
func NewMockObserver(t *testing.T) *MockObserver {
	t.Helper()
	m := new(MockObserver)
	m.On("Observe", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	return m
}

// Ops returns the operation names observed so far, in call order.
func (m *MockObserver) Ops() []string {
	var ops []string
	for _, call := range m.Calls {
		if call.Method == "Observe" {
			ops = append(ops, call.Arguments.String(0))
		}
	}
	return ops
}

// MemFs returns an in-memory filesystem seeded with files (path -> content).
func MemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

// ReadFile returns the content at path, failing the test when it cannot be read.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

// Root returns a fresh on-disk directory and makes it the working directory
// for the rest of the test.
func Root(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	t.Chdir(dir)
	return dir
}
