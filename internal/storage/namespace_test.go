package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/dirstore/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Media is an extension namespace used to check subtype preservation.
type Media struct {
	*Namespace[Media]
}

func NewMedia(path string, opts ...Option) Media {
	return New(path, func(n *Namespace[Media]) Media { return Media{n} }, opts...)
}

func (m Media) Thumbnail(name string) *File {
	return m.File(name + ".png")
}

func memDir(t *testing.T, path string, opts ...Option) (Dir, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewDir(path, append([]Option{WithFs(fs)}, opts...)...), fs
}

func TestDirChildIsInsideParent(t *testing.T) {
	root, fs := memDir(t, "/store")

	child, err := root.Dir("a/b")
	require.NoError(t, err)

	assert.Equal(t, filepath.FromSlash("/store/a/b"), child.Path())
	assert.True(t, strings.HasPrefix(child.Path(), root.Path()))

	ok, err := afero.DirExists(fs, child.Path())
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := root.Contents()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name)
	assert.True(t, entries[0].IsDir)
}

func TestDirIsLazy(t *testing.T) {
	root, fs := memDir(t, "/store")

	child, err := root.Dir("lazy")
	require.NoError(t, err)

	ok, _ := afero.DirExists(fs, "/store/lazy")
	assert.False(t, ok, "describing a namespace must not create it")

	_ = child.Path()
	ok, _ = afero.DirExists(fs, "/store/lazy")
	assert.True(t, ok)
}

func TestDirRejectsInvalidSubPaths(t *testing.T) {
	root, _ := memDir(t, "/store")

	tests := []struct {
		name    string
		sub     string
		wantErr error
	}{
		{"empty", "", ErrEmptyPath},
		{"absolute", "/etc/passwd", ErrAbsolutePath},
		{"parent", "..", ErrPathEscape},
		{"nested escape", "a/../../b", ErrPathEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := root.Dir(tt.sub)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubtypeIsPreserved(t *testing.T) {
	fs := afero.NewMemMapFs()
	media := NewMedia("/media", WithFs(fs))

	child, err := media.Dir("albums")
	require.NoError(t, err)
	grandchild, err := child.TempDir("2024")
	require.NoError(t, err)

	var _ Media = grandchild
	thumb := grandchild.Thumbnail("cover")
	assert.Equal(t, filepath.FromSlash("/media/albums/2024/cover.png"), thumb.Path)
	assert.Equal(t, "image/png", thumb.Kind)
	assert.True(t, grandchild.IsTemp())
	assert.False(t, child.IsTemp())

	dirs, err := child.Dirs()
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, grandchild.Path(), dirs[0].Path())
}

func TestTempFlagPropagates(t *testing.T) {
	fs := afero.NewMemMapFs()
	tmp := NewTemp("/work/.temp", WithFs(fs))
	assert.True(t, tmp.IsTemp())

	child, err := tmp.Dir("a")
	require.NoError(t, err)
	assert.True(t, child.IsTemp())

	plain, err := tmp.Dir("b", WithTemp(false))
	require.NoError(t, err)
	assert.False(t, plain.IsTemp())

	root := NewDir("/work", WithFs(fs))
	forced, err := root.TempDir("scratch")
	require.NoError(t, err)
	assert.True(t, forced.IsTemp())
	assert.False(t, root.IsTemp())
}

func TestNewTempDefaultsToTempRoot(t *testing.T) {
	dir := testutil.Root(t)

	tmp := NewTemp("")
	assert.Equal(t, filepath.Join(dir, ".temp"), tmp.Path())
	assert.DirExists(t, filepath.Join(dir, ".temp"))

	root := NewDir("")
	assert.Equal(t, dir, root.Path())
}

func TestClear(t *testing.T) {
	t.Run("temp namespace is emptied and kept", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		tmp := NewTemp("/t", WithFs(fs))
		require.NoError(t, tmp.File("x.txt").Write("x"))
		sub, err := tmp.Dir("sub")
		require.NoError(t, err)
		require.NoError(t, sub.File("y.txt").Write("y"))

		require.NoError(t, tmp.Clear())

		entries, err := tmp.Contents()
		require.NoError(t, err)
		assert.Empty(t, entries)
		ok, _ := afero.DirExists(fs, "/t")
		assert.True(t, ok)
	})

	t.Run("non-temp namespace is refused", func(t *testing.T) {
		root, fs := memDir(t, "/keep")
		require.NoError(t, root.File("x.txt").Write("x"))

		err := root.Clear()
		assert.ErrorIs(t, err, ErrNotTemp)
		assert.Equal(t, "x", testutil.ReadFile(t, fs, "/keep/x.txt"))
	})

	t.Run("clear reports to the observer", func(t *testing.T) {
		obs := testutil.NewMockObserver(t)
		tmp := NewTemp("/t", WithFs(afero.NewMemMapFs()), WithObserver(obs))
		require.NoError(t, tmp.Clear())
		assert.Contains(t, obs.Ops(), OpClear)
	})
}

func TestFilesAndContentsAreSorted(t *testing.T) {
	root, _ := memDir(t, "/store")
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		require.NoError(t, root.File(name).Write(name))
	}
	d, err := root.Dir("d")
	require.NoError(t, err)
	require.NoError(t, d.Err())

	files, err := root.Files()
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Base)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, names)

	entries, err := root.Contents()
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestFilepathSanitizesBase(t *testing.T) {
	root, _ := memDir(t, "/store")
	assert.Equal(t, filepath.FromSlash("/store/example.com_page"), root.Filepath("https://www.example.com/page"))
	assert.Equal(t, "a_b", root.Sanitize("a/b"))
}

func TestPathLogsCreateFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewDir("/store",
		WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())),
		WithLogger(zap.New(core)))

	assert.Equal(t, filepath.FromSlash("/store"), d.Path())
	assert.Error(t, d.Err())

	entries := logs.FilterMessage("namespace unavailable").All()
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.FromSlash("/store"), entries[0].ContextMap()["path"])
	assert.Contains(t, entries[0].ContextMap(), "error")
}
