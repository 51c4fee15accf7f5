package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GriffinCanCode/dirstore/internal/storage"
	"github.com/GriffinCanCode/dirstore/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type counter struct {
	calls int
	value string
	err   error
}

func (c *counter) get(context.Context) (string, error) {
	c.calls++
	return c.value, c.err
}

func setup(t *testing.T) (storage.Dir, afero.Fs, *clock) {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := storage.NewTemp("/work/.temp/cache", storage.WithFs(fs))
	return dir, fs, &clock{t: time.UnixMilli(1_700_000_000_000)}
}

func TestGetCachesUntilExpiry(t *testing.T) {
	dir, _, clk := setup(t)
	src := &counter{value: "fresh"}
	c := New(dir, "https://example.com/data", time.Minute, src.get, WithClock(clk.now))

	assert.Equal(t, "/work/.temp/cache/example.com_data.json", c.Path())

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "fresh", v)
	}
	assert.Equal(t, 1, src.calls)

	clk.advance(59 * time.Second)
	_, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	clk.advance(time.Second)
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "an entry exactly ttl old is stale")
}

func TestFileLayout(t *testing.T) {
	dir, fs, clk := setup(t)
	src := &counter{value: "v"}
	c := New(dir, "key", time.Hour, src.get, WithClock(clk.now))

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"createdAt\": 1700000000000,\n  \"value\": \"v\"\n}",
		testutil.ReadFile(t, fs, "/work/.temp/cache/key.json"))
}

func TestZeroValueIsAMiss(t *testing.T) {
	dir, _, clk := setup(t)
	src := &counter{value: ""}
	c := New(dir, "empty", time.Hour, src.get, WithClock(clk.now))

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestRefreshAndInvalidate(t *testing.T) {
	dir, fs, clk := setup(t)
	src := &counter{value: "a"}
	c := New(dir, "k", time.Hour, src.get, WithClock(clk.now))

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	src.value = "b"
	v, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	v, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, src.calls)

	require.NoError(t, c.Invalidate())
	ok, _ := afero.Exists(fs, c.Path())
	assert.False(t, ok)

	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestGetPropagatesErrors(t *testing.T) {
	dir, fs, clk := setup(t)

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("boom")
		c := New(dir, "failing", time.Hour, (&counter{err: boom}).get, WithClock(clk.now))
		_, err := c.Get(context.Background())
		assert.ErrorIs(t, err, boom)
		ok, _ := afero.Exists(fs, c.Path())
		assert.False(t, ok, "nothing is stored on failure")
	})

	t.Run("corrupt file", func(t *testing.T) {
		c := New(dir, "corrupt", time.Hour, (&counter{value: "x"}).get, WithClock(clk.now))
		require.NoError(t, afero.WriteFile(fs, c.Path(), []byte("{oops"), 0o644))
		_, err := c.Get(context.Background())
		assert.Error(t, err)
	})
}

func TestStructValues(t *testing.T) {
	type result struct {
		Items []string `json:"items"`
		Total int      `json:"total"`
	}

	dir, _, clk := setup(t)
	calls := 0
	get := func(context.Context) (result, error) {
		calls++
		return result{Items: []string{"a", "b"}, Total: 2}, nil
	}
	c := New(dir, "struct", time.Hour, get, WithClock(clk.now))

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}
