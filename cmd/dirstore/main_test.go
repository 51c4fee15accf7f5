package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runIn(t *testing.T, root string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"-env", filepath.Join(root, "missing.env"), "-root", root}
	code := run(context.Background(), append(base, args...), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUsage(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"explode"}},
		{"missing argument", []string{"cat"}},
		{"too many arguments", []string{"ls", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runIn(t, root, tt.args...)
			assert.Equal(t, 2, res.code)
			assert.Contains(t, res.stderr, "usage: dirstore")
		})
	}
}

func TestLs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello")
	write(t, root, "sub/b.txt", "x")

	res := runIn(t, root, "ls")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "5 B")
	assert.Contains(t, res.stdout, "a.txt")
	assert.Contains(t, res.stdout, "sub/")

	res = runIn(t, root, "ls", "sub")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "b.txt")
	assert.NotContains(t, res.stdout, "a.txt")
}

func TestCatAndLines(t *testing.T) {
	root := t.TempDir()
	write(t, root, "notes/todo.txt", "one\ntwo\n")

	res := runIn(t, root, "cat", "notes/todo.txt")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "one\ntwo\n", res.stdout)

	res = runIn(t, root, "lines", "notes/todo.txt")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "     1  one\n     2  two\n", res.stdout)
}

func TestFileArgumentsStayInsideRoot(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"cat", "nope.txt"}},
		{"escape", []string{"cat", "../secret"}},
		{"absolute", []string{"lines", "/etc/hostname"}},
		{"directory", []string{"hash", "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runIn(t, root, tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Contains(t, res.stderr, "dirstore:")
		})
	}
}

func TestCSV2JSON(t *testing.T) {
	root := t.TempDir()
	write(t, root, "users.csv", "name,age,admin\nann,31,true\nbob,,false\n")

	res := runIn(t, root, "csv2json", "users")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "2 rows")

	data, err := os.ReadFile(filepath.Join(root, "users.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name": "ann", "age": 31, "admin": true},
		{"name": "bob", "age": null, "admin": false}
	]`, string(data))

	res = runIn(t, root, "csv2json", "users.csv", "out/converted.json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(root, "out", "converted.json"))
}

func TestHashIsCached(t *testing.T) {
	root := t.TempDir()
	write(t, root, "h.txt", "abc")

	first := runIn(t, root, "hash", "h.txt")
	require.Equal(t, 0, first.code, first.stderr)
	assert.Equal(t, "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85  h.txt\n", first.stdout)

	second := runIn(t, root, "hash", "h.txt")
	require.Equal(t, 0, second.code, second.stderr)
	assert.Equal(t, first.stdout, second.stdout)

	cached, err := os.ReadDir(filepath.Join(root, ".temp", "cache"))
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestClear(t *testing.T) {
	root := t.TempDir()
	write(t, root, ".temp/scratch/x.txt", "x")
	write(t, root, ".temp/keep/y.txt", "y")
	write(t, root, "data.txt", "data")

	res := runIn(t, root, "clear", "scratch")
	require.Equal(t, 0, res.code, res.stderr)
	assert.DirExists(t, filepath.Join(root, ".temp", "scratch"))
	assert.NoFileExists(t, filepath.Join(root, ".temp", "scratch", "x.txt"))
	assert.FileExists(t, filepath.Join(root, ".temp", "keep", "y.txt"))

	res = runIn(t, root, "clear", "../")
	assert.Equal(t, 1, res.code)
	assert.FileExists(t, filepath.Join(root, "data.txt"))

	res = runIn(t, root, "clear")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NoFileExists(t, filepath.Join(root, ".temp", "keep", "y.txt"))
	assert.FileExists(t, filepath.Join(root, "data.txt"))
}

func TestClearRefusesStoreRoot(t *testing.T) {
	root := t.TempDir()
	write(t, root, "data.txt", "data")
	t.Setenv("STORE_TEMP_ROOT", ".")

	res := runIn(t, root, "clear")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "refusing to clear")
	assert.FileExists(t, filepath.Join(root, "data.txt"))
}

func TestMetricsAreDumped(t *testing.T) {
	root := t.TempDir()
	write(t, root, "m.txt", "metrics")
	t.Setenv("METRICS_ENABLED", "true")

	res := runIn(t, root, "lines", "m.txt")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, `dirstore_operations_total{op="read"} 1`)
}

func TestLogFile(t *testing.T) {
	root := t.TempDir()
	write(t, root, "in.csv", "a\n1\n")
	t.Setenv("LOG_FILE", "dirstore")

	res := runIn(t, root, "csv2json", "in.csv")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(filepath.Join(root, ".temp", "logs", "dirstore.ndjson"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"message":"Converted CSV"`))
	assert.False(t, strings.Contains(string(data), `"level":"debug"`))
}

func TestDevLoggingIncludesDebug(t *testing.T) {
	root := t.TempDir()
	write(t, root, "in.csv", "a\n1\n")
	t.Setenv("LOG_FILE", "dirstore")

	res := runIn(t, root, "-dev", "csv2json", "in.csv")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(filepath.Join(root, ".temp", "logs", "dirstore.ndjson"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"level":"debug"`))
	assert.True(t, strings.Contains(string(data), `"message":"namespace materialized"`))
}
