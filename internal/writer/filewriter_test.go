package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_ReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	w := &FileWriter{Path: path}
	require.NoError(t, w.Write(func(out io.Writer) error {
		_, err := fmt.Fprintln(out, "Base address = 0x1000")
		return err
	}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Base address = 0x1000\n", string(got))
	assertNoTemp(t, dir)
}

func TestFileWriter_FailureKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	boom := errors.New("boom")
	w := &FileWriter{Path: path}
	err := w.Write(func(out io.Writer) error {
		io.WriteString(out, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
	assertNoTemp(t, dir)
}

func TestFileWriter_MissingDirectory(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "nope", "dump.txt")}
	err := w.Write(func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "create temp file")
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".webmap-tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
