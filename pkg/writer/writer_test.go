package writer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "section.cfg")

	err := WriteLines(context.Background(), path, []string{"interface Loopback0", " no shutdown", "!"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	sep := LineSeparator()
	assert.Equal(t, "interface Loopback0"+sep+" no shutdown"+sep+"!"+sep, string(data))
}

func TestWriteLines_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.cfg")
	require.NoError(t, os.WriteFile(path, []byte("old content\n"), 0o644))

	require.NoError(t, WriteLines(context.Background(), path, []string{"new"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new"+LineSeparator(), string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteLines_SkipsEmpty(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteLines(context.Background(), "", []string{"x"}))
	require.NoError(t, WriteLines(context.Background(), filepath.Join(dir, "empty.cfg"), nil))

	_, err := os.Stat(filepath.Join(dir, "empty.cfg"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteLines_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.cfg")

	err := WriteLines(context.Background(), path, []string{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, path, ioErr.Path)
	assert.True(t, strings.Contains(err.Error(), "could not be written"))
}

func TestWriteLines_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteLines(ctx, filepath.Join(t.TempDir(), "out.cfg"), []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
