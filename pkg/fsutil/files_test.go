package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBytesAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	require.NoError(t, WriteBytesAtomic(path, []byte(`{"a":1}`), FileModeDefault))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	require.NoError(t, WriteBytesAtomic(path, []byte(`{"a":2}`), FileModeSecure))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(FileModeSecure), info.Mode().Perm())
	}
}

func TestWriteFileAtomic_FailedWriteKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("original"), FileModeDefault))

	err := WriteFileAtomic(path, FileModeDefault, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return fmt.Errorf("encoder failed")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}

func TestWriteFileAtomic_EmptyPath(t *testing.T) {
	assert.Error(t, WriteBytesAtomic("", nil, FileModeDefault))
}
