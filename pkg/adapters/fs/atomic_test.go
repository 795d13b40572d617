package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates new file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "pkm_notes.json")

		require.NoError(t, WriteFileAtomic(filename, []byte("[]"), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "pkm_notes.json")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0644))

		require.NoError(t, WriteFileAtomic(filename, []byte("overwritten"), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("failed publish cleans up the staged file", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "pkm_notes.json")
		require.NoError(t, os.Mkdir(target, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0644))

		assert.Error(t, WriteFileAtomic(target, []byte("[]"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].IsDir(), "target is untouched")
	})

	t.Run("fails if directory missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "x.json")
		assert.Error(t, WriteFileAtomic(filename, []byte("fail"), 0644))
	})
}

func TestKeyOf(t *testing.T) {
	tests := map[string]struct {
		key string
		ok  bool
	}{
		"/vault/pkm_notes.json":       {"pkm_notes", true},
		"/vault/notes.md":             {"", false},
		"/vault/notegraph-tmp-123":    {"", false},
		"/vault/notegraph-tmp-1.json": {"", false},
		"/vault/.notegraph":           {"", false},
		"/vault/.hidden.json":         {"", false},
	}
	for path, want := range tests {
		key, ok := keyOf(path)
		assert.Equal(t, want.ok, ok, path)
		assert.Equal(t, want.key, key, path)
	}
}
