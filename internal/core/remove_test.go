package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePath(t *testing.T) {
	dir := t.TempDir()

	t.Run("directory is removed recursively", func(t *testing.T) {
		d := filepath.Join(dir, "tree")
		require.NoError(t, os.MkdirAll(filepath.Join(d, "a", "b"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(d, "a", "b", "f"), []byte("x"), 0o644))

		require.NoError(t, RemovePath(d))
		assert.False(t, Exists(d))
	})

	t.Run("symlink is removed, target kept", func(t *testing.T) {
		target := filepath.Join(dir, "shared")
		require.NoError(t, os.Mkdir(target, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))
		link := filepath.Join(dir, "link")
		require.NoError(t, os.Symlink(target, link))

		require.NoError(t, RemovePath(link))
		assert.False(t, Exists(link))
		assert.FileExists(t, filepath.Join(target, "keep"))
	})

	t.Run("missing path is fine", func(t *testing.T) {
		assert.NoError(t, RemovePath(filepath.Join(dir, "absent")))
	})
}

func TestElevate(t *testing.T) {
	name, args := Elevate(true, "rm", "-rf", "/tmp/x")
	assert.Equal(t, "rm", name)
	assert.Equal(t, []string{"-rf", "/tmp/x"}, args)

	name, args = Elevate(false, "rm", "-rf", "/tmp/x")
	assert.Equal(t, "sudo", name)
	assert.Equal(t, []string{"rm", "-rf", "/tmp/x"}, args)
}

func TestOSVersionString(t *testing.T) {
	assert.Equal(t, "macOS 14.5", OSVersionString("darwin", "14.5"))
	assert.Equal(t, "ubuntu 24.04", OSVersionString("ubuntu", "24.04"))
	assert.Equal(t, "unknown OS", OSVersionString("", ""))
}
