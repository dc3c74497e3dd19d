package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/mandelmovie/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	t.Run("fresh initialization", func(t *testing.T) {
		dir := t.TempDir()

		path, err := Initialize(dir, false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "mandelmovie.yml"), path)

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.Default().FrameSettings(), cfg.FrameSettings())
		assert.Equal(t, *config.Default().Frames, *cfg.Frames)
		assert.Equal(t, *config.Default().Processes, *cfg.Processes)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "mandelmovie.yml")
		require.NoError(t, os.WriteFile(existing, []byte("old content"), 0644))

		_, err := Initialize(dir, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project already initialized")

		content, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, "old content", string(content))
	})

	t.Run("force replaces the existing file", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "mandelmovie.yml")
		require.NoError(t, os.WriteFile(existing, []byte("old content"), 0644))

		_, err := Initialize(dir, true)
		require.NoError(t, err)

		_, err = config.Load(existing)
		assert.NoError(t, err)
	})

	t.Run("creates a missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "project")
		_, err := Initialize(dir, false)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "mandelmovie.yml"))
	})
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckExisting(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mandelmovie.yml"), nil, 0644))
	err := CheckExisting(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandelmovie init --force")
}
