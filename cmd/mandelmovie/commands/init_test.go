package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/mandelmovie/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(originalDir) })

	stdout, _ := captureOutput(t)
	_, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Created mandelmovie.yml")

	_, err = config.Load(filepath.Join(dir, "mandelmovie.yml"))
	assert.NoError(t, err)

	_, err = execute(t, "init")
	require.Error(t, err)
	assert.Equal(t, "initialization failed", err.Error())

	_, err = execute(t, "init", "--force")
	assert.NoError(t, err)
}
