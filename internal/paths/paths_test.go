package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginsDirUnder_CreatesOnFirstRun(t *testing.T) {
	root := t.TempDir()

	dir, firstTime, err := PluginsDirUnder(root)
	require.NoError(t, err)
	assert.True(t, firstTime)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second resolution finds the existing directory.
	again, firstTime, err := PluginsDirUnder(root)
	require.NoError(t, err)
	assert.False(t, firstTime)
	assert.Equal(t, dir, again)
}

func TestLogsDir_CreatedInsidePluginsDir(t *testing.T) {
	pluginsDir := t.TempDir()

	dir, err := LogsDir(pluginsDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(pluginsDir, "logs"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGameBinaries_BothRendererVariants(t *testing.T) {
	set, err := GameBinaries(`C:\Games\BG3`)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	vulkan, ok := set.Resolve("BG3.EXE")
	assert.True(t, ok)
	assert.Contains(t, vulkan, "bg3.exe")

	dx11, ok := set.Resolve("bg3_dx11.exe")
	assert.True(t, ok)
	assert.Contains(t, dx11, "bg3_dx11.exe")
}
