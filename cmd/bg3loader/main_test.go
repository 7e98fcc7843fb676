//go:build windows

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestCreateLogger_LevelAdjustableWithoutRebuild verifies the configured
// level can be applied to the already-built logger, so the log file is only
// ever opened once per run.
func TestCreateLogger_LevelAdjustableWithoutRebuild(t *testing.T) {
	pluginsDir := t.TempDir()

	logger, level, err := createLogger(pluginsDir)
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	level.SetLevel(zapcore.DebugLevel)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = os.Stat(filepath.Join(pluginsDir, "logs", "bg3loader.log"))
	assert.NoError(t, err)
}
