package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/billbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billbook.log")

	logger, err := newLogger(config.LogConfig{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("hello from test")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestNewLogger_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billbook.log")

	logger, err := newLogger(config.LogConfig{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "chatty", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestNewLogger_NoFileIsNop(t *testing.T) {
	logger, err := newLogger(config.LogConfig{})
	require.NoError(t, err)
	logger.Info("discarded")
}
