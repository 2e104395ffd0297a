package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"pixelgate/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	t.Run("Production JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(config.Config{AppEnv: "production"}, &buf))
		logger.Debug("hidden")
		logger.Info("pixel_upsert", "id", "abc")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"pixel_upsert"`)
		assert.Contains(t, buf.String(), `"id":"abc"`)
	})

	t.Run("Local Text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(config.Config{AppEnv: "local"}, &buf))
		logger.Debug("visible")
		assert.Contains(t, buf.String(), "msg=visible")
	})
}

func TestNew_WithLogFile(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	path := filepath.Join(t.TempDir(), "pixelgate.log")
	logger := New(config.Config{AppEnv: "production", LogFile: path})
	logger.Info("server_start")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server_start")
}
