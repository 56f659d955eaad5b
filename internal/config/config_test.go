package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the file and fills defaults", func(t *testing.T) {
		// Given: a config file with a few keys
		path := writeConfig(t, "log-level: debug\nredis:\n  host: redis\n")

		// When: loading it
		conf, err := Load(path)

		// Then: file values and defaults are both present
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "8080", conf.SocketPort)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, reversi.DefaultWidth, conf.Board.Width)
		assert.Equal(t, reversi.DefaultHeight, conf.Board.Height)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "http-port: \"1000\"\n")
		t.Setenv("HTTP_PORT", "2000")
		t.Setenv("BOARD_WIDTH", "6")
		t.Setenv("BOARD_HEIGHT", "6")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "2000", conf.HTTPPort)
		assert.Equal(t, 6, conf.Board.Width)
	})

	t.Run("Rejects a board that is not square", func(t *testing.T) {
		path := writeConfig(t, "board:\n  width: 8\n  height: 6\n")

		_, err := Load(path)

		require.Error(t, err)
		assert.ErrorIs(t, err, reversi.ErrInvalidBoardSize)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
	})

	t.Run("MustLoad panics on error", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
