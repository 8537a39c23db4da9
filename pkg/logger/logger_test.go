package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/technovus/client-go/internal/config"
)

func TestNewWithConfig(t *testing.T) {
	t.Run("console format", func(t *testing.T) {
		cfg := appConfig.LoggerConfig{Level: "debug", Format: "console", Output: "stderr"}

		log, err := NewWithConfig(cfg)

		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("json format", func(t *testing.T) {
		cfg := appConfig.LoggerConfig{Level: "info", Format: "json", Output: "stdout"}

		log, err := NewWithConfig(cfg)

		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		cfg := appConfig.LoggerConfig{Level: "chatty", Format: "console", Output: "stderr"}

		log, err := NewWithConfig(cfg)

		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("file output falls back to stderr", func(t *testing.T) {
		cfg := appConfig.LoggerConfig{Level: "info", Format: "console", Output: "/tmp/some.log"}

		log, err := NewWithConfig(cfg)

		require.NoError(t, err)
		assert.NotNil(t, log)
	})
}

func TestNew(t *testing.T) {
	log, err := New()

	require.NoError(t, err)
	assert.NotNil(t, log)
}
