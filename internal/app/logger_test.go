package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevel(t *testing.T) {
	ctx := context.Background()

	t.Run("default level is info", func(t *testing.T) {
		logger := NewLogger(&Config{LogFormat: "pretty"})
		require.False(t, logger.Enabled(ctx, slog.LevelDebug))
		require.True(t, logger.Enabled(ctx, slog.LevelInfo))
	})

	t.Run("warn suppresses info", func(t *testing.T) {
		logger := NewLogger(&Config{LogFormat: "json", LogLevel: "warn"})
		require.False(t, logger.Enabled(ctx, slog.LevelInfo))
		require.True(t, logger.Enabled(ctx, slog.LevelWarn))
	})

	t.Run("debug enables everything", func(t *testing.T) {
		logger := NewLogger(&Config{LogLevel: "debug"})
		require.True(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger := NewLogger(&Config{LogLevel: "verbose"})
		require.False(t, logger.Enabled(ctx, slog.LevelDebug))
		require.True(t, logger.Enabled(ctx, slog.LevelInfo))
	})

	t.Run("nil config still builds a logger", func(t *testing.T) {
		logger := NewLogger(nil)
		require.True(t, logger.Enabled(ctx, slog.LevelInfo))
	})
}
