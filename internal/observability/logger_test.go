package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/trackota-etl/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	ctx := context.Background()

	tests := []struct {
		level     string
		format    string
		enabled   slog.Level
		disabled  slog.Level
		checkLess bool
	}{
		{level: "debug", format: "text", enabled: slog.LevelDebug},
		{level: "warn", format: "json", enabled: slog.LevelWarn, disabled: slog.LevelInfo, checkLess: true},
		{level: "error", format: "json", enabled: slog.LevelError, disabled: slog.LevelWarn, checkLess: true},
		{level: "bogus", format: "json", enabled: slog.LevelInfo, disabled: slog.LevelDebug, checkLess: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			require.NotNil(t, logger)
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			if tt.checkLess {
				assert.False(t, logger.Enabled(ctx, tt.disabled))
			}
			assert.Same(t, logger, slog.Default())
		})
	}
}
