package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name       string
		level      string
		logDebug   bool
		logInfo    bool
		logWarning bool
	}{
		{name: "debug", level: "debug", logDebug: true, logInfo: true, logWarning: true},
		{name: "info", level: "info", logDebug: false, logInfo: true, logWarning: true},
		{name: "upper case", level: "WARN", logDebug: false, logInfo: false, logWarning: true},
		{name: "invalid falls back to info", level: "verbose", logDebug: false, logInfo: true, logWarning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := setup(config.ServerConfig{LogLevel: tt.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			ctx := context.Background()
			assert.Equal(t, tt.logDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.logInfo, l.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.logWarning, l.Enabled(ctx, slog.LevelWarn))
			assert.Same(t, l, slog.Default())
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := setup(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	l.Info("dream recorded", slog.String("dream_id", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dream recorded", entry["msg"])
	assert.Equal(t, "abc", entry["dream_id"])
	assert.Equal(t, "dreamtracer-api", entry["service"])
}

func TestFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	carried := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns carried logger", func(t *testing.T) {
		ctx := WithLogger(context.Background(), carried)
		assert.Same(t, carried, FromContextOrDefault(ctx, fallback))
		assert.Same(t, carried, FromContext(ctx))
	})

	t.Run("returns fallback when absent", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("returns default when fallback is nil", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})
}
