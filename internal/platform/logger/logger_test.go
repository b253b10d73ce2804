package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// restoreDefault puts back the default logger replaced by setup.
func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetupProductionWritesJSON(t *testing.T) {
	restoreDefault(t)

	var out bytes.Buffer
	l := setup(config.ServerConfig{LogLevel: "info", Environment: config.EnvProduction}, &out)

	l.Debug("hidden")
	l.Info("visible", "key", "value")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1, "debug output should be filtered at info level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "gatehouse", entry["service"])
	assert.Same(t, l, slog.Default(), "setup should install the logger as default")
}

func TestSetupDevelopmentWritesText(t *testing.T) {
	restoreDefault(t)

	var out bytes.Buffer
	l := setup(config.ServerConfig{LogLevel: "debug", Environment: config.EnvDevelopment}, &out)

	l.Debug("starting", "port", 3000)

	assert.Contains(t, out.String(), "msg=starting")
	assert.Contains(t, out.String(), "port=3000")
}

func TestSetupTestEnvironmentIsSilent(t *testing.T) {
	restoreDefault(t)

	var out bytes.Buffer
	l := setup(config.ServerConfig{LogLevel: "debug", Environment: config.EnvTest}, &out)

	l.Error("should not appear")

	assert.Empty(t, out.String())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	l, buf := NewTestLogger()
	ctx := WithLogger(context.Background(), l)

	FromContext(ctx).Info("from context")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "from context", entries[0]["msg"])
}

func TestFromContextOrDefaultFallback(t *testing.T) {
	t.Parallel()

	fallback, _ := NewTestLogger()

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	//nolint:staticcheck // a nil context must not panic
	assert.Same(t, fallback, FromContextOrDefault(nil, fallback))
}
