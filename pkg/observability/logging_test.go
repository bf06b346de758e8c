package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: "ERROR", expected: slog.LevelError},
		{input: "Info", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "xyzzy", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Level: "warn", Format: "json"})

	logger.Info("dropped")
	logger.Warn("lookup degraded", "lookup", "dns", "host", "example.com")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "lookup degraded", entry["msg"])
	assert.Equal(t, "dns", entry["lookup"])
}

func TestInitLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Level: "debug"})

	logger.Debug("extracted", "features", 30)
	assert.Contains(t, buf.String(), "msg=extracted")
	assert.Contains(t, buf.String(), "features=30")
}

func TestInitLoggerSetsDefault(t *testing.T) {
	logger := InitLogger(LogConfig{Output: &bytes.Buffer{}, Format: "json"})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestInitLoggerServiceAndSource(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Format: "json", Service: "phishsense", AddSource: true})

	logger.Info("started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "phishsense", entry["service"])
	assert.Contains(t, entry, slog.SourceKey)
}
