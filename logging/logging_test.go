package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/nasdf/campus/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithSyncer(config.LogConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("failed to resolve reference", zap.String("collection", "users"), zap.String("id", "u1"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "failed to resolve reference", entry["msg"])
	assert.Equal(t, "users", entry["collection"])
	assert.Equal(t, "u1", entry["id"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithSyncer(config.LogConfig{Level: "debug"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Debug("discarding stale collection result")
	assert.Contains(t, buf.String(), "discarding stale collection result")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)

	_, err = New(config.LogConfig{Format: "xml"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}
