package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNilConfig(t *testing.T) {
	l := New(nil)
	require.NotNil(t, l)
	l.Info("should not panic")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "json", Output: &buf})

	l.With().Str("table", "users").Int("hop", 2).Logger().Info("joining tables")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "joining tables", entry["message"])
	assert.Equal(t, "users", entry["table"])
	assert.Equal(t, float64(2), entry["hop"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "warn", Format: "json", Output: &buf})

	l.Debug("dropped")
	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "verbose", Format: "json", Output: &buf})

	l.Debug("dropped")
	assert.Zero(t, buf.Len())
	l.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestErrorWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "error", Format: "json", Output: &buf})

	l.ErrorWith("join failed", errors.New("boom"), map[string]any{"hop": 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "join failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(3), entry["hop"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "console", Output: &buf})

	l.Info("hello")
	out := buf.String()
	assert.Contains(t, out, "hello")
	// console output is human-readable, not JSON
	assert.False(t, json.Valid(buf.Bytes()))
}
