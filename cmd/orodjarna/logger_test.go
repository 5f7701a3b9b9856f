package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/orodjarna/internal/config"
)

func TestLevelRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log, cleanup, err := newLogger(config.LogConfig{Level: "info", Format: "text"}, &stdout, &stderr)
	require.NoError(t, err)
	defer cleanup()

	log.Debug("hidden")
	log.Info("hello")
	log.Warn("careful")
	log.Error("broken")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "hello")
	assert.Contains(t, stdout.String(), "careful")
	assert.NotContains(t, stdout.String(), "broken")
	assert.Contains(t, stderr.String(), "broken")
}

func TestLoggerJSONAndFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "orodjarna.log")

	log, cleanup, err := newLogger(config.LogConfig{Level: "debug", Format: "json", File: path}, &stdout, &stderr)
	require.NoError(t, err)

	log.With("service", "test").Debug("dbg")
	log.Error("err")
	cleanup()

	assert.True(t, strings.HasPrefix(stdout.String(), "{"))
	assert.Contains(t, stdout.String(), `"service":"test"`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dbg")
	assert.Contains(t, string(data), "err")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}
