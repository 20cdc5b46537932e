package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/jbattermann/observable/types"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_ImplementsLogger(t *testing.T) {
	var _ types.Logger = NewSlogDefault()
}

func TestSlogLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlog(slog.New(handler))

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "count", 3)
	logger.Warn("warn message")
	logger.Error("error message", "error", "boom")

	out := buf.String()
	require.Contains(t, out, "debug message")
	require.Contains(t, out, "key=value")
	require.Contains(t, out, "info message")
	require.Contains(t, out, "count=3")
	require.Contains(t, out, "warn message")
	require.Contains(t, out, "error message")
	require.Contains(t, out, "error=boom")
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := NewSlog(slog.New(handler))

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}
