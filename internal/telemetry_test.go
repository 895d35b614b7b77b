package internal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_fanoutHandler(t *testing.T) {
	assert := assert.New(t)

	infoBuf := &bytes.Buffer{}
	errorBuf := &bytes.Buffer{}

	handler := newFanoutHandler(
		slog.NewTextHandler(infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	assert.True(handler.Enabled(context.Background(), slog.LevelInfo))
	assert.False(handler.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(handler).With("scope", "test")

	logger.Info("hello")
	assert.Contains(infoBuf.String(), "msg=hello")
	assert.Contains(infoBuf.String(), "scope=test")
	assert.Empty(errorBuf.String())

	logger.WithGroup("grp").Error("failure", "key", "val")
	assert.Contains(infoBuf.String(), "msg=failure")
	assert.Contains(errorBuf.String(), "grp.key=val")
}

func Test_Telemetry(t *testing.T) {
	assert := assert.New(t)

	prevHandler := consoleHandler
	t.Cleanup(func() {
		SetConsoleHandler(prevHandler)
	})

	buf := &bytes.Buffer{}
	SetConsoleHandler(slog.NewTextHandler(buf, nil))

	tel := NewTelemetry("ring_buffer", "test")
	assert.Equal("ring_buffer.test", tel.Scope())

	tel.LogInfo("created", "capacity", 8)
	tel.LogError("failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(out, "scope=ring_buffer.test")
	assert.Contains(out, "capacity=8")
	assert.Contains(out, "error=boom")

	// Noop providers, nothing should panic
	tel.NewCounter("count", func() int64 { return 1 })
	tel.NewGauge("gauge", func() int64 { return 1 })
	tel.NewHistogram("hist").Record(t.Context(), 10)

	_, span := tel.NewTrace(t.Context(), "op")
	span.End()
}
