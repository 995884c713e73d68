package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		" WARN": zapcore.WarnLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	for _, s := range []string{"unknown", "panic", ""} {
		_, ok := ParseLogLevel(s)
		require.False(t, ok, s)
	}
}

// TestContextHelpers verifies scoped loggers travel through the context.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := NewWithWriter(&buf, zapcore.DebugLevel)
	require.Same(t, global, FromContext(context.Background()))

	ctx := ToContext(context.Background(), base)
	require.Same(t, base, FromContext(ctx))

	ctx = WithName(ctx, "watcher")
	ctx = WithKV(ctx, "table", "/proc/net/arp")
	ctx = WithFields(ctx, zap.Int("hosts", 3))

	WarnKV(ctx, "Neighbor changed", "host", "10.0.0.5")
	require.NoError(t, FromContext(ctx).Sync())

	out := buf.String()
	require.Contains(t, out, "watcher")
	require.Contains(t, out, "Neighbor changed")
	require.Contains(t, out, "/proc/net/arp")
	require.Contains(t, out, "10.0.0.5")
	require.Contains(t, out, "hosts")
}

// TestWithMinLevel verifies a scoped level overrides the base logger level.
func TestWithMinLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.ErrorLevel))

	Info(ctx, "hidden")

	ctx = WithMinLevel(ctx, zapcore.InfoLevel)

	DebugKV(ctx, "still hidden")
	Info(ctx, "visible")
	require.NoError(t, FromContext(ctx).Sync())

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}
