package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLogger(&buf, "info", "production")

	log.Info(context.Background(), "token refreshed", "user_id", "u-1")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "token refreshed", entry["msg"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestZapLogger_DevelopmentWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLogger(&buf, "debug", "development")

	log.Debug(context.Background(), "dbg", "k", "v")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "dbg")
	assert.False(t, strings.HasPrefix(out, "{"), "console encoder expected, got %q", out)
}

func TestZapLogger_LevelsAndWith(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLoggerFrom(zap.New(core))
	ctx := context.Background()

	child := log.With("module", "auth")
	child.Debug(ctx, "d")
	child.Info(ctx, "i")
	child.Warn(ctx, "w")
	child.Error(ctx, "e", "err", "boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, "auth", e.ContextMap()["module"])
	}
	assert.Equal(t, "boom", entries[3].ContextMap()["err"])
}

func TestZapLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLogger(&buf, "error", "production")

	log.Warn(context.Background(), "ignored")
	require.NoError(t, log.Sync())
	assert.Empty(t, buf.String())
}

func TestNew_Backends(t *testing.T) {
	var buf bytes.Buffer

	l, err := newWithWriter(&buf, BackendZap, "info", "production")
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	l, err = newWithWriter(&buf, BackendSlog, "info", "production")
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)

	_, err = newWithWriter(&buf, "logrus", "info", "production")
	assert.Error(t, err)
}
