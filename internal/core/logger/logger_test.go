package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuild_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	l, done := Build(Options{Level: "warn", JSON: true, Out: zapcore.AddSync(&buf)})

	l.Info("dropped")
	l.Warn("kept", zap.String("k", "v"))
	done()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "v", entry["k"])
	assert.Contains(t, entry, "ts")
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, done := Build(Options{Level: "loud", JSON: true, Out: zapcore.AddSync(&buf)})
	l.Debug("debug")
	l.Info("info")
	done()

	assert.NotContains(t, buf.String(), `"debug"`)
	assert.Contains(t, buf.String(), `"info"`)
}

func TestToWriter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	n, err := fmt.Fprintf(w, "slow query %dms\n", 250)
	require.NoError(t, err)
	assert.Equal(t, len("slow query 250ms\n"), n)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "slow query 250ms", e.Message)
	assert.Equal(t, zapcore.WarnLevel, e.Level)
}

func TestToStdLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	std, err := ToStdLogger(zap.New(core), zapcore.ErrorLevel)
	require.NoError(t, err)

	std.Print("http: TLS handshake error")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}
