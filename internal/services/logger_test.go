package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("message sent", "chat_id", "c1", "message_id", "m1")
	logger.Warn("translation unavailable", "language", "es")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "message sent", entries[0].Message)
	require.Equal(t, map[string]interface{}{"chat_id": "c1", "message_id": "m1"}, entries[0].ContextMap())
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	require.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	require.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLoggerInTestEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("messenger").(*NoOpLogger)
	require.True(t, ok)
}
