package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(LogLevelWarn, zap.New(core))

	logger.Info("skipped %d", 1)
	logger.Debug("skipped")
	logger.Warn("kept %s", "warn")
	logger.Error("kept error")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "kept warn", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(LogLevelTrace, zap.New(core))

	logger.Trace("walking %s", "ProtoA")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["trace"])
}
