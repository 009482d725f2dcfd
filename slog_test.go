package bestbot_test

import (
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(debug bool) (bestbot.SLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return bestbot.NewSLogger(zap.New(core).Sugar(), debug), logs
}

func TestLogWhenDebugEnabled(t *testing.T) {
	slog, logs := newObservedLogger(true)

	slog.Debugf("Writing a log statement for my little %s\n", "red bird")

	if assert.Equal(t, 1, logs.Len()) {
		entry := logs.All()[0]
		assert.Equal(t, "Writing a log statement for my little red bird", entry.Message)
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
	}
}

func TestLogWhenDebugDisabled(t *testing.T) {
	slog, logs := newObservedLogger(false)

	slog.Debugf("Writing a log statement for my little %s\n", "red bird")

	// Nothing should have been logged
	assert.Equal(t, 0, logs.Len())
}

func TestPrintfLogsWhenDebugDisabled(t *testing.T) {
	slog, logs := newObservedLogger(false)

	slog.Printf("Writing a log statement for my little %s\n", "red bird")

	if assert.Equal(t, 1, logs.Len()) {
		entry := logs.All()[0]
		assert.Equal(t, "Writing a log statement for my little red bird", entry.Message)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
	}
}

func TestPrintfLogsWhenDebugEnabled(t *testing.T) {
	slog, logs := newObservedLogger(true)

	slog.Printf("Writing a log statement for my little %s", "red bird")

	assert.Equal(t, 1, logs.FilterMessage("Writing a log statement for my little red bird").Len())
}

func TestNewZapLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := bestbot.NewZapLogger(debug)

		if assert.NoError(t, err) {
			assert.Equal(t, debug, logger.Core().Enabled(zapcore.DebugLevel))
		}
	}
}
