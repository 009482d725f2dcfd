package bestbot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SLogger is the bestbot internal logging interface. It is injected into plugins
type SLogger interface {
	Printf(format string, v ...interface{})

	Debugf(format string, v ...interface{})
}

type sLogger struct {
	logger *zap.SugaredLogger
	debug  bool
}

// NewSLogger creates a new bestbot logger backed by a zap logger and a debug flag
func NewSLogger(logger *zap.SugaredLogger, debug bool) (l *sLogger) {
	sl := new(sLogger)
	sl.debug = debug
	sl.logger = logger
	return sl
}

// NewZapLogger creates the process zap logger. Debug mode switches to the development encoder and level
func NewZapLogger(debug bool) (logger *zap.Logger, err error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !debug

	return cfg.Build()
}

// Debugf logs a debug line after checking if the configuration is in debug mode
func (sl *sLogger) Debugf(format string, v ...interface{}) {
	if sl.debug {
		sl.logger.Debug(line(format, v...))
	}
}

// Printf logs a line at info level
func (sl *sLogger) Printf(format string, v ...interface{}) {
	sl.logger.Info(line(format, v...))
}

// line formats a log line, dropping the trailing newline the zap encoder adds itself
func line(format string, v ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintf(format, v...), "\n")
}
