package loggingx

import (
	"fmt"

	"github.com/dogmatiq/dodeca/logging"
	"go.uber.org/zap"
)

// Zap returns a logger that writes to a zap logger.
//
// Log messages are written at the INFO level and debug messages at the DEBUG
// level. IsDebug() reports whether the zap logger has the DEBUG level enabled.
func Zap(target *zap.Logger) logging.Logger {
	return &zapLogger{
		target.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

type zapLogger struct {
	target *zap.SugaredLogger
}

func (l *zapLogger) Log(f string, v ...interface{}) {
	l.target.Info(fmt.Sprintf(f, v...))
}

func (l *zapLogger) LogString(s string) {
	l.target.Info(s)
}

func (l *zapLogger) Debug(f string, v ...interface{}) {
	if l.IsDebug() {
		l.target.Debug(fmt.Sprintf(f, v...))
	}
}

func (l *zapLogger) DebugString(s string) {
	l.target.Debug(s)
}

func (l *zapLogger) IsDebug() bool {
	return l.target.Desugar().Core().Enabled(zap.DebugLevel)
}
