package middleware

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap.Logger to Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger yields a production logger, or a
// no-op logger if that cannot be built.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		var err error
		if logger, err = zap.NewProduction(); err != nil {
			logger = zap.NewNop()
		}
	}
	return &ZapLogger{logger: logger}
}

func (l *ZapLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, zapFields(fields)...) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, zapFields(fields)...) }
func (l *ZapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, zapFields(fields)...) }
func (l *ZapLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, zapFields(fields)...) }

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func zapFields(fields []Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
