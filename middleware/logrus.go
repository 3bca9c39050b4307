package middleware

import (
	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus.Logger to Logger.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps logger. A nil logger uses the logrus standard logger.
func NewLogrusLogger(logger *logrus.Logger) *LogrusLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}

func (l *LogrusLogger) Info(msg string, fields ...Field)  { l.with(fields).Info(msg) }
func (l *LogrusLogger) Error(msg string, fields ...Field) { l.with(fields).Error(msg) }
func (l *LogrusLogger) Debug(msg string, fields ...Field) { l.with(fields).Debug(msg) }
func (l *LogrusLogger) Warn(msg string, fields ...Field)  { l.with(fields).Warn(msg) }

func (l *LogrusLogger) with(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.entry.WithFields(data)
}
