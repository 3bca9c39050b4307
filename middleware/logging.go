package middleware

import (
	"context"
	"time"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs codec operations.
// Successful operations are logged at info level, failures at error level.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			start := time.Now()

			err := next(ctx, op)

			duration := time.Since(start)

			fields := []Field{
				F("op", op.Name()),
				F("bytes", len(op.Data)),
				F("duration", duration),
			}

			if op.Message != nil {
				fields = append(fields,
					F("batch", op.Message.IsBatch()),
					F("payloads", op.Message.Len()),
				)
			}
			if methods := op.Methods(); len(methods) > 0 {
				fields = append(fields, F("methods", methods))
			}

			if id := OperationIDFromContext(ctx); id != "" {
				fields = append(fields, F("operation_id", id))
			}

			if err != nil {
				fields = append(fields, F("error", err.Error()))
				logger.Error("operation failed", fields...)
			} else {
				logger.Info("operation completed", fields...)
			}

			return err
		}
	}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
