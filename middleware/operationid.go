package middleware

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	operationIDKey contextKey = "operationID"
	metaKey        contextKey = "meta"
)

// OperationID returns middleware that injects a unique operation ID into the context.
// If an operation ID already exists in the context, it is preserved.
func OperationID() Middleware {
	return OperationIDWithGenerator(uuid.NewString)
}

// OperationIDWithGenerator returns middleware that uses a custom ID generator.
func OperationIDWithGenerator(generator func() string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			if existing := OperationIDFromContext(ctx); existing != "" {
				return next(ctx, op)
			}

			ctx = ContextWithOperationID(ctx, generator())
			return next(ctx, op)
		}
	}
}

// OperationIDFromContext returns the operation ID from the context, or empty string if not set.
func OperationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(operationIDKey).(string)
	return id
}

// ContextWithOperationID returns a new context with the operation ID set.
func ContextWithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// Meta holds caller-supplied metadata about where an envelope came from,
// such as a peer address or client name. Middleware may key on it.
type Meta map[string]string

// ContextWithMeta returns a new context carrying meta.
func ContextWithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey, meta)
}

// MetaFromContext returns the metadata in ctx, or nil.
func MetaFromContext(ctx context.Context) Meta {
	meta, _ := ctx.Value(metaKey).(Meta)
	return meta
}

// MetaValue returns one metadata value, or the empty string.
func MetaValue(ctx context.Context, key string) string {
	return MetaFromContext(ctx)[key]
}
