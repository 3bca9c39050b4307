package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/minirpc/protocol"
)

// PanicHandler is called when a panic is recovered.
type PanicHandler func(ctx context.Context, op *Operation, panicVal any) error

// Recover returns middleware that catches panics and converts them to internal errors.
// The panic value is included in the error message for debugging.
func Recover() Middleware {
	return RecoverWithHandler(defaultPanicHandler)
}

// RecoverWithHandler returns middleware that catches panics and calls the provided handler.
// This allows for custom panic handling such as logging or alerting.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = handler(ctx, op, r)
				}
			}()
			return next(ctx, op)
		}
	}
}

// defaultPanicHandler converts a panic value to an internal error.
func defaultPanicHandler(_ context.Context, op *Operation, panicVal any) error {
	var msg string
	switch v := panicVal.(type) {
	case error:
		msg = fmt.Sprintf("panic during %s: %v", op.Name(), v)
	case string:
		msg = fmt.Sprintf("panic during %s: %s", op.Name(), v)
	default:
		msg = fmt.Sprintf("panic during %s: %v", op.Name(), v)
	}
	return protocol.NewInternalError().WithMessage(msg)
}
