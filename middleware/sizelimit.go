package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/minirpc/protocol"
)

// ErrTooLarge is returned when a document exceeds the size limit.
var ErrTooLarge = errors.New("document too large")

// SizeLimitOption configures the size limit middleware.
type SizeLimitOption func(*sizeLimitConfig)

type sizeLimitConfig struct {
	logger Logger
}

// WithSizeLimitLogger sets the logger for size limit events.
func WithSizeLimitLogger(l Logger) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		o.logger = l
	}
}

// SizeLimit returns middleware that rejects wire documents larger than
// maxBytes. Decodes are checked before parsing; encodes are checked on the
// produced bytes. A limit of zero or less disables the check.
func SizeLimit(maxBytes int64, opts ...SizeLimitOption) Middleware {
	cfg := &sizeLimitConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	check := func(ctx context.Context, op *Operation) error {
		size := int64(len(op.Data))
		if maxBytes <= 0 || size <= maxBytes {
			return nil
		}
		if cfg.logger != nil {
			cfg.logger.Warn("size limit exceeded",
				Field{Key: "op", Value: op.Name()},
				Field{Key: "size", Value: size},
				Field{Key: "max", Value: maxBytes},
			)
		}
		recordRejection(ctx, "size_limit", op)
		rpcErr := protocol.NewInvalidRequest()
		if op.Direction == Encode {
			rpcErr = protocol.NewInternalError()
		}
		rpcErr = rpcErr.WithMessage(fmt.Sprintf("%s size %d exceeds limit of %d bytes", op.Kind, size, maxBytes))
		return fmt.Errorf("%w: %w", ErrTooLarge, rpcErr)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			if op.Direction == Decode {
				if err := check(ctx, op); err != nil {
					return err
				}
				return next(ctx, op)
			}

			if err := next(ctx, op); err != nil {
				return err
			}
			return check(ctx, op)
		}
	}
}

// Common size limit presets.
const (
	// KB is 1024 bytes.
	KB = 1024
	// MB is 1024 * 1024 bytes.
	MB = 1024 * 1024
)
