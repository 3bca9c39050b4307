package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/minirpc/protocol"
)

// Batch limit failures.
var (
	ErrBatchTooLarge = errors.New("batch too large")
	ErrEmptyBatch    = errors.New("empty batch")
)

// BatchLimitOption configures the batch limit middleware.
type BatchLimitOption func(*batchLimitConfig)

type batchLimitConfig struct {
	rejectEmpty bool
	logger      Logger
}

// WithRejectEmpty makes the middleware reject batches with no payloads.
func WithRejectEmpty() BatchLimitOption {
	return func(o *batchLimitConfig) {
		o.rejectEmpty = true
	}
}

// WithBatchLimitLogger sets the logger for batch limit events.
func WithBatchLimitLogger(l Logger) BatchLimitOption {
	return func(o *batchLimitConfig) {
		o.logger = l
	}
}

// BatchLimit returns middleware that rejects batches holding more than
// maxPayloads payloads. Decoded envelopes are checked after parsing, encoded
// ones before. A limit of zero or less allows any size.
func BatchLimit(maxPayloads int, opts ...BatchLimitOption) Middleware {
	cfg := &batchLimitConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	check := func(ctx context.Context, op *Operation) error {
		if op.Message == nil || !op.Message.IsBatch() {
			return nil
		}
		n := op.Message.Len()

		var cause error
		switch {
		case n == 0 && cfg.rejectEmpty:
			cause = ErrEmptyBatch
		case maxPayloads > 0 && n > maxPayloads:
			cause = ErrBatchTooLarge
		default:
			return nil
		}

		if cfg.logger != nil {
			cfg.logger.Warn("batch limit exceeded",
				Field{Key: "op", Value: op.Name()},
				Field{Key: "payloads", Value: n},
				Field{Key: "max", Value: maxPayloads},
			)
		}
		recordRejection(ctx, "batch_limit", op)
		rpcErr := protocol.NewInvalidRequest()
		if op.Direction == Encode {
			rpcErr = protocol.NewInternalError()
		}
		rpcErr = rpcErr.WithMessage(fmt.Sprintf("%s batch of %d payloads rejected: %s", op.Kind, n, cause))
		return fmt.Errorf("%w: %w", cause, rpcErr)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			if op.Direction == Encode {
				if err := check(ctx, op); err != nil {
					return err
				}
				return next(ctx, op)
			}

			if err := next(ctx, op); err != nil {
				return err
			}
			if err := check(ctx, op); err != nil {
				op.Message = nil
				return err
			}
			return nil
		}
	}
}
