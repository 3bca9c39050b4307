package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/minirpc/protocol"
)

// CodeRateLimited is the server error code reported for throttled operations.
const CodeRateLimited protocol.Code = -32003

// ErrRateLimited is returned when an operation is throttled.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc func(context.Context, *Operation) string
	logger  Logger
}

// WithRateLimitKeyFunc sets a function to extract a rate limit key from operations.
// This allows per-client or per-kind rate limiting.
func WithRateLimitKeyFunc(fn func(context.Context, *Operation) string) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// RateLimit returns middleware that limits the operation rate using a token bucket algorithm.
// The rate is specified as operations per second.
// Burst allows short bursts above the rate limit.
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(context.Context, *Operation) string { return "global" },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			key := cfg.keyFunc(ctx, op)

			if !limiter.Allow(ctx, key) {
				recordRejection(ctx, "rate_limit", op)
				if cfg.logger != nil {
					cfg.logger.Warn("rate limit exceeded",
						Field{Key: "op", Value: op.Name()},
						Field{Key: "key", Value: key},
					)
				}
				return fmt.Errorf("%w: %w", ErrRateLimited, protocol.NewServerError(int64(CodeRateLimited), "rate limit exceeded"))
			}

			return next(ctx, op)
		}
	}
}

// RateLimitByKind returns rate limiting middleware with a separate bucket
// per operation name, e.g. "decode.request".
func RateLimitByKind(rate int, burst int, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(_ context.Context, op *Operation) string {
			return op.Name()
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}

// RateLimitByClient returns rate limiting middleware with a separate bucket
// per value of the given Meta key. Operations without the key share one bucket.
func RateLimitByClient(rate int, burst int, metaKey string, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(ctx context.Context, _ *Operation) string {
			if client := MetaValue(ctx, metaKey); client != "" {
				return "client:" + client
			}
			return "anonymous"
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}
