package codec

import (
	"fmt"

	"github.com/felixgeelhaar/minirpc/middleware"
	"github.com/felixgeelhaar/minirpc/schema"
)

// Config describes a fully stacked codec.
type Config struct {
	// MaxBytes rejects wire documents larger than this many bytes.
	// Default: 1 MB. Zero or less disables the check.
	MaxBytes int64

	// MaxBatch rejects batches with more payloads.
	// Default: 100. Zero or less allows any size.
	MaxBatch int

	// RejectEmptyBatch rejects batches with no payloads.
	RejectEmptyBatch bool

	// Validate checks documents against the wire schemas before decoding
	// and after encoding.
	Validate bool

	// Params maps method names to params schemas. Only used with Validate.
	Params map[string]*schema.Schema

	// RateLimit is the number of operations allowed per second.
	// Zero disables rate limiting.
	RateLimit int

	// RateBurst is the token bucket capacity. Defaults to RateLimit.
	RateBurst int

	// Telemetry, when non-nil, enables OpenTelemetry spans and metrics
	// configured by these options. An empty slice uses the global providers.
	Telemetry []middleware.OTelOption

	// Logger receives operation logs. Default: middleware.NopLogger.
	Logger middleware.Logger
}

// DefaultConfig returns sensible defaults for codec configuration.
func DefaultConfig() Config {
	return Config{
		MaxBytes: middleware.MB,
		MaxBatch: 100,
	}
}

// NewFromConfig creates a codec whose middleware chain is built from cfg,
// followed by any middleware given in opts.
//
// The chain runs recovery, operation ids, logging, telemetry, rate
// limiting, size and batch guards and schema validation, in that order.
// A WithLogger option in opts replaces cfg.Logger for the default stack; the
// stack is installed once either way.
func NewFromConfig(cfg Config, opts ...Option) (*Codec, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = middleware.NopLogger{}
	}

	var chain []middleware.Middleware
	if cfg.Telemetry != nil {
		chain = append(chain, middleware.OTel(cfg.Telemetry...))
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RateLimit
		}
		chain = append(chain, middleware.RateLimit(cfg.RateLimit, burst, middleware.WithRateLimitLogger(logger)))
	}
	chain = append(chain, middleware.SizeLimit(cfg.MaxBytes, middleware.WithSizeLimitLogger(logger)))

	batchOpts := []middleware.BatchLimitOption{middleware.WithBatchLimitLogger(logger)}
	if cfg.RejectEmptyBatch {
		batchOpts = append(batchOpts, middleware.WithRejectEmpty())
	}
	chain = append(chain, middleware.BatchLimit(cfg.MaxBatch, batchOpts...))

	if cfg.Validate {
		var vopts []schema.ValidatorOption
		for method, s := range cfg.Params {
			vopts = append(vopts, schema.WithParams(method, s))
		}
		v, err := schema.NewValidator(vopts...)
		if err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
		chain = append(chain, middleware.Validate(v, middleware.WithValidateLogger(logger)))
	}

	return New(append([]Option{WithLogger(logger), WithMiddleware(chain...)}, opts...)...), nil
}
