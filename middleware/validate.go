package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/minirpc/protocol"
	"github.com/felixgeelhaar/minirpc/schema"
)

// ErrSchemaViolation is returned when a document fails schema validation.
var ErrSchemaViolation = errors.New("schema violation")

// ValidateOption configures the validation middleware.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	logger Logger
}

// WithValidateLogger sets the logger for validation failures.
func WithValidateLogger(l Logger) ValidateOption {
	return func(o *validateConfig) {
		o.logger = l
	}
}

// Validate returns middleware that checks wire documents against the
// validator's envelope schemas and the params of decoded requests against
// any schemas registered per method.
//
// Envelope violations are reported as InvalidRequest, params violations as
// InvalidParams. Decodes are checked before parsing, encodes after.
func Validate(v *schema.Validator, opts ...ValidateOption) Middleware {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	fail := func(op *Operation, rpcErr protocol.Error, verr error) error {
		if cfg.logger != nil {
			cfg.logger.Warn("schema validation failed",
				Field{Key: "op", Value: op.Name()},
				Field{Key: "error", Value: verr.Error()},
			)
		}
		return fmt.Errorf("%w: %w: %w", ErrSchemaViolation, rpcErr, verr)
	}

	envelope := func(op *Operation) error {
		var err error
		if op.Kind == KindRequest {
			err = v.ValidateRequest(op.Data)
		} else {
			err = v.ValidateResponse(op.Data)
		}
		if err != nil {
			rpcErr := protocol.NewInvalidRequest()
			if op.Direction == Encode {
				rpcErr = protocol.NewInternalError()
			}
			return fail(op, rpcErr, err)
		}
		return nil
	}

	params := func(op *Operation) error {
		req, ok := op.Request()
		if !ok {
			return nil
		}
		for _, p := range req.Payloads {
			var (
				method protocol.Method
				args   protocol.Params
			)
			switch p := p.(type) {
			case protocol.Call:
				method, args = p.Method, p.Params
			case protocol.Notification:
				method, args = p.Method, p.Params
			default:
				continue
			}
			if args == nil || !v.HasParams(method.String()) {
				continue
			}
			data, err := args.MarshalJSON()
			if err != nil {
				return err
			}
			if err := v.ValidateParams(method.String(), data); err != nil {
				return fail(op, protocol.NewInvalidParams().WithMessage(fmt.Sprintf("Invalid params for %q", method)), err)
			}
		}
		return nil
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, op *Operation) error {
			if op.Direction == Decode {
				// Malformed JSON is left to the decoder, which reports it as a parse error.
				if !json.Valid(op.Data) {
					return next(ctx, op)
				}
				if err := envelope(op); err != nil {
					recordRejection(ctx, "validate", op)
					return err
				}
				if err := next(ctx, op); err != nil {
					return err
				}
				if err := params(op); err != nil {
					recordRejection(ctx, "validate", op)
					op.Message = nil
					return err
				}
				return nil
			}

			if err := params(op); err != nil {
				recordRejection(ctx, "validate", op)
				return err
			}
			if err := next(ctx, op); err != nil {
				return err
			}
			if err := envelope(op); err != nil {
				recordRejection(ctx, "validate", op)
				return err
			}
			return nil
		}
	}
}
