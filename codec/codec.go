package codec

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/minirpc/middleware"
	"github.com/felixgeelhaar/minirpc/protocol"
)

// ErrNoEnvelope is returned when an operation completes without producing
// the envelope or bytes it was asked for.
var ErrNoEnvelope = errors.New("no envelope")

// Option configures a Codec.
type Option func(*Codec)

// Codec decodes and encodes request and response envelopes through a
// middleware chain. A Codec is safe for concurrent use.
type Codec struct {
	logger     middleware.Logger
	middleware []middleware.Middleware
	handler    middleware.HandlerFunc
}

// WithMiddleware adds middleware to the operation chain. Middleware run in
// the order they are added, after the default stack.
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(c *Codec) {
		c.middleware = append(c.middleware, m...)
	}
}

// WithLogger installs the default middleware stack (panic recovery,
// operation ids and logging) in front of any other middleware.
func WithLogger(l middleware.Logger) Option {
	return func(c *Codec) {
		c.logger = l
	}
}

// New creates a codec with the given options. Without options it is a plain
// wrapper around protocol.ParseRequest, protocol.ParseResponse and the
// envelopes' MarshalJSON.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}

	chain := c.middleware
	if c.logger != nil {
		chain = append(middleware.DefaultStack(c.logger), chain...)
	}
	c.handler = middleware.Chain(chain...)(wire)
	return c
}

// DecodeRequest parses data as a request envelope.
func (c *Codec) DecodeRequest(ctx context.Context, data []byte) (protocol.Request, error) {
	op := &middleware.Operation{Direction: middleware.Decode, Kind: middleware.KindRequest, Data: data}
	if err := c.handler(ctx, op); err != nil {
		return protocol.Request{}, fmt.Errorf("codec: decode request: %w", err)
	}
	req, ok := op.Request()
	if !ok {
		return protocol.Request{}, fmt.Errorf("codec: decode request: %w", ErrNoEnvelope)
	}
	return req, nil
}

// EncodeRequest writes req in wire form.
func (c *Codec) EncodeRequest(ctx context.Context, req protocol.Request) ([]byte, error) {
	op := &middleware.Operation{Direction: middleware.Encode, Kind: middleware.KindRequest, Message: req}
	if err := c.encode(ctx, op); err != nil {
		return nil, fmt.Errorf("codec: encode request: %w", err)
	}
	return op.Data, nil
}

// DecodeResponse parses data as a response envelope.
func (c *Codec) DecodeResponse(ctx context.Context, data []byte) (protocol.Response, error) {
	op := &middleware.Operation{Direction: middleware.Decode, Kind: middleware.KindResponse, Data: data}
	if err := c.handler(ctx, op); err != nil {
		return protocol.Response{}, fmt.Errorf("codec: decode response: %w", err)
	}
	resp, ok := op.Response()
	if !ok {
		return protocol.Response{}, fmt.Errorf("codec: decode response: %w", ErrNoEnvelope)
	}
	return resp, nil
}

// EncodeResponse writes resp in wire form.
func (c *Codec) EncodeResponse(ctx context.Context, resp protocol.Response) ([]byte, error) {
	op := &middleware.Operation{Direction: middleware.Encode, Kind: middleware.KindResponse, Message: resp}
	if err := c.encode(ctx, op); err != nil {
		return nil, fmt.Errorf("codec: encode response: %w", err)
	}
	return op.Data, nil
}

// ErrorResponse encodes the uncorrelated Failure a peer answers with when a
// request could not be decoded, e.g. {"error":{"code":-32700,"message":"Parse error"}}.
func (c *Codec) ErrorResponse(ctx context.Context, err error) ([]byte, error) {
	failure := protocol.NewUncorrelatedFailure(protocol.AsError(err))
	return c.EncodeResponse(ctx, protocol.NewSingleResponse(failure))
}

func (c *Codec) encode(ctx context.Context, op *middleware.Operation) error {
	if err := c.handler(ctx, op); err != nil {
		return err
	}
	if op.Data == nil {
		return ErrNoEnvelope
	}
	return nil
}

// wire is the innermost handler: it moves between op.Data and op.Message.
func wire(_ context.Context, op *middleware.Operation) error {
	if op.Direction == middleware.Encode {
		if op.Message == nil {
			return ErrNoEnvelope
		}
		data, err := op.Message.MarshalJSON()
		if err != nil {
			return err
		}
		op.Data = data
		return nil
	}

	if op.Kind == middleware.KindRequest {
		req, err := protocol.ParseRequest(op.Data)
		if err != nil {
			return err
		}
		op.Message = req
		return nil
	}
	resp, err := protocol.ParseResponse(op.Data)
	if err != nil {
		return err
	}
	op.Message = resp
	return nil
}
