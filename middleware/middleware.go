// Package middleware provides middleware for minirpc codec operations.
package middleware

import (
	"context"

	"github.com/felixgeelhaar/minirpc/protocol"
)

// Direction tells whether an operation reads from or writes to the wire.
type Direction uint8

const (
	// Decode turns wire bytes into an envelope.
	Decode Direction = iota
	// Encode turns an envelope into wire bytes.
	Encode
)

func (d Direction) String() string {
	if d == Encode {
		return "encode"
	}
	return "decode"
}

// Kind tells which envelope an operation carries.
type Kind uint8

const (
	KindRequest Kind = iota
	KindResponse
)

func (k Kind) String() string {
	if k == KindResponse {
		return "response"
	}
	return "request"
}

// Operation is one envelope crossing the wire boundary.
//
// For a decode, Data holds the input and Message is set by the innermost
// handler. For an encode, Message holds the input and Data is set by the
// innermost handler.
type Operation struct {
	Direction Direction
	Kind      Kind
	Data      []byte
	Message   protocol.Envelope
}

// Name returns the operation name, e.g. "decode.request".
func (op *Operation) Name() string {
	return op.Direction.String() + "." + op.Kind.String()
}

// Request returns the request envelope carried by the operation.
func (op *Operation) Request() (protocol.Request, bool) {
	req, ok := op.Message.(protocol.Request)
	return req, ok
}

// Response returns the response envelope carried by the operation.
func (op *Operation) Response() (protocol.Response, bool) {
	resp, ok := op.Message.(protocol.Response)
	return resp, ok
}

// Methods returns the method of every request payload, in order. It is
// empty for responses and for operations without an envelope yet.
func (op *Operation) Methods() []string {
	req, ok := op.Request()
	if !ok {
		return nil
	}
	methods := make([]string, 0, req.Len())
	for _, p := range req.Payloads {
		switch p := p.(type) {
		case protocol.Call:
			methods = append(methods, p.Method.String())
		case protocol.Notification:
			methods = append(methods, p.Method.String())
		}
	}
	return methods
}

// HandlerFunc is the signature for codec operation handlers.
type HandlerFunc func(ctx context.Context, op *Operation) error

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middleware into a single middleware.
// Middleware are applied in order, so Chain(m1, m2, m3) results in
// m1 wrapping m2 wrapping m3 wrapping the final handler.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		// Apply middleware in reverse order so they execute in order
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// MiddlewareChain provides a fluent API for building middleware chains.
type MiddlewareChain struct {
	middlewares []Middleware
}

// Use creates a new middleware chain starting with the given middleware.
func Use(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{
		middlewares: middlewares,
	}
}

// Append adds middleware to the chain and returns the updated chain.
func (c *MiddlewareChain) Append(middlewares ...Middleware) *MiddlewareChain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// Then applies the middleware chain to a handler and returns the wrapped handler.
func (c *MiddlewareChain) Then(handler HandlerFunc) HandlerFunc {
	return Chain(c.middlewares...)(handler)
}

// ThenFunc applies the middleware chain to a handler function and returns the wrapped handler.
func (c *MiddlewareChain) ThenFunc(fn func(ctx context.Context, op *Operation) error) HandlerFunc {
	return c.Then(HandlerFunc(fn))
}
