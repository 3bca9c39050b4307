// Package minirpc provides a strict, minimal JSON-RPC-like message schema.
//
// A request envelope carries one Call or Notification, or a batch of them.
// A response envelope carries one Success or Failure, or a batch of them.
// Payload shapes are told apart by their exact member sets alone:
//
//	{"id":1,"method":"add","params":[1,2]}           Call
//	{"method":"log","params":{"msg":"hi"}}           Notification
//	{"id":1,"result":3}                              Success
//	{"error":{"code":-32601,"message":"..."},"id":1} Failure
//
// Basic usage:
//
//	req, err := minirpc.ParseRequest(data)
//	if err != nil {
//	    out, _ := minirpc.NewCodec().ErrorResponse(ctx, err)
//	    ...
//	}
//	for _, call := range req.Calls() {
//	    ...
//	}
//
// The codec package runs envelopes through middleware for logging, tracing,
// limits and schema validation.
package minirpc

import (
	"github.com/felixgeelhaar/minirpc/codec"
	"github.com/felixgeelhaar/minirpc/middleware"
	"github.com/felixgeelhaar/minirpc/protocol"
)

// Re-export core types for convenience

type (
	ID           = protocol.ID
	Method       = protocol.Method
	Params       = protocol.Params
	ArrayParams  = protocol.ArrayParams
	ObjectParams = protocol.ObjectParams
	Code         = protocol.Code
	Error        = protocol.Error
)

// Payload types
type (
	Call            = protocol.Call
	Notification    = protocol.Notification
	RequestPayload  = protocol.RequestPayload
	Success         = protocol.Success
	Failure         = protocol.Failure
	ResponsePayload = protocol.ResponsePayload
)

// Envelope types
type (
	Request  = protocol.Request
	Response = protocol.Response
	Envelope = protocol.Envelope
)

// Decode error types
type (
	DecodeError   = protocol.DecodeError
	MismatchError = protocol.MismatchError
)

// Codec types
type (
	Codec       = codec.Codec
	CodecOption = codec.Option
	Config      = codec.Config
	Middleware  = middleware.Middleware
	Logger      = middleware.Logger
	LogField    = middleware.Field
)

// Reserved error codes.
const (
	ParseError     = protocol.ParseError
	InvalidRequest = protocol.InvalidRequest
	MethodNotFound = protocol.MethodNotFound
	InvalidParams  = protocol.InvalidParams
	InternalError  = protocol.InternalError
)

// Decode failure sentinels.
var (
	ErrMalformed    = protocol.ErrMalformed
	ErrMissingField = protocol.ErrMissingField
	ErrUnknownField = protocol.ErrUnknownField
	ErrInvalidValue = protocol.ErrInvalidValue
	ErrNoVariant    = protocol.ErrNoVariant
)

// Constructors re-exported for convenience.
var (
	NewSingleRequest       = protocol.NewSingleRequest
	NewBatchRequest        = protocol.NewBatchRequest
	NewSingleResponse      = protocol.NewSingleResponse
	NewBatchResponse       = protocol.NewBatchResponse
	NewSuccess             = protocol.NewSuccess
	NewFailure             = protocol.NewFailure
	NewUncorrelatedFailure = protocol.NewUncorrelatedFailure
	NewArrayParams         = protocol.NewArrayParams
	NewObjectParams        = protocol.NewObjectParams
	UnmarshalParams        = protocol.UnmarshalParams
	NewError               = protocol.NewError
	NewServerError         = protocol.NewServerError
	AsError                = protocol.AsError
)

// Codec options re-exported for convenience.
var (
	WithMiddleware = codec.WithMiddleware
	WithLogger     = codec.WithLogger
	DefaultConfig  = codec.DefaultConfig
)

// ParseRequest decodes a request envelope: one Call or Notification, or a
// JSON array of them.
func ParseRequest(data []byte) (Request, error) {
	return protocol.ParseRequest(data)
}

// ParseResponse decodes a response envelope: one Failure or Success, or a
// JSON array of them.
func ParseResponse(data []byte) (Response, error) {
	return protocol.ParseResponse(data)
}

// NewCodec creates a codec with the given options.
func NewCodec(opts ...CodecOption) *Codec {
	return codec.New(opts...)
}

// NewCodecFromConfig creates a fully stacked codec from cfg.
func NewCodecFromConfig(cfg Config, opts ...CodecOption) (*Codec, error) {
	return codec.NewFromConfig(cfg, opts...)
}
