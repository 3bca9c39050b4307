// Package codec runs minirpc envelopes through a middleware chain on their
// way to and from the wire.
//
// A bare codec behaves exactly like the protocol package:
//
//	c := codec.New()
//	req, err := c.DecodeRequest(ctx, data)
//
// A production codec adds logging, guards and validation:
//
//	c, err := codec.NewFromConfig(codec.Config{
//	    MaxBytes: middleware.MB,
//	    MaxBatch: 50,
//	    Validate: true,
//	    Logger:   middleware.NewZapLogger(logger),
//	})
//
// Failed decodes can be answered with ErrorResponse, which maps the error to
// the wire error code with protocol.AsError.
package codec
