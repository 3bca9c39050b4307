package codec_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/minirpc/codec"
	"github.com/felixgeelhaar/minirpc/middleware"
	"github.com/felixgeelhaar/minirpc/protocol"
	"github.com/felixgeelhaar/minirpc/testutil"
)

func TestCodec_Fixtures(t *testing.T) {
	c := codec.New()
	ctx := context.Background()

	for _, fx := range testutil.RequestFixtures {
		t.Run("request/"+fx.Name, func(t *testing.T) {
			req, err := c.DecodeRequest(ctx, []byte(fx.Wire))
			if !fx.Valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fx.Batch, req.IsBatch())
			assert.Equal(t, fx.Shapes, testutil.RequestShapes(req))

			data, err := c.EncodeRequest(ctx, req)
			require.NoError(t, err)
			if fx.Canonical {
				testutil.AssertGolden(t, fx.Wire, data)
			} else {
				testutil.AssertJSONEqual(t, fx.Wire, data)
			}
		})
	}

	for _, fx := range testutil.ResponseFixtures {
		t.Run("response/"+fx.Name, func(t *testing.T) {
			resp, err := c.DecodeResponse(ctx, []byte(fx.Wire))
			if !fx.Valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fx.Batch, resp.IsBatch())
			assert.Equal(t, fx.Shapes, testutil.ResponseShapes(resp))

			data, err := c.EncodeResponse(ctx, resp)
			require.NoError(t, err)
			if fx.Canonical {
				testutil.AssertGolden(t, fx.Wire, data)
			}
		})
	}
}

func TestCodec_Errors(t *testing.T) {
	c := codec.New()
	ctx := context.Background()

	t.Run("decode errors keep their cause", func(t *testing.T) {
		_, err := c.DecodeRequest(ctx, []byte(`{"id":1,"method":"m"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, protocol.ErrNoVariant)
		assert.Contains(t, err.Error(), "codec: decode request")
		assert.Equal(t, protocol.InvalidRequest, protocol.AsError(err).Code)
	})

	t.Run("syntax errors map to parse error", func(t *testing.T) {
		_, err := c.DecodeResponse(ctx, []byte(`{"id":`))
		require.Error(t, err)
		assert.Equal(t, protocol.ParseError, protocol.AsError(err).Code)
	})

	t.Run("encoding an invalid envelope fails", func(t *testing.T) {
		_, err := c.EncodeRequest(ctx, protocol.Request{})
		assert.ErrorIs(t, err, protocol.ErrInvalidEnvelope)
	})
}

func TestCodec_ErrorResponse(t *testing.T) {
	c := codec.New()
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"parse error", `{"method":`, `{"error":{"code":-32700,"message":"Parse error"}}`},
		{"invalid request", `{"method":"m"}`, `{"error":{"code":-32600,"message":"Invalid request"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, decodeErr := c.DecodeRequest(ctx, []byte(tt.input))
			require.Error(t, decodeErr)

			data, err := c.ErrorResponse(ctx, decodeErr)
			require.NoError(t, err)
			testutil.AssertGolden(t, tt.want, data)
		})
	}
}

func TestCodec_Middleware(t *testing.T) {
	var names []string
	record := func(next middleware.HandlerFunc) middleware.HandlerFunc {
		return func(ctx context.Context, op *middleware.Operation) error {
			names = append(names, op.Name())
			return next(ctx, op)
		}
	}

	c := codec.New(codec.WithMiddleware(record))
	ctx := context.Background()

	req, err := c.DecodeRequest(ctx, []byte(`{"method":"ping","params":[]}`))
	require.NoError(t, err)
	_, err = c.EncodeRequest(ctx, req)
	require.NoError(t, err)

	resp := protocol.NewSingleResponse(protocol.Success{ID: 1})
	data, err := c.EncodeResponse(ctx, resp)
	require.NoError(t, err)
	_, err = c.DecodeResponse(ctx, data)
	require.NoError(t, err)

	assert.Equal(t, []string{"decode.request", "encode.request", "encode.response", "decode.response"}, names)
}

func TestCodec_MiddlewareShortCircuit(t *testing.T) {
	blocked := errors.New("blocked")
	c := codec.New(codec.WithMiddleware(func(next middleware.HandlerFunc) middleware.HandlerFunc {
		return func(ctx context.Context, op *middleware.Operation) error {
			return blocked
		}
	}))

	_, err := c.DecodeRequest(context.Background(), []byte(`{"method":"m","params":[]}`))
	assert.ErrorIs(t, err, blocked)
}

func TestCodec_NoEnvelope(t *testing.T) {
	// A middleware that swallows the operation leaves nothing to return.
	c := codec.New(codec.WithMiddleware(func(next middleware.HandlerFunc) middleware.HandlerFunc {
		return func(ctx context.Context, op *middleware.Operation) error {
			return nil
		}
	}))
	ctx := context.Background()

	_, err := c.DecodeRequest(ctx, []byte(`{"method":"m","params":[]}`))
	assert.ErrorIs(t, err, codec.ErrNoEnvelope)

	_, err = c.EncodeResponse(ctx, protocol.NewSingleResponse(protocol.Success{ID: 1}))
	assert.ErrorIs(t, err, codec.ErrNoEnvelope)
}

func TestCodec_WithLogger(t *testing.T) {
	logger := &recordingLogger{}
	c := codec.New(codec.WithLogger(logger))

	_, err := c.DecodeRequest(context.Background(), []byte(`[{"id":1,"method":"a","params":[]},{"method":"b","params":{}}]`))
	require.NoError(t, err)

	require.Len(t, logger.messages, 1)
	assert.Equal(t, "info: operation completed", logger.messages[0])
	assert.Equal(t, "decode.request", logger.fields["op"])
	assert.Equal(t, true, logger.fields["batch"])
	assert.Equal(t, 2, logger.fields["payloads"])
	assert.Equal(t, []string{"a", "b"}, logger.fields["methods"])
	assert.NotEmpty(t, logger.fields["operation_id"])
}

func TestCodec_Concurrent(t *testing.T) {
	c := codec.New(codec.WithLogger(middleware.NopLogger{}))
	ctx := context.Background()

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			req, err := c.DecodeRequest(ctx, []byte(`{"id":7,"method":"m","params":[1]}`))
			if err == nil {
				_, err = c.EncodeRequest(ctx, req)
			}
			done <- err
		}()
	}
	for i := 0; i < 16; i++ {
		require.NoError(t, <-done)
	}
}

type recordingLogger struct {
	messages []string
	fields   map[string]any
}

func (l *recordingLogger) record(level, msg string, fields []middleware.Field) {
	l.messages = append(l.messages, level+": "+msg)
	l.fields = make(map[string]any, len(fields))
	for _, f := range fields {
		l.fields[f.Key] = f.Value
	}
}

func (l *recordingLogger) Info(msg string, fields ...middleware.Field)  { l.record("info", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...middleware.Field) { l.record("error", msg, fields) }
func (l *recordingLogger) Debug(msg string, fields ...middleware.Field) { l.record("debug", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...middleware.Field)  { l.record("warn", msg, fields) }
