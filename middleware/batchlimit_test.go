package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/minirpc/protocol"
)

func TestBatchLimit(t *testing.T) {
	threeCalls := `[{"id":1,"method":"a","params":[]},{"id":2,"method":"b","params":[]},{"id":3,"method":"c","params":[]}]`

	tests := []struct {
		name    string
		limit   int
		opts    []BatchLimitOption
		input   string
		wantErr error
	}{
		{"within limit", 3, nil, threeCalls, nil},
		{"over limit", 2, nil, threeCalls, ErrBatchTooLarge},
		{"unlimited", 0, nil, threeCalls, nil},
		{"single payloads are not batches", 1, nil, `{"id":1,"method":"a","params":[]}`, nil},
		{"empty batch allowed by default", 2, nil, `[]`, nil},
		{"empty batch rejected", 2, []BatchLimitOption{WithRejectEmpty()}, `[]`, ErrEmptyBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := decodeRequest(tt.input)
			err := BatchLimit(tt.limit, tt.opts...)(wireHandler)(context.Background(), op)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, op.Message)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
			assert.Equal(t, protocol.InvalidRequest, protocol.AsError(err).Code)
			assert.Nil(t, op.Message, "rejected envelopes must not leak to the caller")
		})
	}
}

func TestBatchLimit_Encode(t *testing.T) {
	called := false
	handler := BatchLimit(1)(func(ctx context.Context, op *Operation) error {
		called = true
		return wireHandler(ctx, op)
	})

	resp := protocol.NewBatchResponse(
		protocol.Success{ID: 1},
		protocol.Success{ID: 2},
	)
	err := handler(context.Background(), &Operation{Direction: Encode, Kind: KindResponse, Message: resp})

	require.ErrorIs(t, err, ErrBatchTooLarge)
	assert.False(t, called, "oversized envelopes must be rejected before encoding")
	assert.Equal(t, protocol.InternalError, protocol.AsError(err).Code)
}

func TestBatchLimit_Logger(t *testing.T) {
	logger := &mockLogger{}
	handler := BatchLimit(1, WithBatchLimitLogger(logger))(wireHandler)

	_ = handler(context.Background(), decodeRequest(`[{"method":"a","params":[]},{"method":"b","params":[]}]`))

	require.Len(t, logger.entries, 1)
	assert.Equal(t, "warn", logger.entries[0].level)
	payloads, _ := fieldValue(logger.entries[0].fields, "payloads")
	assert.Equal(t, 2, payloads)
}
