package testutil_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/minirpc/protocol"
	"github.com/felixgeelhaar/minirpc/testutil"
)

func TestFixtures(t *testing.T) {
	check := func(t *testing.T, fixtures []testutil.Fixture) {
		names := make(map[string]bool)
		for _, fx := range fixtures {
			assert.False(t, names[fx.Name], "duplicate fixture %q", fx.Name)
			names[fx.Name] = true

			if fx.Valid {
				assert.NotNil(t, fx.Shapes, "valid fixture %q needs shapes", fx.Name)
				if !fx.Batch {
					assert.Len(t, fx.Shapes, 1, "single fixture %q", fx.Name)
				}
			} else {
				assert.False(t, fx.Canonical, "invalid fixture %q cannot be canonical", fx.Name)
			}
		}
	}

	t.Run("requests", func(t *testing.T) { check(t, testutil.RequestFixtures) })
	t.Run("responses", func(t *testing.T) { check(t, testutil.ResponseFixtures) })
}

func TestShapes(t *testing.T) {
	req := protocol.NewBatchRequest(
		protocol.Call{ID: 1, Method: "a", Params: protocol.ArrayParams{}},
		protocol.Notification{Method: "b", Params: protocol.ObjectParams{}},
	)
	assert.Equal(t, []string{testutil.ShapeCall, testutil.ShapeNotification}, testutil.RequestShapes(req))

	resp := protocol.NewBatchResponse(
		protocol.NewUncorrelatedFailure(protocol.NewParseError()),
		protocol.Success{ID: 1},
	)
	assert.Equal(t, []string{testutil.ShapeFailure, testutil.ShapeSuccess}, testutil.ResponseShapes(resp))
}

func TestAssertJSONEqual(t *testing.T) {
	testutil.AssertJSONEqual(t, `{"a":1,"b":[true,null]}`, []byte(`{ "b" : [true, null], "a" : 1 }`))
}

func TestMustMarshal(t *testing.T) {
	data := testutil.MustMarshal(t, protocol.NewSingleRequest(protocol.Notification{Method: "ping", Params: protocol.ArrayParams{}}))
	testutil.AssertGolden(t, `{"method":"ping","params":[]}`, data)
}

func TestWire(t *testing.T) {
	t.Run("frames round trip in order", func(t *testing.T) {
		w := testutil.NewWire()

		params, err := protocol.NewArrayParams(1, 2)
		require.NoError(t, err)
		require.NoError(t, w.Write(protocol.NewSingleRequest(protocol.Call{ID: 1, Method: "add", Params: params})))
		require.NoError(t, w.WriteFrame([]byte(`{"id":1,"result":3}`)))

		req, err := w.ReadRequest()
		require.NoError(t, err)
		assert.Len(t, req.Calls(), 1)

		resp, err := w.ReadResponse()
		require.NoError(t, err)
		assert.Len(t, resp.Successes(), 1)

		_, err = w.ReadFrame()
		assert.True(t, errors.Is(err, io.EOF))
	})

	t.Run("rejects frames with newlines", func(t *testing.T) {
		w := testutil.NewWire()
		assert.Error(t, w.WriteFrame([]byte("{\n}")))
		assert.Empty(t, w.Frames())
	})

	t.Run("records frames", func(t *testing.T) {
		w := testutil.NewWire()
		require.NoError(t, w.WriteFrame([]byte(`[]`)))
		require.NoError(t, w.WriteFrame([]byte(`{"method":"m","params":[]}`)))

		frames := w.Frames()
		require.Len(t, frames, 2)
		assert.Equal(t, `[]`, string(frames[0]))

		line, err := w.Reader().ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "[]\n", line)
	})

	t.Run("invalid frames surface decode errors", func(t *testing.T) {
		w := testutil.NewWire()
		require.NoError(t, w.WriteFrame([]byte(`{"id":1}`)))

		_, err := w.ReadRequest()
		assert.ErrorIs(t, err, protocol.ErrNoVariant)
	})
}
