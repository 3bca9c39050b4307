// Package testutil provides testing utilities for code built on minirpc.
//
// It carries a corpus of wire documents with their expected classification,
// JSON assertion helpers, and an in-memory line-delimited wire for feeding
// envelopes through code under test.
//
// Example usage:
//
//	func TestDecode(t *testing.T) {
//	    for _, fx := range testutil.RequestFixtures {
//	        t.Run(fx.Name, func(t *testing.T) {
//	            req, err := protocol.ParseRequest([]byte(fx.Wire))
//	            if !fx.Valid {
//	                require.Error(t, err)
//	                return
//	            }
//	            require.NoError(t, err)
//	            assert.Equal(t, fx.Shapes, testutil.RequestShapes(req))
//	        })
//	    }
//	}
package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/minirpc/protocol"
)

// Payload shape names used by fixtures.
const (
	ShapeCall         = "Call"
	ShapeNotification = "Notification"
	ShapeSuccess      = "Success"
	ShapeFailure      = "Failure"
)

// Fixture is a wire document with its expected classification.
type Fixture struct {
	Name  string
	Wire  string
	Valid bool

	// Batch and Shapes describe the decoded envelope of a valid fixture.
	Batch  bool
	Shapes []string

	// Canonical reports whether re-encoding reproduces Wire byte for byte.
	Canonical bool
}

// RequestFixtures covers request discrimination.
var RequestFixtures = []Fixture{
	{Name: "call with array params", Wire: `{"id":1,"method":"test_method","params":[1,2,3]}`, Valid: true, Shapes: []string{ShapeCall}, Canonical: true},
	{Name: "call with object params", Wire: `{"id":7,"method":"sum","params":{"a":1,"b":2}}`, Valid: true, Shapes: []string{ShapeCall}, Canonical: true},
	{Name: "call with empty params", Wire: `{"id":0,"method":"","params":[]}`, Valid: true, Shapes: []string{ShapeCall}, Canonical: true},
	{Name: "notification", Wire: `{"method":"test_method","params":[1,2,3]}`, Valid: true, Shapes: []string{ShapeNotification}, Canonical: true},
	{Name: "notification with empty object params", Wire: `{"method":"m","params":{}}`, Valid: true, Shapes: []string{ShapeNotification}, Canonical: true},
	{Name: "call with reordered members", Wire: `{"params":[true],"method":"m","id":3}`, Valid: true, Shapes: []string{ShapeCall}},
	{Name: "call with whitespace", Wire: " {\"id\": 2, \"method\": \"m\", \"params\": [ 1, {\"a\": 1} ]} ", Valid: true, Shapes: []string{ShapeCall}},
	{
		Name:      "batch notification then call",
		Wire:      `[{"method":"m","params":[1,2,3]},{"id":1,"method":"m","params":[1,2,3]}]`,
		Valid:     true,
		Batch:     true,
		Shapes:    []string{ShapeNotification, ShapeCall},
		Canonical: true,
	},
	{
		Name:      "batch call then notification",
		Wire:      `[{"id":1,"method":"a","params":[]},{"method":"b","params":{}}]`,
		Valid:     true,
		Batch:     true,
		Shapes:    []string{ShapeCall, ShapeNotification},
		Canonical: true,
	},
	{Name: "empty batch", Wire: `[]`, Valid: true, Batch: true, Shapes: []string{}, Canonical: true},
	{Name: "call with extra member", Wire: `{"id":1,"method":"m","params":[],"extra":true}`},
	{Name: "notification with extra member", Wire: `{"method":"m","params":[],"jsonrpc":"2.0"}`},
	{Name: "missing params", Wire: `{"id":1,"method":"m"}`},
	{Name: "null params", Wire: `{"method":"m","params":null}`},
	{Name: "scalar params", Wire: `{"method":"m","params":5}`},
	{Name: "string id", Wire: `{"id":"1","method":"m","params":[]}`},
	{Name: "negative id", Wire: `{"id":-1,"method":"m","params":[]}`},
	{Name: "fractional id", Wire: `{"id":1.5,"method":"m","params":[]}`},
	{Name: "exponent id", Wire: `{"id":1e2,"method":"m","params":[]}`},
	{Name: "null id", Wire: `{"id":null,"method":"m","params":[]}`},
	{Name: "numeric method", Wire: `{"method":1,"params":[]}`},
	{Name: "missing method", Wire: `{"params":[]}`},
	{Name: "batch with invalid element", Wire: `[{"method":"m","params":[]},{"method":"m"}]`},
	{Name: "batch with scalar element", Wire: `[1]`},
	{Name: "scalar document", Wire: `42`},
	{Name: "null document", Wire: `null`},
	{Name: "truncated document", Wire: `{"id":1,"method":"m"`},
	{Name: "empty document", Wire: ``},
	{Name: "trailing garbage", Wire: `{"method":"m","params":[]} x`},
}

// ResponseFixtures covers response discrimination.
var ResponseFixtures = []Fixture{
	{Name: "failure with id", Wire: `{"error":{"code":-32700,"message":"Parse error"},"id":1}`, Valid: true, Shapes: []string{ShapeFailure}, Canonical: true},
	{Name: "failure without id", Wire: `{"error":{"code":-32600,"message":"Invalid request"}}`, Valid: true, Shapes: []string{ShapeFailure}, Canonical: true},
	{Name: "failure with null id", Wire: `{"error":{"code":-32603,"message":"Internal error"},"id":null}`, Valid: true, Shapes: []string{ShapeFailure}},
	{Name: "failure with server code", Wire: `{"error":{"code":-32000,"message":"busy"},"id":9}`, Valid: true, Shapes: []string{ShapeFailure}, Canonical: true},
	{Name: "success", Wire: `{"id":1,"result":true}`, Valid: true, Shapes: []string{ShapeSuccess}, Canonical: true},
	{Name: "success with null result", Wire: `{"id":2,"result":null}`, Valid: true, Shapes: []string{ShapeSuccess}, Canonical: true},
	{Name: "success with structured result", Wire: `{"id":3,"result":{"items":[1,2],"next":null}}`, Valid: true, Shapes: []string{ShapeSuccess}, Canonical: true},
	{
		Name:      "batch failure then success",
		Wire:      `[{"error":{"code":-32700,"message":"Parse error"},"id":1},{"id":1,"result":true}]`,
		Valid:     true,
		Batch:     true,
		Shapes:    []string{ShapeFailure, ShapeSuccess},
		Canonical: true,
	},
	{Name: "error and result", Wire: `{"error":{"code":-32603,"message":"Internal error"},"id":1,"result":true}`},
	{Name: "success without id", Wire: `{"result":true}`},
	{Name: "success without result", Wire: `{"id":1}`},
	{Name: "success with extra member", Wire: `{"id":1,"result":true,"jsonrpc":"2.0"}`},
	{Name: "error missing message", Wire: `{"error":{"code":-32700}}`},
	{Name: "error with data", Wire: `{"error":{"code":-32700,"message":"Parse error","data":1}}`},
	{Name: "error with fractional code", Wire: `{"error":{"code":-32700.0,"message":"Parse error"}}`},
	{Name: "error with string code", Wire: `{"error":{"code":"-32700","message":"Parse error"}}`},
	{Name: "failure with string id", Wire: `{"error":{"code":-32700,"message":"Parse error"},"id":"1"}`},
	{Name: "batch with invalid element", Wire: `[{"id":1,"result":true},{"id":2}]`},
	{Name: "not json", Wire: `{"id":1,`},
}

// RequestShapes names the payload shapes of req in order.
func RequestShapes(req protocol.Request) []string {
	shapes := make([]string, 0, req.Len())
	for _, p := range req.Payloads {
		switch p.(type) {
		case protocol.Call:
			shapes = append(shapes, ShapeCall)
		case protocol.Notification:
			shapes = append(shapes, ShapeNotification)
		default:
			shapes = append(shapes, fmt.Sprintf("%T", p))
		}
	}
	return shapes
}

// ResponseShapes names the payload shapes of resp in order.
func ResponseShapes(resp protocol.Response) []string {
	shapes := make([]string, 0, resp.Len())
	for _, p := range resp.Payloads {
		switch p.(type) {
		case protocol.Success:
			shapes = append(shapes, ShapeSuccess)
		case protocol.Failure:
			shapes = append(shapes, ShapeFailure)
		default:
			shapes = append(shapes, fmt.Sprintf("%T", p))
		}
	}
	return shapes
}

// AssertJSONEqual fails the test unless want and got are the same JSON value.
// Whitespace and object member order are ignored.
func AssertJSONEqual(t testing.TB, want string, got []byte) {
	t.Helper()

	var wantJSON, gotJSON any
	require.NoError(t, json.Unmarshal([]byte(want), &wantJSON), "failed to parse want JSON")
	require.NoError(t, json.Unmarshal(got, &gotJSON), "failed to parse got JSON: %s", got)

	wantNorm, _ := json.Marshal(wantJSON)
	gotNorm, _ := json.Marshal(gotJSON)
	require.Equal(t, string(wantNorm), string(gotNorm))
}

// AssertGolden fails the test unless got equals want byte for byte.
func AssertGolden(t testing.TB, want string, got []byte) {
	t.Helper()
	require.Equal(t, want, string(got))
}

// MustMarshal marshals v or fails the test.
func MustMarshal(t testing.TB, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// Wire is an in-memory, newline-delimited stream of envelopes. It records
// every frame written so tests can assert on raw bytes.
type Wire struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	frames [][]byte
}

// NewWire creates an empty wire.
func NewWire() *Wire {
	return &Wire{}
}

// WriteFrame appends one raw frame. Frames must not contain newlines.
func (w *Wire) WriteFrame(frame []byte) error {
	if bytes.IndexByte(frame, '\n') >= 0 {
		return fmt.Errorf("frame contains a newline")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.frames = append(w.frames, append([]byte(nil), frame...))
	w.buf.Write(frame)
	w.buf.WriteByte('\n')
	return nil
}

// Write encodes an envelope and appends it as one frame.
func (w *Wire) Write(env protocol.Envelope) error {
	data, err := env.MarshalJSON()
	if err != nil {
		return err
	}
	return w.WriteFrame(data)
}

// ReadFrame returns the next unread frame, or io.EOF.
func (w *Wire) ReadFrame() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	line, err := w.buf.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(line) == 0 {
		return nil, io.EOF
	}
	return bytes.TrimSuffix(line, []byte("\n")), nil
}

// ReadRequest decodes the next frame as a request.
func (w *Wire) ReadRequest() (protocol.Request, error) {
	frame, err := w.ReadFrame()
	if err != nil {
		return protocol.Request{}, err
	}
	return protocol.ParseRequest(frame)
}

// ReadResponse decodes the next frame as a response.
func (w *Wire) ReadResponse() (protocol.Response, error) {
	frame, err := w.ReadFrame()
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.ParseResponse(frame)
}

// Frames returns a copy of every frame written so far.
func (w *Wire) Frames() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([][]byte, len(w.frames))
	for i, f := range w.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Reader returns a reader over the unread frames, for line-oriented consumers.
func (w *Wire) Reader() *bufio.Reader {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bufio.NewReader(bytes.NewReader(w.buf.Bytes()))
}
