package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is implemented by Request and Response.
type Envelope interface {
	json.Marshaler
	IsBatch() bool
	Len() int
}

var (
	_ Envelope = Request{}
	_ Envelope = Response{}
)

// splitEnvelope checks data is valid JSON and, for an outermost array,
// returns its raw elements.
func splitEnvelope(typ string, data []byte) ([]json.RawMessage, bool, error) {
	if err := syntaxCheck(typ, data); err != nil {
		return nil, false, err
	}
	if firstByte(data) != '[' {
		return nil, false, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, false, &DecodeError{Type: typ, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return elems, true, nil
}

// marshalEnvelope encodes payloads as a JSON array for a batch or as the
// bare payload otherwise.
func marshalEnvelope(kind string, batch bool, payloads []json.Marshaler) ([]byte, error) {
	for i, p := range payloads {
		if p == nil {
			return nil, fmt.Errorf("%w: %s payload %d is nil", ErrInvalidEnvelope, kind, i)
		}
	}
	if !batch {
		if len(payloads) != 1 {
			return nil, fmt.Errorf("%w: single %s holds %d payloads", ErrInvalidEnvelope, kind, len(payloads))
		}
		return payloads[0].MarshalJSON()
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, p := range payloads {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := p.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
