package protocol

import (
	"encoding/json"
	"fmt"
)

// Call is a request that expects exactly one correlated response.
type Call struct {
	ID     ID
	Method Method
	Params Params
}

// Notification is a fire-and-forget request. It has no id and never gets a
// response.
type Notification struct {
	Method Method
	Params Params
}

// RequestPayload is either a Call or a Notification.
type RequestPayload interface {
	json.Marshaler
	isRequestPayload()
}

func (Call) isRequestPayload()         {}
func (Notification) isRequestPayload() {}

type callWire struct {
	ID     ID              `json:"id"`
	Method Method          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type notificationWire struct {
	Method Method          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// MarshalJSON encodes the call as {"id","method","params"} in that order.
func (c Call) MarshalJSON() ([]byte, error) {
	params, err := marshalParams(c.Params)
	if err != nil {
		return nil, fmt.Errorf("encode call: %w", err)
	}
	return marshal(callWire{ID: c.ID, Method: c.Method, Params: params})
}

// UnmarshalJSON requires exactly the members id, method and params.
func (c *Call) UnmarshalJSON(data []byte) error {
	const typ = "Call"
	obj, err := decodeObject(typ, data)
	if err != nil {
		return err
	}
	if err := obj.closed(typ, []string{"id", "method", "params"}); err != nil {
		return err
	}
	var out Call
	if err := obj.member(typ, "id", &out.ID); err != nil {
		return err
	}
	if err := obj.member(typ, "method", &out.Method); err != nil {
		return err
	}
	if out.Params, err = obj.params(typ); err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalJSON encodes the notification as {"method","params"} in that order.
func (n Notification) MarshalJSON() ([]byte, error) {
	params, err := marshalParams(n.Params)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return marshal(notificationWire{Method: n.Method, Params: params})
}

// UnmarshalJSON requires exactly the members method and params.
func (n *Notification) UnmarshalJSON(data []byte) error {
	const typ = "Notification"
	obj, err := decodeObject(typ, data)
	if err != nil {
		return err
	}
	if err := obj.closed(typ, []string{"method", "params"}); err != nil {
		return err
	}
	var out Notification
	if err := obj.member(typ, "method", &out.Method); err != nil {
		return err
	}
	if out.Params, err = obj.params(typ); err != nil {
		return err
	}
	*n = out
	return nil
}

func (o object) params(typ string) (Params, error) {
	p, err := DecodeParams(o["params"])
	if err != nil {
		return nil, &DecodeError{Type: typ, Field: "params", Err: err}
	}
	return p, nil
}

// DecodeRequestPayload classifies data as a Call or a Notification. Call is
// tried first; a document with an id member never becomes a Notification and
// a document without one never becomes a Call.
func DecodeRequestPayload(data []byte) (RequestPayload, error) {
	var call Call
	callErr := call.UnmarshalJSON(data)
	if callErr == nil {
		return call, nil
	}
	var notification Notification
	notificationErr := notification.UnmarshalJSON(data)
	if notificationErr == nil {
		return notification, nil
	}
	if IsSyntaxError(callErr) {
		return nil, callErr
	}
	return nil, &MismatchError{
		Type:     "request payload",
		Variants: []string{"Call", "Notification"},
		Attempts: []error{callErr, notificationErr},
	}
}

// Request is a single payload or a batch of payloads. A single request holds
// exactly one payload; a batch keeps its payloads in wire order.
type Request struct {
	Payloads []RequestPayload
	Batch    bool
}

// NewSingleRequest wraps one payload.
func NewSingleRequest(p RequestPayload) Request {
	return Request{Payloads: []RequestPayload{p}}
}

// NewBatchRequest wraps payloads as a batch, in order.
func NewBatchRequest(payloads ...RequestPayload) Request {
	return Request{Payloads: append([]RequestPayload{}, payloads...), Batch: true}
}

// IsBatch reports whether the request is a batch.
func (r Request) IsBatch() bool { return r.Batch }

// Len returns the number of payloads.
func (r Request) Len() int { return len(r.Payloads) }

// Single returns the payload of a single request.
func (r Request) Single() (RequestPayload, bool) {
	if r.Batch || len(r.Payloads) != 1 {
		return nil, false
	}
	return r.Payloads[0], true
}

// Calls returns the calls of the request in order.
func (r Request) Calls() []Call {
	var calls []Call
	for _, p := range r.Payloads {
		if c, ok := p.(Call); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// Notifications returns the notifications of the request in order.
func (r Request) Notifications() []Notification {
	var notifications []Notification
	for _, p := range r.Payloads {
		if n, ok := p.(Notification); ok {
			notifications = append(notifications, n)
		}
	}
	return notifications
}

// ExpectsResponse reports whether any payload is a Call.
func (r Request) ExpectsResponse() bool {
	for _, p := range r.Payloads {
		if _, ok := p.(Call); ok {
			return true
		}
	}
	return false
}

// MarshalJSON encodes a batch as an array of its payloads and a single
// request as the bare payload.
func (r Request) MarshalJSON() ([]byte, error) {
	payloads := make([]json.Marshaler, len(r.Payloads))
	for i, p := range r.Payloads {
		payloads[i] = p
	}
	return marshalEnvelope("request", r.Batch, payloads)
}

// UnmarshalJSON decodes a request envelope. See ParseRequest.
func (r *Request) UnmarshalJSON(data []byte) error {
	out, err := ParseRequest(data)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// ParseRequest decodes a request envelope. An outermost array is a batch
// whose elements are decoded independently and kept in order; a failing
// element fails the whole batch. Anything else is decoded as one payload.
func ParseRequest(data []byte) (Request, error) {
	elems, batch, err := splitEnvelope("Request", data)
	if err != nil {
		return Request{}, err
	}
	if !batch {
		p, err := DecodeRequestPayload(data)
		if err != nil {
			return Request{}, err
		}
		return NewSingleRequest(p), nil
	}
	payloads := make([]RequestPayload, len(elems))
	for i, elem := range elems {
		p, err := DecodeRequestPayload(elem)
		if err != nil {
			return Request{}, &DecodeError{Type: "Request", Field: fmt.Sprintf("[%d]", i), Err: err}
		}
		payloads[i] = p
	}
	return Request{Payloads: payloads, Batch: true}, nil
}
