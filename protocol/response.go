package protocol

import (
	"encoding/json"
	"fmt"
)

// Success carries the result of a Call. Result is opaque JSON whose shape is
// defined by the invoked method; JSON null is a valid result.
type Success struct {
	ID     ID
	Result json.RawMessage
}

// Failure carries the error of a Call. ID is nil when the failing request's
// id could not be determined, e.g. on a parse error.
type Failure struct {
	Error Error
	ID    *ID
}

// ResponsePayload is either a Failure or a Success.
type ResponsePayload interface {
	json.Marshaler
	isResponsePayload()
}

func (Success) isResponsePayload() {}
func (Failure) isResponsePayload() {}

type successWire struct {
	ID     ID              `json:"id"`
	Result json.RawMessage `json:"result"`
}

type failureWire struct {
	Error Error `json:"error"`
	ID    *ID   `json:"id,omitempty"`
}

// NewSuccess marshals result into a Success for id.
func NewSuccess(id ID, result any) (Success, error) {
	data, err := marshal(result)
	if err != nil {
		return Success{}, fmt.Errorf("marshal result: %w", err)
	}
	return Success{ID: id, Result: data}, nil
}

// NewFailure creates a Failure answering the call with the given id.
func NewFailure(id ID, err Error) Failure {
	return Failure{Error: err, ID: &id}
}

// NewUncorrelatedFailure creates a Failure with no id.
func NewUncorrelatedFailure(err Error) Failure {
	return Failure{Error: err}
}

// MarshalJSON encodes the success as {"id","result"} in that order. A nil
// Result encodes as null.
func (s Success) MarshalJSON() ([]byte, error) {
	result := s.Result
	if result == nil {
		result = json.RawMessage("null")
	}
	return marshal(successWire{ID: s.ID, Result: result})
}

// UnmarshalJSON requires exactly the members id and result.
func (s *Success) UnmarshalJSON(data []byte) error {
	const typ = "Success"
	obj, err := decodeObject(typ, data)
	if err != nil {
		return err
	}
	if err := obj.closed(typ, []string{"id", "result"}); err != nil {
		return err
	}
	var out Success
	if err := obj.member(typ, "id", &out.ID); err != nil {
		return err
	}
	if out.Result, err = compact(obj["result"]); err != nil {
		return &DecodeError{Type: typ, Field: "result", Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
	}
	*s = out
	return nil
}

// MarshalJSON encodes the failure as {"error","id"}, leaving out id when nil.
func (f Failure) MarshalJSON() ([]byte, error) {
	return marshal(failureWire{Error: f.Error, ID: f.ID})
}

// UnmarshalJSON requires the member error and allows only id besides it.
// An id of null decodes to a nil ID.
func (f *Failure) UnmarshalJSON(data []byte) error {
	const typ = "Failure"
	obj, err := decodeObject(typ, data)
	if err != nil {
		return err
	}
	if err := obj.closed(typ, []string{"error"}, "id"); err != nil {
		return err
	}
	var out Failure
	if err := obj.member(typ, "error", &out.Error); err != nil {
		return err
	}
	if raw, ok := obj["id"]; ok && string(raw) != "null" {
		var id ID
		if err := obj.member(typ, "id", &id); err != nil {
			return err
		}
		out.ID = &id
	}
	*f = out
	return nil
}

// DecodeResponsePayload classifies data as a Failure or a Success. Failure is
// tried first. Under strict field closure a document carrying both error and
// result matches neither and is rejected.
func DecodeResponsePayload(data []byte) (ResponsePayload, error) {
	var failure Failure
	failureErr := failure.UnmarshalJSON(data)
	if failureErr == nil {
		return failure, nil
	}
	var success Success
	successErr := success.UnmarshalJSON(data)
	if successErr == nil {
		return success, nil
	}
	if IsSyntaxError(failureErr) {
		return nil, failureErr
	}
	return nil, &MismatchError{
		Type:     "response payload",
		Variants: []string{"Failure", "Success"},
		Attempts: []error{failureErr, successErr},
	}
}

// Response is a single payload or a batch of payloads, mirroring Request.
type Response struct {
	Payloads []ResponsePayload
	Batch    bool
}

// NewSingleResponse wraps one payload.
func NewSingleResponse(p ResponsePayload) Response {
	return Response{Payloads: []ResponsePayload{p}}
}

// NewBatchResponse wraps payloads as a batch, in order.
func NewBatchResponse(payloads ...ResponsePayload) Response {
	return Response{Payloads: append([]ResponsePayload{}, payloads...), Batch: true}
}

// IsBatch reports whether the response is a batch.
func (r Response) IsBatch() bool { return r.Batch }

// Len returns the number of payloads.
func (r Response) Len() int { return len(r.Payloads) }

// Single returns the payload of a single response.
func (r Response) Single() (ResponsePayload, bool) {
	if r.Batch || len(r.Payloads) != 1 {
		return nil, false
	}
	return r.Payloads[0], true
}

// Successes returns the successes of the response in order.
func (r Response) Successes() []Success {
	var out []Success
	for _, p := range r.Payloads {
		if s, ok := p.(Success); ok {
			out = append(out, s)
		}
	}
	return out
}

// Failures returns the failures of the response in order.
func (r Response) Failures() []Failure {
	var out []Failure
	for _, p := range r.Payloads {
		if f, ok := p.(Failure); ok {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON encodes a batch as an array of its payloads and a single
// response as the bare payload.
func (r Response) MarshalJSON() ([]byte, error) {
	payloads := make([]json.Marshaler, len(r.Payloads))
	for i, p := range r.Payloads {
		payloads[i] = p
	}
	return marshalEnvelope("response", r.Batch, payloads)
}

// UnmarshalJSON decodes a response envelope. See ParseResponse.
func (r *Response) UnmarshalJSON(data []byte) error {
	out, err := ParseResponse(data)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// ParseResponse decodes a response envelope with the same batch rules as
// ParseRequest.
func ParseResponse(data []byte) (Response, error) {
	elems, batch, err := splitEnvelope("Response", data)
	if err != nil {
		return Response{}, err
	}
	if !batch {
		p, err := DecodeResponsePayload(data)
		if err != nil {
			return Response{}, err
		}
		return NewSingleResponse(p), nil
	}
	payloads := make([]ResponsePayload, len(elems))
	for i, elem := range elems {
		p, err := DecodeResponsePayload(elem)
		if err != nil {
			return Response{}, &DecodeError{Type: "Response", Field: fmt.Sprintf("[%d]", i), Err: err}
		}
		payloads[i] = p
	}
	return Response{Payloads: payloads, Batch: true}, nil
}
