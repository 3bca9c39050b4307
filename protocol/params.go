package protocol

import (
	"encoding/json"
	"fmt"
)

// Params is the argument bag of a Call or Notification: either ArrayParams
// (positional) or ObjectParams (named).
type Params interface {
	json.Marshaler

	// Len returns the number of arguments.
	Len() int

	isParams()
}

// ArrayParams holds positional arguments. Values are opaque JSON.
type ArrayParams []json.RawMessage

// ObjectParams holds named arguments. Key order carries no meaning.
type ObjectParams map[string]json.RawMessage

func (ArrayParams) isParams()  {}
func (ObjectParams) isParams() {}

func (p ArrayParams) Len() int  { return len(p) }
func (p ObjectParams) Len() int { return len(p) }

// MarshalJSON encodes the arguments as an array. A nil slice encodes as [].
func (p ArrayParams) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return marshalArray(p)
}

// MarshalJSON encodes the arguments as an object. A nil map encodes as {}.
func (p ObjectParams) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return marshalObject(p)
}

// UnmarshalJSON requires a JSON array. Elements are stored compacted.
func (p *ArrayParams) UnmarshalJSON(data []byte) error {
	if firstByte(data) != '[' {
		return fmt.Errorf("%w: params must be an array, got %s", ErrInvalidValue, snippet(data))
	}
	var values []json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	out := make(ArrayParams, len(values))
	for i, v := range values {
		c, err := compact(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		out[i] = c
	}
	*p = out
	return nil
}

// UnmarshalJSON requires a JSON object with unique keys. Values are stored
// compacted.
func (p *ObjectParams) UnmarshalJSON(data []byte) error {
	if firstByte(data) != '{' {
		return fmt.Errorf("%w: params must be an object, got %s", ErrInvalidValue, snippet(data))
	}
	values, err := decodeObject("Params", data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	out := make(ObjectParams, len(values))
	for k, v := range values {
		c, err := compact(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		out[k] = c
	}
	*p = out
	return nil
}

// DecodeParams classifies data by its outermost shape: an array yields
// ArrayParams, an object yields ObjectParams. Any other shape fails.
func DecodeParams(data []byte) (Params, error) {
	switch firstByte(data) {
	case '[':
		var p ArrayParams
		if err := p.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return p, nil
	case '{':
		var p ObjectParams
		if err := p.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: params must be an array or an object, got %s", ErrInvalidValue, snippet(data))
	}
}

// NewArrayParams marshals each value into a positional argument.
func NewArrayParams(values ...any) (ArrayParams, error) {
	p := make(ArrayParams, len(values))
	for i, v := range values {
		data, err := marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal param %d: %w", i, err)
		}
		p[i] = data
	}
	return p, nil
}

// NewObjectParams marshals each value into a named argument.
func NewObjectParams(values map[string]any) (ObjectParams, error) {
	p := make(ObjectParams, len(values))
	for k, v := range values {
		data, err := marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal param %q: %w", k, err)
		}
		p[k] = data
	}
	return p, nil
}

// UnmarshalParams decodes the whole argument bag into v, e.g. a struct for
// ObjectParams or a slice or array for ArrayParams.
func UnmarshalParams(p Params, v any) error {
	if p == nil {
		return ErrNilParams
	}
	data, err := p.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// marshalParams encodes p, rejecting a nil interface.
func marshalParams(p Params) (json.RawMessage, error) {
	if p == nil {
		return nil, ErrNilParams
	}
	return p.MarshalJSON()
}
