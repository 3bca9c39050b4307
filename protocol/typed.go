package protocol

import (
	"encoding/json"
	"fmt"
)

// TypedCall is a Call whose params have been decoded into P. It is a
// projection of the wire form; convert back with Untyped before encoding.
type TypedCall[P any] struct {
	ID     ID
	Method Method
	Params P
}

// TypedNotification is a Notification whose params have been decoded into P.
type TypedNotification[P any] struct {
	Method Method
	Params P
}

// TypedSuccess is a Success whose result has been decoded into R.
type TypedSuccess[R any] struct {
	ID     ID
	Result R
}

// ProjectCall decodes the params of c into P.
func ProjectCall[P any](c Call) (TypedCall[P], error) {
	var params P
	if err := UnmarshalParams(c.Params, &params); err != nil {
		return TypedCall[P]{}, fmt.Errorf("project call %q: %w", c.Method, err)
	}
	return TypedCall[P]{ID: c.ID, Method: c.Method, Params: params}, nil
}

// ProjectNotification decodes the params of n into P.
func ProjectNotification[P any](n Notification) (TypedNotification[P], error) {
	var params P
	if err := UnmarshalParams(n.Params, &params); err != nil {
		return TypedNotification[P]{}, fmt.Errorf("project notification %q: %w", n.Method, err)
	}
	return TypedNotification[P]{Method: n.Method, Params: params}, nil
}

// ProjectSuccess decodes the result of s into R.
func ProjectSuccess[R any](s Success) (TypedSuccess[R], error) {
	var result R
	if err := json.Unmarshal(s.Result, &result); err != nil {
		return TypedSuccess[R]{}, fmt.Errorf("project success %d: %w", s.ID, err)
	}
	return TypedSuccess[R]{ID: s.ID, Result: result}, nil
}

// Untyped converts the call to its wire form. P must marshal to a JSON
// array or object.
func (c TypedCall[P]) Untyped() (Call, error) {
	params, err := paramsOf(c.Params)
	if err != nil {
		return Call{}, err
	}
	return Call{ID: c.ID, Method: c.Method, Params: params}, nil
}

// Untyped converts the notification to its wire form.
func (n TypedNotification[P]) Untyped() (Notification, error) {
	params, err := paramsOf(n.Params)
	if err != nil {
		return Notification{}, err
	}
	return Notification{Method: n.Method, Params: params}, nil
}

// Untyped converts the success to its wire form.
func (s TypedSuccess[R]) Untyped() (Success, error) {
	return NewSuccess(s.ID, s.Result)
}

func paramsOf(v any) (Params, error) {
	data, err := marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	p, err := DecodeParams(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return p, nil
}
