package protocol

import (
	"fmt"
	"strconv"
)

// Code classifies an Error. The five reserved codes have constants; every
// other integer is a server-defined error.
type Code int64

// Reserved error codes.
const (
	// ParseError means invalid JSON was received.
	ParseError Code = -32700

	// InvalidRequest means the JSON sent is not a valid request.
	InvalidRequest Code = -32600

	// MethodNotFound means the method does not exist or is not available.
	MethodNotFound Code = -32601

	// InvalidParams means the method parameters are invalid.
	InvalidParams Code = -32602

	// InternalError means an internal error occurred.
	InternalError Code = -32603
)

// Message returns the canonical text for c.
func (c Code) Message() string {
	switch c {
	case ParseError:
		return "Parse error"
	case InvalidRequest:
		return "Invalid request"
	case MethodNotFound:
		return "Method not found"
	case InvalidParams:
		return "Invalid params"
	case InternalError:
		return "Internal error"
	default:
		return "Server error"
	}
}

// IsServerError reports whether c is outside the five reserved codes.
func (c Code) IsServerError() bool {
	switch c {
	case ParseError, InvalidRequest, MethodNotFound, InvalidParams, InternalError:
		return false
	}
	return true
}

func (c Code) String() string {
	switch c {
	case ParseError:
		return "ParseError"
	case InvalidRequest:
		return "InvalidRequest"
	case MethodNotFound:
		return "MethodNotFound"
	case InvalidParams:
		return "InvalidParams"
	case InternalError:
		return "InternalError"
	default:
		return "ServerError(" + strconv.FormatInt(int64(c), 10) + ")"
	}
}

// MarshalJSON encodes the code as its integer value.
func (c Code) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(c), 10), nil
}

// UnmarshalJSON requires an integer literal. Fractions and exponents are
// rejected even when the value is integral.
func (c *Code) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return fmt.Errorf("%w: code must be an integer, got %s", ErrInvalidValue, snippet(data))
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: code must be an integer, got %s", ErrInvalidValue, snippet(data))
	}
	*c = Code(n)
	return nil
}

// Error is the structured failure reason carried by a Failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("minirpc: %s (code: %d)", e.Message, e.Code)
}

// Is implements errors.Is comparison by error code.
func (e Error) Is(target error) bool {
	switch t := target.(type) {
	case Error:
		return e.Code == t.Code
	case *Error:
		return t != nil && e.Code == t.Code
	}
	return false
}

// MarshalJSON encodes the error with its message written verbatim.
func (e Error) MarshalJSON() ([]byte, error) {
	buf := append([]byte(`{"code":`), strconv.AppendInt(nil, int64(e.Code), 10)...)
	buf = append(buf, `,"message":`...)
	buf = append(buf, quote(e.Message)...)
	return append(buf, '}'), nil
}

// UnmarshalJSON requires an object with exactly the members code and message.
func (e *Error) UnmarshalJSON(data []byte) error {
	const typ = "Error"
	obj, err := decodeObject(typ, data)
	if err != nil {
		return err
	}
	if err := obj.closed(typ, []string{"code", "message"}); err != nil {
		return err
	}
	var out Error
	if err := obj.member(typ, "code", &out.Code); err != nil {
		return err
	}
	if err := obj.member(typ, "message", (*message)(&out.Message)); err != nil {
		return err
	}
	*e = out
	return nil
}

// message decodes a required string member.
type message string

func (m *message) UnmarshalJSON(data []byte) error {
	var s Method
	if err := s.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: message must be a string, got %s", ErrInvalidValue, snippet(data))
	}
	*m = message(s)
	return nil
}

// NewError creates an Error for code with the code's canonical message.
func NewError(code Code) Error {
	return Error{Code: code, Message: code.Message()}
}

// NewParseError creates a parse error (-32700).
func NewParseError() Error {
	return NewError(ParseError)
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest() Error {
	return NewError(InvalidRequest)
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound() Error {
	return NewError(MethodNotFound)
}

// NewInvalidParams creates an invalid params error (-32602).
func NewInvalidParams() Error {
	return NewError(InvalidParams)
}

// NewInternalError creates an internal error (-32603).
func NewInternalError() Error {
	return NewError(InternalError)
}

// NewServerError creates a server-defined error with an explicit message.
func NewServerError(code int64, message string) Error {
	return Error{Code: Code(code), Message: message}
}

// WithMessage returns a copy of the error with a different message.
func (e Error) WithMessage(message string) Error {
	return Error{Code: e.Code, Message: message}
}
