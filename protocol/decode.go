package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Decode failure kinds. Every error returned by a decode function matches at
// least one of these with errors.Is.
var (
	// ErrMalformed reports input that is not JSON or has the wrong outer JSON type.
	ErrMalformed = errors.New("malformed document")

	// ErrMissingField reports a required object member that is absent.
	ErrMissingField = errors.New("missing field")

	// ErrUnknownField reports an object member outside the shape's field set.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue reports a member whose value has the wrong shape.
	ErrInvalidValue = errors.New("invalid value")

	// ErrDuplicateField reports an object member that appears more than once.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrNoVariant reports a document that matched none of a union's variants.
	ErrNoVariant = errors.New("no variant matched")
)

// Construction misuse, reported on encode.
var (
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrNilParams       = errors.New("params must not be nil")
	ErrInvalidParams   = errors.New("params must be an array or an object")
)

// DecodeError describes why a document could not be decoded as Type.
type DecodeError struct {
	Type  string // target type, e.g. "Call"
	Field string // offending member or batch index, empty for the whole document
	Err   error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString("minirpc: decode ")
	sb.WriteString(e.Type)
	if e.Field != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Field)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MismatchError is returned when a document matches none of a union's
// variants. Attempts holds the per-variant failures in trial order.
type MismatchError struct {
	Type     string
	Variants []string
	Attempts []error
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", e.Variants[i], err)
	}
	return fmt.Sprintf("minirpc: %s matches no variant (%s)", e.Type, strings.Join(parts, "; "))
}

// Unwrap exposes ErrNoVariant and every attempt error.
func (e *MismatchError) Unwrap() []error {
	return append([]error{ErrNoVariant}, e.Attempts...)
}

// IsSyntaxError reports whether err was caused by input that is not valid JSON.
func IsSyntaxError(err error) bool {
	var syntaxErr *json.SyntaxError
	return errors.As(err, &syntaxErr)
}

// AsError maps a local failure to the wire Error a dispatcher would answer
// with. JSON syntax errors become ParseError, any other decode failure
// becomes InvalidRequest. An Error already in the chain is returned as is.
func AsError(err error) Error {
	if err == nil {
		return NewInternalError()
	}
	var rpcErr Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if IsSyntaxError(err) {
		return NewParseError()
	}
	for _, kind := range []error{ErrMalformed, ErrMissingField, ErrUnknownField, ErrDuplicateField, ErrInvalidValue, ErrNoVariant} {
		if errors.Is(err, kind) {
			return NewInvalidRequest()
		}
	}
	return NewInternalError()
}

// firstByte returns the first non-whitespace byte of data, or 0.
func firstByte(data []byte) byte {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// syntaxCheck validates data as a single JSON value.
func syntaxCheck(typ string, data []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DecodeError{Type: typ, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return nil
}

// object is a decoded JSON object whose member values are still raw.
type object map[string]json.RawMessage

// decodeObject splits data into its members. It fails unless data is a JSON object.
func decodeObject(typ string, data []byte) (object, error) {
	if firstByte(data) != '{' {
		if err := syntaxCheck(typ, data); err != nil {
			return nil, err
		}
		return nil, &DecodeError{Type: typ, Err: fmt.Errorf("%w: expected object", ErrMalformed)}
	}
	if err := syntaxCheck(typ, data); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, &DecodeError{Type: typ, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	obj := object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &DecodeError{Type: typ, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
		}
		name, _ := tok.(string)
		if _, dup := obj[name]; dup {
			return nil, &DecodeError{Type: typ, Field: name, Err: ErrDuplicateField}
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, &DecodeError{Type: typ, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
		}
		obj[name] = value
	}
	return obj, nil
}

// closed enforces strict field closure: every required member is present and
// no member outside required and optional appears.
func (o object) closed(typ string, required []string, optional ...string) error {
	for _, name := range required {
		if _, ok := o[name]; !ok {
			return &DecodeError{Type: typ, Field: name, Err: ErrMissingField}
		}
	}
	var unknown []string
	for name := range o {
		if !contains(required, name) && !contains(optional, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &DecodeError{Type: typ, Field: unknown[0], Err: ErrUnknownField}
	}
	return nil
}

// member decodes the named member into v, tagging failures with the member name.
func (o object) member(typ, name string, v json.Unmarshaler) error {
	if err := v.UnmarshalJSON(o[name]); err != nil {
		return &DecodeError{Type: typ, Field: name, Err: err}
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// compact returns the canonical compact form of a raw JSON value.
func compact(data json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
