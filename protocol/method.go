package protocol

import (
	"encoding/json"
	"fmt"
)

// Method is the name of the operation to invoke. It is compared byte for
// byte: no case folding, no trimming.
type Method string

// UnmarshalJSON requires a JSON string. Null is rejected.
func (m *Method) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '"' {
		return fmt.Errorf("%w: method must be a string, got %s", ErrInvalidValue, snippet(data))
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	*m = Method(s)
	return nil
}

// MarshalJSON encodes the name as a JSON string without HTML escaping.
func (m Method) MarshalJSON() ([]byte, error) {
	return quote(string(m)), nil
}

func (m Method) String() string {
	return string(m)
}
