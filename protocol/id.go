package protocol

import (
	"fmt"
	"strconv"
)

// ID is the correlation identifier linking a Call to its Success or Failure.
// Only non-negative integers are accepted on the wire.
type ID uint64

// MarshalJSON encodes the id as a plain integer.
func (id ID) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(id), 10), nil
}

// UnmarshalJSON accepts an unsigned integer literal with no fraction or
// exponent. Strings, floats, negative numbers and null are rejected.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] < '0' || data[0] > '9' {
		return fmt.Errorf("%w: id must be a non-negative integer, got %s", ErrInvalidValue, snippet(data))
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: id must be a non-negative integer, got %s", ErrInvalidValue, snippet(data))
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// snippet shortens a raw value for use in error messages.
func snippet(data []byte) string {
	const max = 32
	if len(data) == 0 {
		return "nothing"
	}
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
