package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Value is an opaque, JSON-serializable payload stored under a key.
// The zero Value and the literal null both mean "no value".
type Value json.RawMessage

// Null is the JSON null value.
var Null = Value("null")

// NewValue serializes v. A Value or json.RawMessage is used as is.
func NewValue(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case json.RawMessage:
		return Value(val), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode value: %w", err)
	}
	return Value(data), nil
}

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, Null)
}

// Decode unmarshals v into dst.
func (v Value) Decode(dst any) error {
	if len(v) == 0 {
		return json.Unmarshal(Null, dst)
	}
	return json.Unmarshal(v, dst)
}

// Equal reports whether v and o hold the same JSON value. Object key order
// and insignificant whitespace are ignored.
func (v Value) Equal(o Value) bool {
	var a, b any
	if err := v.Decode(&a); err != nil {
		return bytes.Equal(v, o)
	}
	if err := o.Decode(&b); err != nil {
		return false
	}
	return cmp.Equal(a, b)
}

// String returns the JSON text of v.
func (v Value) String() string {
	if len(v) == 0 {
		return string(Null)
	}
	return string(v)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return Null, nil
	}
	return v, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if v == nil {
		return fmt.Errorf("protocol: UnmarshalJSON on nil Value")
	}
	*v = append((*v)[0:0], data...)
	return nil
}
