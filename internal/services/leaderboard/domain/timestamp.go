package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Timestamp is the caller-supplied submission time. It is opaque: the raw
// JSON string or number is kept and echoed back unchanged.
type Timestamp struct {
	raw json.RawMessage
}

// ErrTimestampType reports a timestamp that is neither a string nor a number.
var ErrTimestampType = errors.New("timestamp must be a string or a number")

// TimestampFromString returns a string-valued Timestamp.
func TimestampFromString(value string) Timestamp {
	raw, _ := json.Marshal(value)
	return Timestamp{raw: raw}
}

// TimestampFromNumber returns a number-valued Timestamp from a numeric literal.
func TimestampFromNumber(literal string) (Timestamp, error) {
	return ParseTimestamp(json.RawMessage(literal))
}

// ParseTimestamp validates a raw JSON token as a string or number.
func ParseTimestamp(raw json.RawMessage) (Timestamp, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return Timestamp{}, ErrTimestampType
	}
	switch c := raw[0]; {
	case c == '"':
	case c == '-' || (c >= '0' && c <= '9'):
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return Timestamp{}, ErrTimestampType
		}
	default:
		return Timestamp{}, ErrTimestampType
	}
	return Timestamp{raw: append(json.RawMessage(nil), raw...)}, nil
}

// IsZero reports whether no timestamp was set.
func (t Timestamp) IsZero() bool {
	return len(t.raw) == 0
}

// IsNumber reports whether the timestamp was supplied as a JSON number.
func (t Timestamp) IsNumber() bool {
	return len(t.raw) > 0 && t.raw[0] != '"'
}

// Text returns the string value, or the numeric literal for numbers.
func (t Timestamp) Text() string {
	if t.IsZero() {
		return ""
	}
	if t.IsNumber() {
		return string(t.raw)
	}
	var text string
	if err := json.Unmarshal(t.raw, &text); err != nil {
		return string(t.raw)
	}
	return text
}

// Raw returns the JSON token as received.
func (t Timestamp) Raw() json.RawMessage {
	return t.raw
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	parsed, err := ParseTimestamp(data)
	if err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	*t = parsed
	return nil
}
